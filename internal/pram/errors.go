// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pram

import "errors"

var (
	// ErrImageSize is returned if an existing image does not have the
	// expected size of [Size] bytes. Such a file is most likely not a PRAM
	// image and is left alone.
	ErrImageSize = errors.New("unexpected image size")

	// ErrDeviceIDInvalid is returned for a boot device id outside the SCSI
	// id range the reference encoding can hold.
	ErrDeviceIDInvalid = errors.New("boot device id out of range")

	// ErrBootTargetNotSet is returned if the image does not name a boot
	// device.
	ErrBootTargetNotSet = errors.New("boot device not set")
)
