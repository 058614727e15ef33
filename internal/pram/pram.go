// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pram

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Size is the size of a PRAM image in bytes.
const Size = 256

const (
	// maxDeviceID is the highest SCSI id the boot reference can encode. Id 7
	// belongs to the bus controller.
	maxDeviceID = 6

	// selectorOffset is the position of the boot selector byte.
	selectorOffset = 120

	// refOffset is the position of the two byte little endian boot device
	// reference.
	refOffset = 122

	// selectorSCSI makes the firmware resolve the boot reference as a SCSI
	// device id.
	selectorSCSI = 0xff

	// refBias is added to the device id before complementing it into the
	// reference word.
	refBias = 32

	fileMode = 0o644
)

// Image is a PRAM image file. Writes touch only the boot preference bytes,
// everything else the guest stored in the image is preserved.
type Image struct {
	path string
}

// NewImage returns an [Image] backed by the file at path. The file is not
// touched before [Image.Ensure] or one of the boot target accessors is
// called.
func NewImage(path string) *Image {
	return &Image{path: path}
}

// Path returns the path of the backing file.
func (img *Image) Path() string {
	return img.path
}

// Ensure creates a zero filled image if the backing file is missing or
// empty. A zero filled image makes the firmware fall back to its defaults
// and scan the bus for a bootable volume. Existing images with unexpected
// size are rejected with [ErrImageSize] instead of being truncated or grown.
func (img *Image) Ensure() error {
	info, err := os.Stat(img.path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return img.create()
	case err != nil:
		return fmt.Errorf("stat image: %w", err)
	case info.Size() == 0:
		return img.create()
	case info.Size() != Size:
		return fmt.Errorf("%w: %d bytes", ErrImageSize, info.Size())
	default:
		return nil
	}
}

func (img *Image) create() error {
	err := os.WriteFile(img.path, make([]byte, Size), fileMode)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	return nil
}

// WriteBootTarget stores the SCSI id of the boot device in the image. Only
// the selector byte and the reference word are written.
func (img *Image) WriteBootTarget(id int) error {
	if id < 0 || id > maxDeviceID {
		return fmt.Errorf("%w: %d", ErrDeviceIDInvalid, id)
	}

	file, err := os.OpenFile(img.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var ref [2]byte

	binary.LittleEndian.PutUint16(ref[:], ^(uint16(id) + refBias))

	_, err = file.WriteAt([]byte{selectorSCSI}, selectorOffset)
	if err != nil {
		return fmt.Errorf("write selector: %w", err)
	}

	_, err = file.WriteAt(ref[:], refOffset)
	if err != nil {
		return fmt.Errorf("write reference: %w", err)
	}

	return nil
}

// ReadBootTarget returns the SCSI id of the boot device stored in the
// image. It returns [ErrBootTargetNotSet] if the selector byte does not mark
// the reference as a SCSI id, which is also the state of a fresh image.
func (img *Image) ReadBootTarget() (int, error) {
	file, err := os.Open(img.path)
	if err != nil {
		return 0, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	// Selector byte up to and including the reference word.
	var buf [refOffset - selectorOffset + 2]byte

	_, err = file.ReadAt(buf[:], selectorOffset)
	if err != nil {
		return 0, fmt.Errorf("read boot preference: %w", err)
	}

	if buf[0] != selectorSCSI {
		return 0, ErrBootTargetNotSet
	}

	ref := binary.LittleEndian.Uint16(buf[refOffset-selectorOffset:])

	id := int(^ref) - refBias
	if id < 0 || id > maxDeviceID {
		return 0, fmt.Errorf("%w: %d", ErrDeviceIDInvalid, id)
	}

	return id, nil
}
