// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "slices"

const (
	// DisplayTypeNone runs the guest without video output.
	DisplayTypeNone DisplayType = "none"
	// DisplayTypeSDL shows the guest framebuffer in an SDL window.
	DisplayTypeSDL DisplayType = "sdl"
	// DisplayTypeGTK shows the guest framebuffer in a GTK window.
	DisplayTypeGTK DisplayType = "gtk"
	// DisplayTypeCocoa shows the guest framebuffer in a native macOS window.
	DisplayTypeCocoa DisplayType = "cocoa"
)

// DisplayType is the host display backend for the guest framebuffer.
type DisplayType string

func (t DisplayType) isKnown() bool {
	knownDisplayTypes := []DisplayType{
		DisplayTypeNone,
		DisplayTypeSDL,
		DisplayTypeGTK,
		DisplayTypeCocoa,
	}

	return slices.Contains(knownDisplayTypes, t)
}

// String implements [fmt.Stringer].
func (t DisplayType) String() string {
	if !t.isKnown() {
		return ""
	}

	return string(t)
}

// MarshalText implements [encoding.TextMarshaler].
func (t DisplayType) MarshalText() ([]byte, error) {
	s := t.String()
	if s == "" {
		return nil, ErrDisplayTypeInvalid
	}

	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *DisplayType) UnmarshalText(text []byte) error {
	displayType := DisplayType(text)

	if !displayType.isKnown() {
		return ErrDisplayTypeInvalid
	}

	*t = displayType

	return nil
}
