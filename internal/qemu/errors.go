// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "errors"

var (
	// ErrArgumentCollision is returned if two [Argument]s are considered
	// equal.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrCacheModeInvalid is returned if a cache mode is invalid.
	ErrCacheModeInvalid = errors.New("unknown cache mode")

	// ErrAIOModeInvalid is returned if an IO backend is invalid.
	ErrAIOModeInvalid = errors.New("unknown aio mode")

	// ErrDisplayTypeInvalid is returned if a display backend is invalid.
	ErrDisplayTypeInvalid = errors.New("unknown display type")
)

// ArgumentError indicates an issue with an input argument.
type ArgumentError struct {
	msg string
}

// Error implements the [error] interface.
func (e *ArgumentError) Error() string {
	return "argument error: " + e.msg
}

// Is implements the [errors.Is] interface.
func (*ArgumentError) Is(other error) bool {
	_, ok := other.(*ArgumentError)
	return ok
}
