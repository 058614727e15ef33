// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import "errors"

var (
	// ErrKeyMissing is returned if a key required by the target machine's
	// schema is absent or empty.
	ErrKeyMissing = errors.New("required key missing")

	// ErrRAMOutOfRange is returned if the guest memory size is outside the
	// range the target machine supports.
	ErrRAMOutOfRange = errors.New("guest memory out of range")

	// ErrAIOCacheCombination is returned if the configured aio mode
	// requires a cache mode that bypasses the host page cache and none is
	// configured.
	ErrAIOCacheCombination = errors.New(
		"aio mode requires a direct cache mode",
	)
)

// Error indicates an invalid configuration. Key names the offending
// configuration key, if any.
type Error struct {
	Key string
	Err error
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	if e.Key == "" {
		return "config: " + e.Err.Error()
	}

	return "config " + e.Key + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*Error) Is(other error) bool {
	_, ok := other.(*Error)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *Error) Unwrap() error {
	return e.Err
}
