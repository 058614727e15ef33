// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package hostnet

import "errors"

var (
	// ErrLinkNotFound is returned if a named link does not exist on the
	// host.
	ErrLinkNotFound = errors.New("link not found")

	// ErrBackendInvalid is returned if a network backend is invalid.
	ErrBackendInvalid = errors.New("unknown network backend")

	// ErrSwitchNotReady is returned if the userspace switch helper did not
	// create its control socket in time.
	ErrSwitchNotReady = errors.New("switch control socket did not appear")
)

// SetupError indicates a failure while provisioning network resources. It
// names the setup step that failed. Steps completed before the failure are
// rolled back by the manager before the error is returned.
type SetupError struct {
	Step string
	Err  error
}

// Error implements the [error] interface.
func (e *SetupError) Error() string {
	return "network setup " + e.Step + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*SetupError) Is(other error) bool {
	_, ok := other.(*SetupError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *SetupError) Unwrap() error {
	return e.Err
}
