// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

import "errors"

var (
	// ErrArchNotSupported is returned if a machine type is not in the set of
	// supported targets.
	ErrArchNotSupported = errors.New("machine type not supported")

	// ErrAddressConflict is returned if the target's storage bus has fewer
	// free ids than requested roles. Roles are never silently dropped.
	ErrAddressConflict = errors.New("no free bus id for role")

	// ErrNoInstallerMedium is returned if an installer boot is requested but
	// no installer medium is attached.
	ErrNoInstallerMedium = errors.New("installer boot requested without installer medium")

	// ErrRoleNotPlanned is returned when an address is requested for a role
	// that is not part of the current assignment.
	ErrRoleNotPlanned = errors.New("role has no planned bus address")
)
