// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package hostnet

import "slices"

const (
	// BackendTap bridges the guest into the host network with a kernel tap
	// interface. Requires the net admin capability.
	BackendTap Backend = "tap"
	// BackendVDE connects the guest to a userspace vde_switch process.
	// Works without privileges, guests on the same switch see each other.
	BackendVDE Backend = "vde"
)

// Backend selects how a guest session is connected to the host network.
type Backend string

func (b Backend) isKnown() bool {
	knownBackends := []Backend{BackendTap, BackendVDE}

	return slices.Contains(knownBackends, b)
}

// String implements [fmt.Stringer].
func (b Backend) String() string {
	if !b.isKnown() {
		return ""
	}

	return string(b)
}

// MarshalText implements [encoding.TextMarshaler].
func (b Backend) MarshalText() ([]byte, error) {
	s := b.String()
	if s == "" {
		return nil, ErrBackendInvalid
	}

	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *Backend) UnmarshalText(text []byte) error {
	backend := Backend(text)

	if !backend.isKnown() {
		return ErrBackendInvalid
	}

	*b = backend

	return nil
}
