// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "slices"

const (
	// AIOModeThreads services guest IO from a host thread pool. Works with
	// every cache mode. The emulator's default.
	AIOModeThreads AIOMode = "threads"
	// AIOModeNative uses Linux AIO. Requires a cache mode that bypasses the
	// host page cache.
	AIOModeNative AIOMode = "native"
	// AIOModeIOURing uses the io_uring interface of the host kernel.
	AIOModeIOURing AIOMode = "io_uring"
)

// AIOMode is the host IO backend for a storage attachment.
type AIOMode string

func (m AIOMode) isKnown() bool {
	knownAIOModes := []AIOMode{
		AIOModeThreads,
		AIOModeNative,
		AIOModeIOURing,
	}

	return slices.Contains(knownAIOModes, m)
}

// NeedsDirectIO reports whether the backend works only with a cache mode
// that bypasses the host page cache.
func (m AIOMode) NeedsDirectIO() bool {
	return m == AIOModeNative
}

// String implements [fmt.Stringer].
func (m AIOMode) String() string {
	if !m.isKnown() {
		return ""
	}

	return string(m)
}

// MarshalText implements [encoding.TextMarshaler].
func (m AIOMode) MarshalText() ([]byte, error) {
	s := m.String()
	if s == "" {
		return nil, ErrAIOModeInvalid
	}

	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *AIOMode) UnmarshalText(text []byte) error {
	mode := AIOMode(text)

	if !mode.isKnown() {
		return ErrAIOModeInvalid
	}

	*m = mode

	return nil
}
