// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "slices"

const (
	// CacheModeWriteback uses the host page cache and reports writes as
	// completed once they reached it. The emulator's default.
	CacheModeWriteback CacheMode = "writeback"
	// CacheModeNone bypasses the host page cache for guest data.
	CacheModeNone CacheMode = "none"
	// CacheModeWritethrough uses the host page cache but reports writes only
	// once they reached the image file.
	CacheModeWritethrough CacheMode = "writethrough"
	// CacheModeDirectsync bypasses the host page cache and reports writes
	// only once they reached the image file.
	CacheModeDirectsync CacheMode = "directsync"
	// CacheModeUnsafe ignores flush requests from the guest. Fast and fine
	// for throwaway installs, data is lost on host crash.
	CacheModeUnsafe CacheMode = "unsafe"
)

// CacheMode is the host cache mode for a storage attachment.
type CacheMode string

func (m CacheMode) isKnown() bool {
	knownCacheModes := []CacheMode{
		CacheModeWriteback,
		CacheModeNone,
		CacheModeWritethrough,
		CacheModeDirectsync,
		CacheModeUnsafe,
	}

	return slices.Contains(knownCacheModes, m)
}

// DirectIO reports whether the mode bypasses the host page cache.
func (m CacheMode) DirectIO() bool {
	return m == CacheModeNone || m == CacheModeDirectsync
}

// String implements [fmt.Stringer].
func (m CacheMode) String() string {
	if !m.isKnown() {
		return ""
	}

	return string(m)
}

// MarshalText implements [encoding.TextMarshaler].
func (m CacheMode) MarshalText() ([]byte, error) {
	s := m.String()
	if s == "" {
		return nil, ErrCacheModeInvalid
	}

	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *CacheMode) UnmarshalText(text []byte) error {
	mode := CacheMode(text)

	if !mode.isKnown() {
		return ErrCacheModeInvalid
	}

	*m = mode

	return nil
}
