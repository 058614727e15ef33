// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package macrun runs a single classic Macintosh guest session end to end:
// it plans the storage bus, persists the firmware boot preference, provisions
// the host network endpoint and supervises the emulator process until it
// exits.
package macrun
