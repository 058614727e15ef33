// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pram reads and writes the boot device preference of a Macintosh
// PRAM image.
//
// The Quadra firmware keeps its settings in a small battery backed parameter
// RAM that the emulator persists as a flat 256 byte file. The boot device is
// stored as a selector byte followed by an encoded SCSI id. All other bytes
// belong to the guest and are never touched, so volume, mouse speed and
// similar settings survive a boot device change.
package pram
