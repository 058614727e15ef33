// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu builds and runs QEMU commands for classic Macintosh guests.
//
// A [CommandSpec] describes a complete invocation in terms of machine type,
// firmware, storage attachments and network backend. [NewCommand] compiles
// it into a fixed argument list. The same spec always compiles to the same
// argument list, so invocations can be compared, logged and tested as plain
// strings.
package qemu
