// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package machine describes the supported classic Macintosh targets and maps
// the launcher's storage roles onto their emulated buses.
//
// Each target defines a storage bus (SCSI for the Quadra 800, IDE for the
// PowerMac) and a fixed priority table that assigns a bus id to each storage
// role. [Plan] computes the per-launch assignment, including the id swap that
// makes an installer medium the firmware's boot device while keeping the OS
// volume attached as an install target.
package machine
