// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

import "slices"

// Supported target machines.
const (
	// Q800 is the Macintosh Quadra 800: 68040, SCSI storage, on-board SONIC
	// ethernet, boot preference held in battery-backed PRAM.
	Q800 Arch = "q800"
	// Mac99 is the PowerMac "mac99" board: PowerPC, IDE storage, Sun GEM
	// ethernet, boot preference passed to Open Firmware as an ordinal
	// selector.
	Mac99 Arch = "mac99"
)

// Arch identifies a supported target machine.
type Arch string

func (a Arch) isKnown() bool {
	knownArchs := []Arch{Q800, Mac99}

	return slices.Contains(knownArchs, a)
}

// String implements [fmt.Stringer].
func (a Arch) String() string {
	if !a.isKnown() {
		return ""
	}

	return string(a)
}

// MarshalText implements [encoding.TextMarshaler].
func (a Arch) MarshalText() ([]byte, error) {
	s := a.String()
	if s == "" {
		return nil, ErrArchNotSupported
	}

	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (a *Arch) UnmarshalText(text []byte) error {
	arch := Arch(text)

	if !arch.isKnown() {
		return ErrArchNotSupported
	}

	*a = arch

	return nil
}

// Emulator returns the name of the QEMU system binary for the target.
func (a Arch) Emulator() string {
	switch a {
	case Q800:
		return "qemu-system-m68k"
	case Mac99:
		return "qemu-system-ppc"
	default:
		return ""
	}
}

// MachineOption returns the value for the emulator's machine type argument.
//
// The PowerMac is always run with the VIA configured as PMU so ADB input
// works on Mac OS 9 and X guests.
func (a Arch) MachineOption() string {
	switch a {
	case Q800:
		return "q800"
	case Mac99:
		return "mac99,via=pmu"
	default:
		return ""
	}
}

// Bus returns the storage bus the target attaches its volumes to.
func (a Arch) Bus() BusKind {
	switch a {
	case Q800:
		return BusSCSI
	case Mac99:
		return BusIDE
	default:
		return ""
	}
}

// PRAMBoot reports whether the target's firmware reads its boot device
// preference from a persistent PRAM image. Targets without it take an
// ordinal boot selector on the command line instead.
func (a Arch) PRAMBoot() bool {
	return a == Q800
}

// NetModel returns the default network interface model of the target.
func (a Arch) NetModel() string {
	switch a {
	case Q800:
		return "dp83932"
	case Mac99:
		return "sungem"
	default:
		return ""
	}
}

// NetDevicePluggable reports whether the target's network interface is a
// pluggable device. On-board controllers like the Quadra's SONIC can only be
// configured through the emulator's combined nic argument, while pluggable
// ones take a separate backend and device pair.
func (a Arch) NetDevicePluggable() bool {
	return a == Mac99
}

// NeedsROM reports whether the target requires an operator-supplied firmware
// ROM image. The PowerMac ships with a built-in Open Firmware replacement.
func (a Arch) NeedsROM() bool {
	return a == Q800
}
