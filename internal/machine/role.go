// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

// Storage roles a launch can attach. Roles are machine independent; their
// bus addresses are not.
const (
	// RoleOS is the volume holding the installed operating system.
	RoleOS Role = "os"
	// RoleShared is the transfer volume shared with the host.
	RoleShared Role = "shared"
	// RoleInstall is the removable installer medium. Optional.
	RoleInstall Role = "install"
	// RoleExtra is an additional data volume. Optional.
	RoleExtra Role = "extra"
)

// Role names a storage attachment slot of a launch.
type Role string

// String implements [fmt.Stringer].
func (r Role) String() string {
	return string(r)
}

// Desc returns a short description of the role, used as device metadata.
func (r Role) Desc() string {
	switch r {
	case RoleOS:
		return "OS volume"
	case RoleShared:
		return "shared transfer volume"
	case RoleInstall:
		return "installer medium"
	case RoleExtra:
		return "extra volume"
	default:
		return ""
	}
}

// Removable reports whether the role attaches as removable read-only media.
func (r Role) Removable() bool {
	return r == RoleInstall
}

// rolePriority is the fixed attachment order of roles. It determines both
// the default id assignment and the order storage argument groups are
// emitted in, so identical configurations produce identical command lines.
var rolePriority = []Role{RoleOS, RoleShared, RoleInstall, RoleExtra}

// RolesInOrder returns the given roles sorted by fixed priority.
func RolesInOrder(addrs map[Role]Address) []Role {
	roles := make([]Role, 0, len(addrs))

	for _, role := range rolePriority {
		if _, ok := addrs[role]; ok {
			roles = append(roles, role)
		}
	}

	return roles
}

// Supported storage bus kinds.
const (
	// BusSCSI is the narrow SCSI bus of 68k Macs. Ids 0 through 6 are
	// usable, id 7 belongs to the controller.
	BusSCSI BusKind = "scsi"
	// BusIDE is the dual-channel IDE bus of the PowerMac. Ids 0 through 3
	// map to channel and unit pairs.
	BusIDE BusKind = "ide"
)

// BusKind identifies an emulated storage bus.
type BusKind string

// String implements [fmt.Stringer].
func (b BusKind) String() string {
	return string(b)
}

// MaxID returns the highest usable device id on the bus.
func (b BusKind) MaxID() int {
	switch b {
	case BusSCSI:
		return 6
	case BusIDE:
		return 3
	default:
		return -1
	}
}

// Address is the position of one storage attachment on the target's bus for
// a single launch.
type Address struct {
	Bus  BusKind
	ID   int
	Desc string
}
