// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package machine

import "fmt"

// defaultIDs is the priority table for the core roles. The OS volume gets
// the highest-priority id so the machine boots the installed system unless
// an installer boot is requested.
var defaultIDs = map[Role]int{
	RoleOS:      0,
	RoleShared:  1,
	RoleInstall: 2,
}

// Plan assigns a bus address to every role present in this launch.
//
// When bootFromInstaller is set, the ids of the OS volume and the installer
// medium are swapped so the firmware boots the installer while the OS volume
// stays attached as the install target. All other assignments are identical
// between the two modes. The extra volume, if present, takes the lowest id
// not claimed by a core role.
func Plan(
	arch Arch,
	hasInstaller, hasExtra, bootFromInstaller bool,
) (map[Role]Address, error) {
	if !arch.isKnown() {
		return nil, fmt.Errorf("%w: %s", ErrArchNotSupported, string(arch))
	}

	return plan(arch.Bus(), hasInstaller, hasExtra, bootFromInstaller)
}

func plan(
	bus BusKind,
	hasInstaller, hasExtra, bootFromInstaller bool,
) (map[Role]Address, error) {
	ids := map[Role]int{
		RoleOS:     defaultIDs[RoleOS],
		RoleShared: defaultIDs[RoleShared],
	}

	if hasInstaller {
		ids[RoleInstall] = defaultIDs[RoleInstall]
	}

	if bootFromInstaller {
		if !hasInstaller {
			return nil, ErrNoInstallerMedium
		}

		ids[RoleOS], ids[RoleInstall] = ids[RoleInstall], ids[RoleOS]
	}

	if hasExtra {
		ids[RoleExtra] = nextFreeID(ids)
	}

	addrs := make(map[Role]Address, len(ids))

	for role, id := range ids {
		if id > bus.MaxID() {
			return nil, fmt.Errorf(
				"%w: %s needs id %d but %s bus ends at %d",
				ErrAddressConflict, role, id, bus, bus.MaxID(),
			)
		}

		addrs[role] = Address{
			Bus:  bus,
			ID:   id,
			Desc: role.Desc(),
		}
	}

	return addrs, nil
}

// nextFreeID returns the lowest id not claimed by any role yet.
func nextFreeID(ids map[Role]int) int {
	used := make(map[int]bool, len(ids))
	for _, id := range ids {
		used[id] = true
	}

	next := 0
	for used[next] {
		next++
	}

	return next
}

// BootAddress returns the address the firmware must boot from: the installer
// medium in install mode, the OS volume otherwise.
func BootAddress(
	addrs map[Role]Address,
	bootFromInstaller bool,
) (Address, error) {
	role := RoleOS
	if bootFromInstaller {
		role = RoleInstall
	}

	addr, ok := addrs[role]
	if !ok {
		return Address{}, fmt.Errorf("%w: %s", ErrRoleNotPlanned, role)
	}

	return addr, nil
}
