// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/macrun/macrun/internal/exitcode"
	"github.com/macrun/macrun/internal/machine"
)

const (
	// audioDeviceID pairs the audiodev backend with the machine's sound
	// hardware.
	audioDeviceID = "audio0"

	// netBackendID pairs a pluggable network device with its backend.
	netBackendID = "net0"

	// ideUnitsPerChannel maps flat bus ids to IDE channel and unit pairs.
	ideUnitsPerChannel = 2

	// waitDelay is how long the emulator may take to shut down after the
	// context is canceled before it is killed.
	waitDelay = 10 * time.Second
)

// StorageAttachment attaches one image file to the guest's storage bus.
type StorageAttachment struct {
	// Path to the raw image file on the host.
	Path string

	// ID pairs the backing drive with its guest device. Must be unique
	// within a [CommandSpec].
	ID string

	// Addr is the position of the device on the guest's storage bus.
	Addr machine.Address

	// CDROM attaches the image as read only removable medium instead of a
	// hard disk.
	CDROM bool

	// Cache is the host cache mode for the image. Empty leaves the
	// emulator's default in place.
	Cache CacheMode

	// AIO is the host IO backend for the image. Empty leaves the emulator's
	// default in place.
	AIO AIOMode
}

// NetworkAttachment attaches a host network backend to the guest's ethernet
// interface.
type NetworkAttachment struct {
	// Model of the emulated interface.
	Model string

	// Pluggable devices attach as separate backend and device argument
	// pair. On-board controllers can only be configured through the
	// combined nic argument.
	Pluggable bool

	// BackendKind is the host backend, like "tap" or "vde".
	BackendKind string

	// BackendOpts are options for the host backend, like "ifname=tap0".
	BackendOpts []string

	// MAC is the hardware address of the guest interface. Empty lets the
	// emulator pick one.
	MAC string
}

// CommandSpec defines the parameters for a [Command].
type CommandSpec struct {
	// Path to the qemu-system binary.
	Executable string

	// Machine is the value for the emulator's machine type argument.
	Machine string

	// CPU type to use. Depends on machine type and QEMU binary used.
	CPU string

	// Memory for the machine in MB.
	Memory uint64

	// BIOS is the path to the firmware ROM image. Required by machines
	// without a built-in firmware replacement.
	BIOS string

	// PRAM is the path to the parameter RAM image. The machine's firmware
	// persists its settings in it, including the boot device preference.
	PRAM string

	// Storage lists the volumes attached to the guest's storage bus.
	Storage []StorageAttachment

	// Network is the host backend for the guest's ethernet interface. Nil
	// runs the guest without network.
	Network *NetworkAttachment

	// Display is the host display backend. Empty leaves the emulator's
	// default in place.
	Display DisplayType

	// Audio is the host audio backend, like "pa" or "sdl". Empty runs the
	// guest without sound output.
	Audio string

	// BootOrder is the firmware's ordinal boot selector, like "c" or "d".
	// Machines that read their boot preference from PRAM leave it empty.
	BootOrder string

	// ExtraArgs are extra arguments that are passed to the QEMU command.
	// They must not interfere with the essential arguments set by the
	// command itself or an error will be returned by [NewCommand].
	ExtraArgs []Argument
}

// Validate checks for known incompatibilities.
func (s *CommandSpec) Validate() error {
	seen := make(map[string]bool, len(s.Storage))

	for _, att := range s.Storage {
		if seen[att.ID] {
			return &ArgumentError{"duplicate storage id: " + att.ID}
		}

		seen[att.ID] = true

		if att.Cache != "" && !att.Cache.isKnown() {
			return &ArgumentError{
				"unknown cache mode: " + string(att.Cache),
			}
		}

		if att.AIO != "" && !att.AIO.isKnown() {
			return &ArgumentError{
				"unknown aio mode: " + string(att.AIO),
			}
		}

		if att.AIO.NeedsDirectIO() && !att.Cache.DirectIO() {
			return &ArgumentError{
				"aio mode " + att.AIO.String() +
					" requires a cache mode that bypasses the host page cache",
			}
		}

		switch att.Addr.Bus {
		case machine.BusSCSI, machine.BusIDE:
		default:
			return &ArgumentError{
				"unknown storage bus: " + att.Addr.Bus.String(),
			}
		}
	}

	if s.Display != "" && !s.Display.isKnown() {
		return &ArgumentError{
			"unknown display type: " + string(s.Display),
		}
	}

	if s.Network != nil {
		if s.Network.Model == "" {
			return &ArgumentError{"network model missing"}
		}

		if s.Network.BackendKind == "" {
			return &ArgumentError{"network backend missing"}
		}
	}

	return nil
}

// arguments compiles the argument list for the QEMU command.
func (s *CommandSpec) arguments() []Argument {
	machineValue := s.Machine
	if s.Audio != "" {
		machineValue += ",audiodev=" + audioDeviceID
	}

	args := []Argument{
		UniqueArg("M", machineValue),
	}

	if s.CPU != "" {
		args = append(args, UniqueArg("cpu", s.CPU))
	}

	if s.Memory != 0 {
		args = append(args, UniqueArg("m", strconv.FormatUint(s.Memory, 10)))
	}

	if s.BIOS != "" {
		args = append(args, UniqueArg("bios", s.BIOS))
	}

	if s.PRAM != "" {
		args = append(args, RepeatableArg("drive",
			"file="+s.PRAM,
			"format=raw",
			"if=mtd",
		))
	}

	for _, att := range s.Storage {
		args = append(args, att.arguments()...)
	}

	if s.Network != nil {
		args = append(args, s.Network.arguments()...)
	}

	if s.Display != "" {
		args = append(args, UniqueArg("display", s.Display.String()))
	}

	if s.Audio != "" {
		args = append(args, RepeatableArg("audiodev",
			s.Audio,
			"id="+audioDeviceID,
		))
	}

	if s.BootOrder != "" {
		args = append(args, UniqueArg("boot", s.BootOrder))
	}

	args = append(args, s.ExtraArgs...)

	return args
}

// arguments returns the drive and device argument pair for the attachment.
func (a *StorageAttachment) arguments() []Argument {
	media := "disk"
	if a.CDROM {
		media = "cdrom"
	}

	driveOpts := []string{
		"file=" + a.Path,
		"format=raw",
		"media=" + media,
		"if=none",
		"id=" + a.ID,
	}

	if a.Cache != "" {
		driveOpts = append(driveOpts, "cache="+a.Cache.String())
	}

	if a.AIO != "" {
		driveOpts = append(driveOpts, "aio="+a.AIO.String())
	}

	if a.CDROM {
		driveOpts = append(driveOpts, "readonly=on")
	}

	return []Argument{
		RepeatableArg("drive", driveOpts...),
		RepeatableArg("device", a.deviceOpts()...),
	}
}

func (a *StorageAttachment) deviceOpts() []string {
	switch a.Addr.Bus {
	case machine.BusSCSI:
		device := "scsi-hd"
		if a.CDROM {
			device = "scsi-cd"
		}

		return []string{
			device,
			"scsi-id=" + strconv.Itoa(a.Addr.ID),
			"drive=" + a.ID,
		}
	case machine.BusIDE:
		device := "ide-hd"
		if a.CDROM {
			device = "ide-cd"
		}

		return []string{
			device,
			"bus=ide." + strconv.Itoa(a.Addr.ID/ideUnitsPerChannel),
			"unit=" + strconv.Itoa(a.Addr.ID%ideUnitsPerChannel),
			"drive=" + a.ID,
		}
	default: // Unknown buses are rejected by Validate.
		return nil
	}
}

// arguments returns the network argument group for the attachment.
func (n *NetworkAttachment) arguments() []Argument {
	if n.Pluggable {
		netdevOpts := make([]string, 0, len(n.BackendOpts)+2)
		netdevOpts = append(netdevOpts, n.BackendKind, "id="+netBackendID)
		netdevOpts = append(netdevOpts, n.BackendOpts...)

		deviceOpts := []string{n.Model, "netdev=" + netBackendID}
		if n.MAC != "" {
			deviceOpts = append(deviceOpts, "mac="+n.MAC)
		}

		return []Argument{
			RepeatableArg("netdev", netdevOpts...),
			RepeatableArg("device", deviceOpts...),
		}
	}

	nicOpts := make([]string, 0, len(n.BackendOpts)+3)
	nicOpts = append(nicOpts, n.BackendKind)
	nicOpts = append(nicOpts, n.BackendOpts...)
	nicOpts = append(nicOpts, "model="+n.Model)

	if n.MAC != "" {
		nicOpts = append(nicOpts, "mac="+n.MAC)
	}

	return []Argument{RepeatableArg("nic", nicOpts...)}
}

// Command is a ready to run emulator invocation.
type Command struct {
	name string
	args []string
}

// NewCommand validates the spec and compiles it into a [Command].
func NewCommand(spec CommandSpec) (*Command, error) {
	err := spec.Validate()
	if err != nil {
		return nil, err
	}

	args, err := BuildArgumentStrings(spec.arguments())
	if err != nil {
		return nil, err
	}

	return &Command{
		name: spec.Executable,
		args: args,
	}, nil
}

// String implements [fmt.Stringer].
func (c *Command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// Args returns the complete argument list.
func (c *Command) Args() []string {
	return slices.Clone(c.args)
}

// Run executes the emulator and blocks until it terminated.
//
// Canceling the context sends SIGTERM so the emulator can flush its images
// and remove its window. It is killed if it has not exited after a grace
// period. If the emulator terminates itself with a non-zero exit code, the
// returned error carries that code as [exitcode.Error].
func (c *Command) Run(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
) error {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitcode.Error(exitErr.ExitCode())
	}

	if err != nil {
		return fmt.Errorf("run emulator: %w", err)
	}

	return nil
}
