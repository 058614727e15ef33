// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package macrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/macrun/macrun/internal/config"
	"github.com/macrun/macrun/internal/hostnet"
	"github.com/macrun/macrun/internal/machine"
	"github.com/macrun/macrun/internal/pram"
	"github.com/macrun/macrun/internal/qemu"
)

// Spec describes a single [Launch].
type Spec struct {
	// Config is the validated launch configuration.
	Config *config.Config

	// SessionID distinguishes concurrent launches from each other. Host
	// resource names are derived from it. A random one is generated if
	// empty.
	SessionID string

	// InstallMedia overrides the configured installer medium path.
	InstallMedia string

	// ExtraDisk overrides the configured extra volume path.
	ExtraDisk string

	// BootFromInstaller makes the firmware boot the installer medium
	// instead of the OS volume. The OS volume stays attached as the
	// install target.
	BootFromInstaller bool

	// DryRun compiles the emulator command line and prints it instead of
	// launching. The host is left untouched: nothing is validated, the
	// PRAM image is not written and no network resources are provisioned.
	DryRun bool

	// Network provisions the host network endpoint. A [hostnet.Manager]
	// operating on the real host is used if nil.
	Network NetworkManager
}

// NetworkManager provisions the host side of the guest's network.
type NetworkManager interface {
	Setup(ctx context.Context, spec hostnet.SetupSpec) (NetworkResource, error)
}

// NetworkResource is a provisioned network endpoint that can be released.
type NetworkResource interface {
	Teardown()
}

// hostNetwork adapts [hostnet.Manager] to the [NetworkManager] interface.
type hostNetwork struct {
	manager *hostnet.Manager
}

func (h hostNetwork) Setup(
	ctx context.Context,
	spec hostnet.SetupSpec,
) (NetworkResource, error) {
	res, err := h.manager.Setup(ctx, spec)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Launch runs a guest session with the given [Spec].
//
// Phases run in fixed order: validation, address planning, boot preference,
// network endpoint, command construction, emulator process. An error in one
// phase aborts all later ones, and the network endpoint is released again on
// every exit path once it exists. A dry run stops after command
// construction and provisions nothing. If the emulator terminates with a
// non-zero exit code, the returned error carries it as an exitcode.Error.
func Launch(
	ctx context.Context,
	spec *Spec,
	stdin io.Reader,
	stdout, stderr io.Writer,
) error {
	cfg := spec.Config

	sessionID := spec.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	installMedia := override("installer medium", spec.InstallMedia, cfg.InstallMedia())
	extraDisk := override("extra volume", spec.ExtraDisk, cfg.ExtraDisk())

	if !spec.DryRun {
		err := validateFiles(cfg, installMedia, extraDisk)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
	}

	addrs, err := machine.Plan(
		cfg.Arch(),
		installMedia != "",
		extraDisk != "",
		spec.BootFromInstaller,
	)
	if err != nil {
		return err
	}

	slog.Debug("Session planned",
		slog.String("session", sessionID),
		slog.String("machine", cfg.Arch().String()))

	for _, role := range machine.RolesInOrder(addrs) {
		addr := addrs[role]
		slog.Debug("Volume planned",
			slog.String("volume", addr.Desc),
			slog.String("bus", addr.Bus.String()),
			slog.Int("id", addr.ID))
	}

	netSpec := hostnet.SetupSpec{
		SessionID:    sessionID,
		Backend:      cfg.NetBackend(),
		Bridge:       cfg.Bridge(),
		Interface:    cfg.TapName(),
		HardwareAddr: cfg.MAC(),
		SocketDir:    cfg.VDESocket(),
	}

	paths := map[machine.Role]string{
		machine.RoleOS:     cfg.OSDisk(),
		machine.RoleShared: cfg.SharedDisk(),
	}

	if installMedia != "" {
		paths[machine.RoleInstall] = installMedia
	}

	if extraDisk != "" {
		paths[machine.RoleExtra] = extraDisk
	}

	cmdSpec := buildCommandSpec(cfg, addrs, paths, netSpec, spec.BootFromInstaller)

	if spec.DryRun {
		cmd, err := qemu.NewCommand(cmdSpec)
		if err != nil {
			return err
		}

		fmt.Fprintln(stdout, cmd.String())

		return nil
	}

	err = writeBootPreference(cfg, addrs, spec.BootFromInstaller)
	if err != nil {
		return err
	}

	network := spec.Network
	if network == nil {
		network = hostNetwork{manager: hostnet.NewManager()}
	}

	res, err := network.Setup(ctx, netSpec)
	if err != nil {
		return err
	}
	defer res.Teardown()

	cmd, err := qemu.NewCommand(cmdSpec)
	if err != nil {
		return err
	}

	slog.Debug("Launching emulator", slog.String("command", cmd.String()))

	err = cmd.Run(ctx, stdin, stdout, stderr)
	if err != nil {
		return fmt.Errorf("emulator: %w", err)
	}

	return nil
}

// writeBootPreference persists the boot device preference for machines that
// read it from a PRAM image. Other machines get an ordinal boot selector on
// the command line instead, see bootOrder.
func writeBootPreference(
	cfg *config.Config,
	addrs map[machine.Role]machine.Address,
	bootFromInstaller bool,
) error {
	if !cfg.Arch().PRAMBoot() {
		return nil
	}

	addr, err := machine.BootAddress(addrs, bootFromInstaller)
	if err != nil {
		return err
	}

	img := pram.NewImage(cfg.PRAMFile())

	err = img.Ensure()
	if err != nil {
		return fmt.Errorf("prepare pram image: %w", err)
	}

	err = img.WriteBootTarget(addr.ID)
	if err != nil {
		return fmt.Errorf("set boot device: %w", err)
	}

	slog.Debug("Boot preference written",
		slog.String("image", cfg.PRAMFile()),
		slog.Int("device", addr.ID))

	return nil
}

func buildCommandSpec(
	cfg *config.Config,
	addrs map[machine.Role]machine.Address,
	paths map[machine.Role]string,
	netSpec hostnet.SetupSpec,
	bootFromInstaller bool,
) qemu.CommandSpec {
	pramPath := ""
	if cfg.Arch().PRAMBoot() {
		pramPath = cfg.PRAMFile()
	}

	return qemu.CommandSpec{
		Executable: cfg.QEMUBinary(),
		Machine:    cfg.Arch().MachineOption(),
		CPU:        cfg.CPUModel(),
		Memory:     cfg.RAMMB(),
		BIOS:       cfg.ROMFile(),
		PRAM:       pramPath,
		Storage:    storageAttachments(cfg, addrs, paths),
		Network:    networkAttachment(cfg, netSpec),
		Display:    cfg.DisplayType(),
		Audio:      cfg.AudioBackend(),
		BootOrder:  bootOrder(cfg.Arch(), bootFromInstaller),
		ExtraArgs:  extraArguments(cfg.ExtraArgs()),
	}
}

// storageAttachments maps the planned addresses to emulator attachments.
// Roles are emitted in fixed priority order so identical configurations
// produce identical command lines.
func storageAttachments(
	cfg *config.Config,
	addrs map[machine.Role]machine.Address,
	paths map[machine.Role]string,
) []qemu.StorageAttachment {
	atts := make([]qemu.StorageAttachment, 0, len(addrs))

	for _, role := range machine.RolesInOrder(addrs) {
		atts = append(atts, qemu.StorageAttachment{
			Path:  paths[role],
			ID:    role.String(),
			Addr:  addrs[role],
			CDROM: role.Removable(),
			Cache: cfg.CacheMode(),
			AIO:   cfg.AIOMode(),
		})
	}

	return atts
}

func networkAttachment(
	cfg *config.Config,
	netSpec hostnet.SetupSpec,
) *qemu.NetworkAttachment {
	att := &qemu.NetworkAttachment{
		Model:       cfg.NetModel(),
		Pluggable:   cfg.Arch().NetDevicePluggable(),
		BackendKind: netSpec.Backend.String(),
		MAC:         cfg.MAC(),
	}

	switch netSpec.Backend {
	case hostnet.BackendTap:
		// The interfaces are managed here, not by emulator ifup scripts.
		att.BackendOpts = []string{
			"ifname=" + netSpec.InterfaceName(),
			"script=no",
			"downscript=no",
		}
	case hostnet.BackendVDE:
		att.BackendOpts = []string{
			"sock=" + netSpec.ControlSocketDir(),
		}
	}

	return att
}

// bootOrder returns the ordinal boot selector for machines that take one on
// the command line: the first CD drive in install mode, the first hard disk
// otherwise.
func bootOrder(arch machine.Arch, bootFromInstaller bool) string {
	if arch.PRAMBoot() {
		return ""
	}

	if bootFromInstaller {
		return "d"
	}

	return "c"
}

// extraArguments converts the configured raw emulator arguments. A word
// with a dash prefix starts a new argument, following words up to the next
// dash form its value. The arguments count as unique so clashes with the
// essential arguments are caught when the command is compiled.
func extraArguments(words []string) []qemu.Argument {
	args := make([]qemu.Argument, 0, len(words))

	for i := 0; i < len(words); i++ {
		name := strings.TrimPrefix(words[i], "-")

		value := []string{}
		for i+1 < len(words) && !strings.HasPrefix(words[i+1], "-") {
			i++
			value = append(value, words[i])
		}

		args = append(args, qemu.UniqueArg(name, strings.Join(value, " ")))
	}

	return args
}

// override resolves a path that can come from both the command line and the
// configuration file. The command line wins and replacing a configured value
// is logged.
func override(name, given, configured string) string {
	if given == "" {
		return configured
	}

	if configured != "" && configured != given {
		slog.Debug("Configured path overridden",
			slog.String("path", name),
			slog.String("configured", configured),
			slog.String("used", given))
	}

	return given
}
