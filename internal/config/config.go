// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/macrun/macrun/internal/hostnet"
	"github.com/macrun/macrun/internal/machine"
	"github.com/macrun/macrun/internal/qemu"
)

// Recognized configuration keys.
const (
	keyMachine      = "MACHINE"
	keyRAMMB        = "RAM_MB"
	keyOSDisk       = "OS_DISK"
	keySharedDisk   = "SHARED_DISK"
	keyROMFile      = "ROM_FILE"
	keyPRAMFile     = "PRAM_FILE"
	keyInstallMedia = "INSTALL_MEDIA"
	keyExtraDisk    = "EXTRA_DISK"
	keyCacheMode    = "CACHE_MODE"
	keyAIOMode      = "AIO_MODE"
	keyBridgeName   = "BRIDGE_NAME"
	keyTapName      = "TAP_NAME"
	keyMACAddr      = "MAC_ADDR"
	keyNetModel     = "NET_MODEL"
	keyNetBackend   = "NET_BACKEND"
	keyVDESocket    = "VDE_SOCKET"
	keyDisplayType  = "DISPLAY_TYPE"
	keyAudioBackend = "AUDIO_BACKEND"
	keyQEMUBinary   = "QEMU_BINARY"
	keyCPUModel     = "CPU_MODEL"
	keyExtraArgs    = "EXTRA_ARGS"
)

// DefaultBridge is the bridge name sessions share unless configured
// otherwise.
const DefaultBridge = "macbr0"

var commonRequiredKeys = []string{
	keyRAMMB,
	keyOSDisk,
	keySharedDisk,
}

var knownKeys = []string{
	keyMachine,
	keyRAMMB,
	keyOSDisk,
	keySharedDisk,
	keyROMFile,
	keyPRAMFile,
	keyInstallMedia,
	keyExtraDisk,
	keyCacheMode,
	keyAIOMode,
	keyBridgeName,
	keyTapName,
	keyMACAddr,
	keyNetModel,
	keyNetBackend,
	keyVDESocket,
	keyDisplayType,
	keyAudioBackend,
	keyQEMUBinary,
	keyCPUModel,
	keyExtraArgs,
}

// schema declares what a target machine requires beyond the common keys.
type schema struct {
	required []string
	ramMin   uint64
	ramMax   uint64
}

var schemas = map[machine.Arch]schema{
	machine.Q800: {
		required: []string{keyROMFile, keyPRAMFile},
		ramMin:   8,
		ramMax:   1024,
	},
	machine.Mac99: {
		ramMin: 32,
		ramMax: 2048,
	},
}

// Config is a validated launch configuration. It is immutable once loaded.
type Config struct {
	arch         machine.Arch
	ramMB        uint64
	osDisk       string
	sharedDisk   string
	romFile      string
	pramFile     string
	installMedia string
	extraDisk    string
	cacheMode    qemu.CacheMode
	aioMode      qemu.AIOMode
	bridge       string
	tapName      string
	mac          string
	netModel     string
	netBackend   hostnet.Backend
	vdeSocket    string
	displayType  qemu.DisplayType
	audioBackend string
	qemuBinary   string
	cpuModel     string
	extraArgs    []string
	extra        map[string]string
}

// Load reads and validates the configuration file at path.
//
// Validation is complete after Load: every key the target machine's schema
// requires is present and every recognized value is well formed. Unknown
// keys never fail the load, they are collected for [Config.Extra].
func Load(path string) (*Config, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read %s: %w", path, err)}
	}

	return parse(values)
}

func parse(values map[string]string) (*Config, error) {
	cfg := &Config{}

	if values[keyMachine] == "" {
		return nil, &Error{Key: keyMachine, Err: ErrKeyMissing}
	}

	err := cfg.arch.UnmarshalText([]byte(values[keyMachine]))
	if err != nil {
		return nil, &Error{Key: keyMachine, Err: err}
	}

	sch := schemas[cfg.arch]

	for _, key := range commonRequiredKeys {
		if values[key] == "" {
			return nil, &Error{Key: key, Err: ErrKeyMissing}
		}
	}

	for _, key := range sch.required {
		if values[key] == "" {
			return nil, &Error{Key: key, Err: ErrKeyMissing}
		}
	}

	cfg.ramMB, err = strconv.ParseUint(values[keyRAMMB], 10, 64)
	if err != nil {
		return nil, &Error{Key: keyRAMMB, Err: err}
	}

	if cfg.ramMB < sch.ramMin || cfg.ramMB > sch.ramMax {
		return nil, &Error{
			Key: keyRAMMB,
			Err: fmt.Errorf("%w: %d not in %d..%d MB",
				ErrRAMOutOfRange, cfg.ramMB, sch.ramMin, sch.ramMax),
		}
	}

	cfg.osDisk = values[keyOSDisk]
	cfg.sharedDisk = values[keySharedDisk]
	cfg.romFile = values[keyROMFile]
	cfg.pramFile = values[keyPRAMFile]
	cfg.installMedia = values[keyInstallMedia]
	cfg.extraDisk = values[keyExtraDisk]

	err = parseEnums(cfg, values)
	if err != nil {
		return nil, err
	}

	if cfg.aioMode.NeedsDirectIO() && !cfg.cacheMode.DirectIO() {
		return nil, &Error{Key: keyAIOMode, Err: ErrAIOCacheCombination}
	}

	if values[keyMACAddr] != "" {
		_, err := net.ParseMAC(values[keyMACAddr])
		if err != nil {
			return nil, &Error{Key: keyMACAddr, Err: err}
		}

		cfg.mac = values[keyMACAddr]
	}

	cfg.bridge = orDefault(values[keyBridgeName], DefaultBridge)
	cfg.tapName = values[keyTapName]
	cfg.vdeSocket = values[keyVDESocket]
	cfg.netModel = orDefault(values[keyNetModel], cfg.arch.NetModel())
	cfg.audioBackend = values[keyAudioBackend]
	cfg.qemuBinary = orDefault(values[keyQEMUBinary], cfg.arch.Emulator())
	cfg.cpuModel = values[keyCPUModel]
	cfg.extraArgs = strings.Fields(values[keyExtraArgs])
	cfg.extra = collectExtra(values)

	return cfg, nil
}

// parseEnums validates all enumerated values into their typed forms.
func parseEnums(cfg *Config, values map[string]string) error {
	if values[keyCacheMode] != "" {
		err := cfg.cacheMode.UnmarshalText([]byte(values[keyCacheMode]))
		if err != nil {
			return &Error{Key: keyCacheMode, Err: err}
		}
	}

	if values[keyAIOMode] != "" {
		err := cfg.aioMode.UnmarshalText([]byte(values[keyAIOMode]))
		if err != nil {
			return &Error{Key: keyAIOMode, Err: err}
		}
	}

	if values[keyDisplayType] != "" {
		err := cfg.displayType.UnmarshalText([]byte(values[keyDisplayType]))
		if err != nil {
			return &Error{Key: keyDisplayType, Err: err}
		}
	}

	cfg.netBackend = hostnet.BackendTap

	if values[keyNetBackend] != "" {
		err := cfg.netBackend.UnmarshalText([]byte(values[keyNetBackend]))
		if err != nil {
			return &Error{Key: keyNetBackend, Err: err}
		}
	}

	return nil
}

// collectExtra returns all values with unrecognized keys.
func collectExtra(values map[string]string) map[string]string {
	extra := make(map[string]string)

	for key, value := range values {
		if !slices.Contains(knownKeys, key) {
			extra[key] = value
		}
	}

	if len(extra) > 0 {
		slog.Debug("Passing through unrecognized config keys",
			slog.Any("keys", slices.Sorted(maps.Keys(extra))))
	}

	return extra
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

// Arch returns the target machine.
func (c *Config) Arch() machine.Arch {
	return c.arch
}

// RAMMB returns the guest memory size in MB.
func (c *Config) RAMMB() uint64 {
	return c.ramMB
}

// OSDisk returns the path of the OS volume image.
func (c *Config) OSDisk() string {
	return c.osDisk
}

// SharedDisk returns the path of the shared transfer volume image.
func (c *Config) SharedDisk() string {
	return c.sharedDisk
}

// ROMFile returns the path of the firmware ROM image. Empty for machines
// with built-in firmware.
func (c *Config) ROMFile() string {
	return c.romFile
}

// PRAMFile returns the path of the PRAM image. Empty for machines without
// persistent parameter RAM.
func (c *Config) PRAMFile() string {
	return c.pramFile
}

// InstallMedia returns the configured installer medium path. May be empty.
func (c *Config) InstallMedia() string {
	return c.installMedia
}

// ExtraDisk returns the configured extra volume path. May be empty.
func (c *Config) ExtraDisk() string {
	return c.extraDisk
}

// CacheMode returns the host cache mode for disk images. Empty means the
// emulator's default.
func (c *Config) CacheMode() qemu.CacheMode {
	return c.cacheMode
}

// AIOMode returns the host IO backend for disk images. Empty means the
// emulator's default.
func (c *Config) AIOMode() qemu.AIOMode {
	return c.aioMode
}

// Bridge returns the name of the shared bridge.
func (c *Config) Bridge() string {
	return c.bridge
}

// TapName returns the explicit tap interface name. Empty means derive one
// from the session.
func (c *Config) TapName() string {
	return c.tapName
}

// MAC returns the fixed guest MAC address. Empty lets the emulator pick.
func (c *Config) MAC() string {
	return c.mac
}

// NetModel returns the emulated network interface model.
func (c *Config) NetModel() string {
	return c.netModel
}

// NetBackend returns the host network backend.
func (c *Config) NetBackend() hostnet.Backend {
	return c.netBackend
}

// VDESocket returns the vde control socket directory. Empty means derive
// one from the session.
func (c *Config) VDESocket() string {
	return c.vdeSocket
}

// DisplayType returns the host display backend. Empty means the emulator's
// default.
func (c *Config) DisplayType() qemu.DisplayType {
	return c.displayType
}

// AudioBackend returns the host audio backend. Empty runs without sound.
func (c *Config) AudioBackend() string {
	return c.audioBackend
}

// QEMUBinary returns the emulator executable to run.
func (c *Config) QEMUBinary() string {
	return c.qemuBinary
}

// CPUModel returns the guest CPU model. Empty means the machine's default.
func (c *Config) CPUModel() string {
	return c.cpuModel
}

// ExtraArgs returns additional raw emulator arguments.
func (c *Config) ExtraArgs() []string {
	return slices.Clone(c.extraArgs)
}

// Extra returns all unrecognized keys and their values.
func (c *Config) Extra() map[string]string {
	return maps.Clone(c.extra)
}
