// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package hostnet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const (
	// tapPrefix starts the derived name of a session's tap interface.
	tapPrefix = "tap-"

	// sessionIDLen is how much of the session id goes into derived resource
	// names.
	sessionIDLen = 8
)

// SetupSpec describes the network resources of one guest session.
type SetupSpec struct {
	// SessionID derives interface and socket names if no explicit ones are
	// given.
	SessionID string

	// Backend selects kernel tap or userspace switch networking.
	Backend Backend

	// Bridge is the name of the shared bridge tap interfaces attach to.
	Bridge string

	// Interface is an explicit tap interface name. Optional.
	Interface string

	// HardwareAddr is a fixed MAC address for the guest interface.
	// Optional.
	HardwareAddr string

	// SocketDir is the control socket directory for the vde backend.
	// Optional, derived from the session if empty.
	SocketDir string
}

// InterfaceName returns the name the session's tap interface will get: the
// explicit name if one is set, one derived from the session id otherwise.
// Names are truncated to the host's interface name limit.
func (s SetupSpec) InterfaceName() string {
	name := s.Interface
	if name == "" {
		name = tapPrefix + shortID(s.SessionID)
	}

	if len(name) > unix.IFNAMSIZ-1 {
		name = name[:unix.IFNAMSIZ-1]
	}

	return name
}

// ControlSocketDir returns the directory the session's vde switch control
// socket will live in: the explicit directory if one is set, one derived
// from the session id otherwise.
func (s SetupSpec) ControlSocketDir() string {
	if s.SocketDir != "" {
		return s.SocketDir
	}

	return filepath.Join(os.TempDir(), "macrun-vde-"+shortID(s.SessionID))
}

// Resource is the provisioned host network endpoint of one session.
type Resource struct {
	backend      Backend
	bridge       string
	iface        string
	hwaddr       string
	socketDir    string
	teardown     func()
	teardownOnce sync.Once
}

// Backend returns the backend the resource was provisioned for.
func (r *Resource) Backend() Backend {
	return r.backend
}

// Bridge returns the name of the shared bridge. Empty for the vde backend.
func (r *Resource) Bridge() string {
	return r.bridge
}

// InterfaceName returns the name of the session's tap interface. Empty for
// the vde backend.
func (r *Resource) InterfaceName() string {
	return r.iface
}

// HardwareAddr returns the fixed MAC address for the guest interface. Empty
// if the emulator should pick one.
func (r *Resource) HardwareAddr() string {
	return r.hwaddr
}

// SocketDir returns the switch control socket directory. Empty for the tap
// backend.
func (r *Resource) SocketDir() string {
	return r.socketDir
}

// Teardown releases the session's network resources. It runs only once, is
// safe to call on every exit path and never fails. Each step checks
// existence first and failures are logged and swallowed, since the resource
// may already be partially or fully gone.
func (r *Resource) Teardown() {
	r.teardownOnce.Do(func() {
		if r.teardown != nil {
			r.teardown()
		}
	})
}

// Manager provisions host network resources.
type Manager struct {
	links linkAPI
}

// NewManager returns a [Manager] operating on the host's links.
func NewManager() *Manager {
	return &Manager{links: hostLinks{}}
}

// Setup provisions the network endpoint described by the spec.
//
// For the tap backend the shared bridge is created if it does not exist yet
// and activated, then the session's own tap interface is created, brought up
// and attached to it. Concurrent sessions share the bridge, so a bridge
// created by another session in the meantime is not an error. If a step
// after interface creation fails, the interface is removed again before the
// error is returned. The bridge is left in place in any case.
//
// For the vde backend a switch helper process is started instead and polled
// until its control socket appears. An already existing control socket is
// reused without taking ownership of the helper.
//
// The caller must arrange for [Resource.Teardown] to run on every exit path
// of the session.
func (m *Manager) Setup(ctx context.Context, spec SetupSpec) (*Resource, error) {
	switch spec.Backend {
	case BackendTap:
		return m.setupTap(spec)
	case BackendVDE:
		return m.setupVDE(ctx, spec)
	default:
		return nil, &SetupError{
			Step: "backend",
			Err:  fmt.Errorf("%w: %s", ErrBackendInvalid, string(spec.Backend)),
		}
	}
}

func (m *Manager) setupTap(spec SetupSpec) (*Resource, error) {
	err := m.ensureBridge(spec.Bridge)
	if err != nil {
		return nil, &SetupError{Step: "bridge", Err: err}
	}

	name := spec.InterfaceName()

	err = m.addTap(name)
	if err != nil {
		return nil, &SetupError{Step: "interface", Err: err}
	}

	err = m.attachTap(name, spec.Bridge)
	if err != nil {
		// Remove the half set up interface. The bridge stays, other
		// sessions may use it.
		m.removeLink(name)

		return nil, &SetupError{Step: "attach", Err: err}
	}

	slog.Debug("Network endpoint ready",
		slog.String("bridge", spec.Bridge),
		slog.String("interface", name))

	return &Resource{
		backend:  BackendTap,
		bridge:   spec.Bridge,
		iface:    name,
		hwaddr:   spec.HardwareAddr,
		teardown: func() { m.removeLink(name) },
	}, nil
}

func (m *Manager) setupVDE(ctx context.Context, spec SetupSpec) (*Resource, error) {
	socketDir := spec.ControlSocketDir()

	vde, err := startSwitch(ctx, socketDir)
	if err != nil {
		return nil, &SetupError{Step: "switch", Err: err}
	}

	return &Resource{
		backend:   BackendVDE,
		hwaddr:    spec.HardwareAddr,
		socketDir: socketDir,
		teardown:  vde.stop,
	}, nil
}

// ensureBridge makes sure the named bridge exists and is up. A bridge
// created concurrently by another session between the existence check and
// our own create is fine.
func (m *Manager) ensureBridge(name string) error {
	link, err := m.links.LinkByName(name)

	if errors.Is(err, ErrLinkNotFound) {
		bridge := &netlink.Bridge{
			LinkAttrs: netlink.LinkAttrs{Name: name},
		}

		err = m.links.LinkAdd(bridge)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("add bridge: %w", err)
		}

		link, err = m.links.LinkByName(name)
	}

	if err != nil {
		return fmt.Errorf("get bridge: %w", err)
	}

	err = m.links.LinkSetUp(link)
	if err != nil {
		return fmt.Errorf("activate bridge: %w", err)
	}

	return nil
}

func (m *Manager) addTap(name string) error {
	tap := &netlink.Tuntap{
		LinkAttrs: netlink.LinkAttrs{Name: name},
		Mode:      netlink.TUNTAP_MODE_TAP,
		// Owned by the invoking user so the unprivileged emulator process
		// can open it.
		Owner: uint32(os.Getuid()),
	}

	err := m.links.LinkAdd(tap)
	if err != nil {
		return fmt.Errorf("add tap %s: %w", name, err)
	}

	return nil
}

func (m *Manager) attachTap(name, bridgeName string) error {
	tap, err := m.links.LinkByName(name)
	if err != nil {
		return fmt.Errorf("get tap: %w", err)
	}

	bridge, err := m.links.LinkByName(bridgeName)
	if err != nil {
		return fmt.Errorf("get bridge: %w", err)
	}

	err = m.links.LinkSetUp(tap)
	if err != nil {
		return fmt.Errorf("activate tap: %w", err)
	}

	err = m.links.LinkSetMaster(tap, bridge)
	if err != nil {
		return fmt.Errorf("attach tap to bridge: %w", err)
	}

	return nil
}

// removeLink deletes the named link if it still exists.
func (m *Manager) removeLink(name string) {
	link, err := m.links.LinkByName(name)
	if err != nil {
		// Already gone.
		return
	}

	err = m.links.LinkDel(link)
	if err != nil {
		slog.Warn("Failed to remove interface",
			slog.String("interface", name),
			slog.Any("error", err))
	}
}

func shortID(sessionID string) string {
	if len(sessionID) > sessionIDLen {
		return sessionID[:sessionIDLen]
	}

	return sessionID
}
