// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package hostnet

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

type fakeLinks struct {
	links   map[string]netlink.Link
	masters map[string]string
	deleted []string

	addHook    func(netlink.Link) error
	upHook     func(netlink.Link) error
	masterHook func(netlink.Link) error
}

func newFakeLinks() *fakeLinks {
	return &fakeLinks{
		links:   make(map[string]netlink.Link),
		masters: make(map[string]string),
	}
}

func (f *fakeLinks) LinkByName(name string) (netlink.Link, error) {
	link, ok := f.links[name]
	if !ok {
		return nil, ErrLinkNotFound
	}

	return link, nil
}

func (f *fakeLinks) LinkAdd(link netlink.Link) error {
	if f.addHook != nil {
		if err := f.addHook(link); err != nil {
			return err
		}
	}

	name := link.Attrs().Name
	if _, ok := f.links[name]; ok {
		return fs.ErrExist
	}

	f.links[name] = link

	return nil
}

func (f *fakeLinks) LinkDel(link netlink.Link) error {
	name := link.Attrs().Name
	delete(f.links, name)
	f.deleted = append(f.deleted, name)

	return nil
}

func (f *fakeLinks) LinkSetUp(link netlink.Link) error {
	if f.upHook != nil {
		return f.upHook(link)
	}

	return nil
}

func (f *fakeLinks) LinkSetMaster(link netlink.Link, master netlink.Link) error {
	if f.masterHook != nil {
		if err := f.masterHook(link); err != nil {
			return err
		}
	}

	f.masters[link.Attrs().Name] = master.Attrs().Name

	return nil
}

func TestSetupTap(t *testing.T) {
	links := newFakeLinks()
	mgr := &Manager{links: links}

	res, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID:    "4421b208-3c14-4b9f-8c11-b6b5a4862cd1",
		Backend:      BackendTap,
		Bridge:       "macbr0",
		HardwareAddr: "52:54:00:12:34:56",
	})
	require.NoError(t, err)

	assert.Equal(t, BackendTap, res.Backend())
	assert.Equal(t, "macbr0", res.Bridge())
	assert.Equal(t, "tap-4421b208", res.InterfaceName())
	assert.Equal(t, "52:54:00:12:34:56", res.HardwareAddr())
	assert.Empty(t, res.SocketDir())

	assert.Contains(t, links.links, "macbr0")
	assert.Contains(t, links.links, "tap-4421b208")
	assert.Equal(t, "macbr0", links.masters["tap-4421b208"])
}

func TestSetupTapSharedBridge(t *testing.T) {
	links := newFakeLinks()
	mgr := &Manager{links: links}

	first, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID: "aaaaaaaa-1111",
		Backend:   BackendTap,
		Bridge:    "macbr0",
	})
	require.NoError(t, err)

	second, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID: "bbbbbbbb-2222",
		Backend:   BackendTap,
		Bridge:    "macbr0",
	})
	require.NoError(t, err)

	// One bridge, both interfaces attached to it.
	assert.Equal(t, "macbr0", links.masters[first.InterfaceName()])
	assert.Equal(t, "macbr0", links.masters[second.InterfaceName()])
	assert.Len(t, links.links, 3)
}

func TestSetupTapBridgeRace(t *testing.T) {
	links := newFakeLinks()
	mgr := &Manager{links: links}

	// Another session creates the bridge between our existence check and
	// our own create.
	links.addHook = func(link netlink.Link) error {
		if _, ok := link.(*netlink.Bridge); ok {
			links.links[link.Attrs().Name] = link

			return fs.ErrExist
		}

		return nil
	}

	_, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID: "cccccccc-3333",
		Backend:   BackendTap,
		Bridge:    "macbr0",
	})
	require.NoError(t, err)
}

func TestSetupTapExplicitName(t *testing.T) {
	tests := []struct {
		name     string
		spec     SetupSpec
		expected string
	}{
		{
			name: "explicit",
			spec: SetupSpec{
				SessionID: "dddddddd-4444",
				Backend:   BackendTap,
				Bridge:    "macbr0",
				Interface: "quadra0",
			},
			expected: "quadra0",
		},
		{
			name: "explicit truncated to name limit",
			spec: SetupSpec{
				SessionID: "dddddddd-4444",
				Backend:   BackendTap,
				Bridge:    "macbr0",
				Interface: "a-far-too-long-interface-name",
			},
			expected: "a-far-too-long-interface-name"[:unix.IFNAMSIZ-1],
		},
		{
			name: "derived from session",
			spec: SetupSpec{
				SessionID: "dddddddd-4444",
				Backend:   BackendTap,
				Bridge:    "macbr0",
			},
			expected: "tap-dddddddd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := &Manager{links: newFakeLinks()}

			res, err := mgr.Setup(t.Context(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.InterfaceName())
		})
	}
}

func TestSetupTapRollback(t *testing.T) {
	links := newFakeLinks()
	mgr := &Manager{links: links}

	links.masterHook = func(link netlink.Link) error {
		return errors.New("bridge full")
	}

	_, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID: "eeeeeeee-5555",
		Backend:   BackendTap,
		Bridge:    "macbr0",
	})
	require.ErrorIs(t, err, &SetupError{})

	// The half set up interface is gone, the shared bridge is not.
	assert.Contains(t, links.deleted, "tap-eeeeeeee")
	assert.NotContains(t, links.links, "tap-eeeeeeee")
	assert.Contains(t, links.links, "macbr0")
}

func TestSetupUnknownBackend(t *testing.T) {
	mgr := &Manager{links: newFakeLinks()}

	_, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID: "ffffffff-6666",
		Backend:   Backend("slirp"),
	})
	require.ErrorIs(t, err, &SetupError{})
	assert.ErrorIs(t, err, ErrBackendInvalid)
}

func TestTeardown(t *testing.T) {
	t.Run("removes own interface only", func(t *testing.T) {
		links := newFakeLinks()
		mgr := &Manager{links: links}

		res, err := mgr.Setup(t.Context(), SetupSpec{
			SessionID: "11111111-7777",
			Backend:   BackendTap,
			Bridge:    "macbr0",
		})
		require.NoError(t, err)

		res.Teardown()

		assert.NotContains(t, links.links, "tap-11111111")
		assert.Contains(t, links.links, "macbr0")
	})

	t.Run("runs only once", func(t *testing.T) {
		links := newFakeLinks()
		mgr := &Manager{links: links}

		res, err := mgr.Setup(t.Context(), SetupSpec{
			SessionID: "22222222-8888",
			Backend:   BackendTap,
			Bridge:    "macbr0",
		})
		require.NoError(t, err)

		res.Teardown()
		res.Teardown()

		assert.Equal(t, []string{"tap-22222222"}, links.deleted)
	})

	t.Run("interface already gone", func(t *testing.T) {
		links := newFakeLinks()
		mgr := &Manager{links: links}

		res, err := mgr.Setup(t.Context(), SetupSpec{
			SessionID: "33333333-9999",
			Backend:   BackendTap,
			Bridge:    "macbr0",
		})
		require.NoError(t, err)

		delete(links.links, "tap-33333333")

		res.Teardown()

		assert.Empty(t, links.deleted)
	})
}

func TestSetupVDEReuse(t *testing.T) {
	socketDir := t.TempDir()

	ctl := filepath.Join(socketDir, controlSocketName)
	require.NoError(t, os.WriteFile(ctl, nil, 0o600))

	mgr := NewManager()

	res, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID: "44444444-aaaa",
		Backend:   BackendVDE,
		SocketDir: socketDir,
	})
	require.NoError(t, err)

	assert.Equal(t, BackendVDE, res.Backend())
	assert.Equal(t, socketDir, res.SocketDir())
	assert.Empty(t, res.InterfaceName())

	// The socket belongs to whoever created it and survives teardown.
	res.Teardown()
	assert.FileExists(t, ctl)
}

func TestSetupVDEStartFailure(t *testing.T) {
	// Empty PATH so the switch helper cannot be found.
	t.Setenv("PATH", t.TempDir())

	mgr := NewManager()

	_, err := mgr.Setup(t.Context(), SetupSpec{
		SessionID: "55555555-bbbb",
		Backend:   BackendVDE,
		SocketDir: filepath.Join(t.TempDir(), "vde.ctl"),
	})
	require.ErrorIs(t, err, &SetupError{})
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestSetupSpecDerivedNames(t *testing.T) {
	spec := SetupSpec{SessionID: "4421b208-0f0e-4a3a-9b0a-0123456789ab"}

	assert.Equal(t, "tap-4421b208", spec.InterfaceName())
	assert.Equal(t,
		filepath.Join(os.TempDir(), "macrun-vde-4421b208"),
		spec.ControlSocketDir())

	spec.Interface = "tap9"
	spec.SocketDir = "/run/macrun/vde"

	assert.Equal(t, "tap9", spec.InterfaceName())
	assert.Equal(t, "/run/macrun/vde", spec.ControlSocketDir())
}
