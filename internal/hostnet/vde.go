// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package hostnet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

const (
	switchExecutable  = "vde_switch"
	controlSocketName = "ctl"

	// readyAttempts and readyInterval bound how long a freshly started
	// helper may take to create its control socket.
	readyAttempts = 5
	readyInterval = time.Second

	// stopGrace is how long a helper may take to exit after SIGTERM before
	// it is killed.
	stopGrace = 5 * time.Second
)

// vdeSwitch supervises one vde_switch helper process.
type vdeSwitch struct {
	socketDir string
	owned     bool
	cmd       *exec.Cmd
	group     *errgroup.Group
}

// startSwitch makes the control socket at socketDir available. An already
// existing socket is reused and the helper behind it is left alone.
// Otherwise a new vde_switch process is started and polled until the socket
// appears.
func startSwitch(ctx context.Context, socketDir string) (*vdeSwitch, error) {
	if controlSocketReady(socketDir) {
		slog.Debug("Reusing switch control socket",
			slog.String("path", socketDir))

		return &vdeSwitch{socketDir: socketDir}, nil
	}

	cmd := exec.CommandContext(ctx, switchExecutable, "-s", socketDir)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = stopGrace

	err := cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", switchExecutable, err)
	}

	group := &errgroup.Group{}
	group.Go(cmd.Wait)

	v := &vdeSwitch{
		socketDir: socketDir,
		owned:     true,
		cmd:       cmd,
		group:     group,
	}

	err = v.waitReady(ctx)
	if err != nil {
		v.stop()

		return nil, err
	}

	slog.Debug("Switch helper started",
		slog.String("path", socketDir),
		slog.Int("pid", cmd.Process.Pid))

	return v, nil
}

func (v *vdeSwitch) waitReady(ctx context.Context) error {
	for range readyAttempts {
		if controlSocketReady(v.socketDir) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyInterval):
		}
	}

	return fmt.Errorf("%w: %s", ErrSwitchNotReady, v.socketDir)
}

// stop terminates an owned helper and removes its socket directory. A
// reused helper keeps running, its socket belongs to whoever started it.
func (v *vdeSwitch) stop() {
	if !v.owned {
		return
	}

	err := v.cmd.Process.Signal(unix.SIGTERM)
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		_ = v.cmd.Process.Kill()
	}

	killTimer := time.AfterFunc(stopGrace, func() {
		_ = v.cmd.Process.Kill()
	})
	defer killTimer.Stop()

	err = v.group.Wait()
	if err != nil {
		slog.Debug("Switch helper exited", slog.Any("error", err))
	}

	err = os.RemoveAll(v.socketDir)
	if err != nil {
		slog.Warn("Failed to remove switch socket",
			slog.String("path", v.socketDir),
			slog.Any("error", err))
	}
}

func controlSocketReady(socketDir string) bool {
	_, err := os.Stat(filepath.Join(socketDir, controlSocketName))

	return err == nil
}
