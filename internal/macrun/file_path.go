// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package macrun

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/macrun/macrun/internal/config"
)

func validateFilePath(name string) error {
	stat, err := os.Stat(name)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if !stat.Mode().IsRegular() {
		return ErrNotRegularFile
	}

	return nil
}

// validateFiles checks that everything the launch needs from the host is
// actually present. The PRAM image is not checked since it is created on
// demand.
func validateFiles(cfg *config.Config, installMedia, extraDisk string) error {
	_, err := exec.LookPath(cfg.QEMUBinary())
	if err != nil {
		return fmt.Errorf("emulator binary: %w", err)
	}

	err = validateFilePath(cfg.OSDisk())
	if err != nil {
		return fmt.Errorf("os volume: %w", err)
	}

	err = validateFilePath(cfg.SharedDisk())
	if err != nil {
		return fmt.Errorf("shared volume: %w", err)
	}

	if cfg.ROMFile() != "" {
		err = validateFilePath(cfg.ROMFile())
		if err != nil {
			return fmt.Errorf("rom image: %w", err)
		}
	}

	if installMedia != "" {
		err = validateFilePath(installMedia)
		if err != nil {
			return fmt.Errorf("installer medium: %w", err)
		}
	}

	if extraDisk != "" {
		err = validateFilePath(extraDisk)
		if err != nil {
			return fmt.Errorf("extra volume: %w", err)
		}
	}

	return nil
}
