// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"

	"github.com/macrun/macrun/internal/config"
	"github.com/macrun/macrun/internal/exitcode"
	"github.com/macrun/macrun/internal/macrun"
)

// IO provides input and output streams for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func run(ctx context.Context, flags *flags, cfg IO) error {
	launchConfig, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	spec := &macrun.Spec{
		Config:            launchConfig,
		InstallMedia:      flags.installMedia,
		ExtraDisk:         flags.extraDisk,
		BootFromInstaller: flags.bootFromInstall,
		DryRun:            flags.dryRun,
	}

	return macrun.Launch(ctx, spec, cfg.Stdin, cfg.Stdout, cfg.Stderr)
}

func handleParseArgsError(err error) int {
	// [flag.ErrHelp] is returned when help or version is requested. So
	// exit without error in this case.
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return -1
}

func handleRunError(err error) int {
	if err == nil {
		return 0
	}

	// The emulator already reported its problem on stderr, so only its
	// exit code is forwarded.
	if code, ok := exitcode.From(err); ok {
		return code
	}

	slog.Error(err.Error())

	return -1
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	flags := newFlags(cfg.Stderr)

	err := flags.ParseArgs(args[1:])
	if err != nil {
		return handleParseArgsError(err)
	}

	if flags.debug {
		setupLogging(cfg.Stderr, true)
	}

	return handleRunError(run(ctx, flags, cfg))
}
