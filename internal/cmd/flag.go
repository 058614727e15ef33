// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"runtime/debug"
)

const (
	name = "macrun"

	defaultConfigFile = "macrun.conf"

	usageMessage = `Usage of 'macrun':
    macrun [flags...] [config-file]

The config file defaults to "./macrun.conf". A minimal Quadra 800 one:

    MACHINE=q800
    RAM_MB=64
    OS_DISK=os.img
    SHARED_DISK=shared.img
    ROM_FILE=quadra800.rom
    PRAM_FILE=pram.img

Install a system from CD onto a blank OS volume:
    macrun -install=os8-install.iso -boot-from-install

Inspect the emulator invocation without launching anything:
    macrun -dry-run
`
)

type flags struct {
	configPath string
	flagSet    *flag.FlagSet

	installMedia    string
	extraDisk       string
	bootFromInstall bool
	dryRun          bool
	version         bool
	debug           bool
}

func newFlags(output io.Writer) *flags {
	flags := &flags{
		configPath: defaultConfigFile,
	}

	flags.initFlagset(output)

	return flags
}

func (f *flags) ParseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using
	// [flag.ErrHelp] the main binary is supposed to return with a non
	// error exit code.
	if f.version {
		err := f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: err}
	}

	positionalArgs := f.flagSet.Args()

	switch len(positionalArgs) {
	case 0:
	case 1:
		if f.configFlagSet() {
			return f.fail("config file given as flag and as argument", nil)
		}

		f.configPath = positionalArgs[0]
	default:
		return f.fail("more than one config file given", nil)
	}

	return nil
}

func (f *flags) configFlagSet() bool {
	set := false

	f.flagSet.Visit(func(fl *flag.Flag) {
		if fl.Name == "config" {
			set = true
		}
	})

	return set
}

func (f *flags) initFlagset(output io.Writer) {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = f.usage

	flagSet.StringVar(
		&f.configPath,
		"config",
		f.configPath,
		"path of the launch configuration file",
	)

	flagSet.StringVar(
		&f.installMedia,
		"install",
		f.installMedia,
		"attach the given image as installer medium",
	)

	flagSet.StringVar(
		&f.extraDisk,
		"extra-disk",
		f.extraDisk,
		"attach the given image as extra volume",
	)

	flagSet.BoolVar(
		&f.bootFromInstall,
		"boot-from-install",
		f.bootFromInstall,
		"boot the installer medium instead of the OS volume",
	)

	flagSet.BoolVar(
		&f.dryRun,
		"dry-run",
		f.dryRun,
		"print the emulator command line instead of launching",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) printVersionInformation() error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ErrReadBuildInfo
	}

	fmt.Fprintf(f.flagSet.Output(), "Version: %s\n", buildInfo.Main.Version)

	return flag.ErrHelp
}

func (f *flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}
