// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectedErr error
		assert      func(t *testing.T, f *flags)
	}{
		{
			name: "defaults",
			args: []string{},
			assert: func(t *testing.T, f *flags) {
				t.Helper()
				assert.Equal(t, defaultConfigFile, f.configPath)
				assert.Empty(t, f.installMedia)
				assert.False(t, f.bootFromInstall)
				assert.False(t, f.dryRun)
				assert.False(t, f.debug)
			},
		},
		{
			name: "config file",
			args: []string{"boxes/quadra.conf"},
			assert: func(t *testing.T, f *flags) {
				t.Helper()
				assert.Equal(t, "boxes/quadra.conf", f.configPath)
			},
		},
		{
			name: "config flag",
			args: []string{"-config=boxes/powermac.conf"},
			assert: func(t *testing.T, f *flags) {
				t.Helper()
				assert.Equal(t, "boxes/powermac.conf", f.configPath)
			},
		},
		{
			name:        "config flag and file",
			args:        []string{"-config=a.conf", "b.conf"},
			expectedErr: &ParseArgsError{},
		},
		{
			name: "all flags",
			args: []string{
				"-install=os8-install.iso",
				"-boot-from-install",
				"-extra-disk=games.img",
				"-dry-run",
				"-debug",
				"quadra.conf",
			},
			assert: func(t *testing.T, f *flags) {
				t.Helper()
				assert.Equal(t, "quadra.conf", f.configPath)
				assert.Equal(t, "os8-install.iso", f.installMedia)
				assert.Equal(t, "games.img", f.extraDisk)
				assert.True(t, f.bootFromInstall)
				assert.True(t, f.dryRun)
				assert.True(t, f.debug)
			},
		},
		{
			name:        "too many positional args",
			args:        []string{"a.conf", "b.conf"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "unknown flag",
			args:        []string{"-frobnicate"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "help",
			args:        []string{"-h"},
			expectedErr: flag.ErrHelp,
		},
		{
			name:        "version",
			args:        []string{"-version"},
			expectedErr: flag.ErrHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := newFlags(io.Discard)

			err := flags.ParseArgs(tt.args)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			tt.assert(t, flags)
		})
	}
}

func TestUsage(t *testing.T) {
	var output bytes.Buffer

	flags := newFlags(&output)
	flags.flagSet.Usage()

	assert.Contains(t, output.String(), "Usage of 'macrun':")
	assert.Contains(t, output.String(), "-boot-from-install")
}
