// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrun/macrun/internal/qemu"
)

func TestBuildArgumentStrings(t *testing.T) {
	tests := []struct {
		name        string
		args        []qemu.Argument
		expected    []string
		expectedErr error
	}{
		{
			name: "values and flags",
			args: []qemu.Argument{
				qemu.UniqueArg("M", "q800"),
				qemu.UniqueArg("m", "256"),
				qemu.UniqueArg("snapshot"),
			},
			expected: []string{
				"-M", "q800",
				"-m", "256",
				"-snapshot",
			},
		},
		{
			name: "joins values",
			args: []qemu.Argument{
				qemu.RepeatableArg("drive", "file=os.img", "format=raw"),
			},
			expected: []string{
				"-drive", "file=os.img,format=raw",
			},
		},
		{
			name: "repeatable with distinct values",
			args: []qemu.Argument{
				qemu.RepeatableArg("device", "scsi-hd,scsi-id=0"),
				qemu.RepeatableArg("device", "scsi-hd,scsi-id=1"),
			},
			expected: []string{
				"-device", "scsi-hd,scsi-id=0",
				"-device", "scsi-hd,scsi-id=1",
			},
		},
		{
			name: "unique name collides",
			args: []qemu.Argument{
				qemu.UniqueArg("M", "q800"),
				qemu.UniqueArg("M", "mac99"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
		{
			name: "unique name collides with repeatable",
			args: []qemu.Argument{
				qemu.RepeatableArg("device", "scsi-hd,scsi-id=0"),
				qemu.UniqueArg("device", "scsi-hd,scsi-id=0"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
		{
			name: "repeatable value collides",
			args: []qemu.Argument{
				qemu.RepeatableArg("device", "scsi-hd,scsi-id=0"),
				qemu.RepeatableArg("device", "scsi-hd,scsi-id=0"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := qemu.BuildArgumentStrings(tt.args)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestArgumentString(t *testing.T) {
	assert.Equal(t, "-snapshot", qemu.UniqueArg("snapshot").String())
	assert.Equal(t, "-m 256", qemu.UniqueArg("m", "256").String())
	assert.Equal(t,
		"-drive file=os.img,format=raw",
		qemu.RepeatableArg("drive", "file=os.img", "format=raw").String(),
	)
}
