// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package hostnet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrun/macrun/internal/hostnet"
)

func TestBackendUnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    hostnet.Backend
		expectedErr error
	}{
		{
			name:     "tap",
			input:    "tap",
			expected: hostnet.BackendTap,
		},
		{
			name:     "vde",
			input:    "vde",
			expected: hostnet.BackendVDE,
		},
		{
			name:        "unknown",
			input:       "slirp",
			expectedErr: hostnet.ErrBackendInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var backend hostnet.Backend

			err := backend.UnmarshalText([]byte(tt.input))
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, backend)
		})
	}
}
