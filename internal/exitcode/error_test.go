// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macrun/macrun/internal/exitcode"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", exitcode.Error(3))

	assert.ErrorIs(t, err, exitcode.Error(7), "codes are not compared")
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedOK   bool
	}{
		{
			name:         "nil",
			err:          nil,
			expectedCode: 0,
			expectedOK:   false,
		},
		{
			name:         "plain exit code",
			err:          exitcode.Error(42),
			expectedCode: 42,
			expectedOK:   true,
		},
		{
			name:         "wrapped exit code",
			err:          fmt.Errorf("emulator: %w", exitcode.Error(1)),
			expectedCode: 1,
			expectedOK:   true,
		},
		{
			name:         "unrelated error",
			err:          errors.New("boom"),
			expectedCode: -1,
			expectedOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := exitcode.From(tt.err)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectedOK, ok)
		})
	}
}
