// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrun/macrun/internal/exitcode"
)

func TestCommandRun(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		cmd := &Command{name: "sh", args: []string{"-c", "exit 0"}}

		err := cmd.Run(t.Context(), nil, io.Discard, io.Discard)
		require.NoError(t, err)
	})

	t.Run("exit code forwarded", func(t *testing.T) {
		cmd := &Command{name: "sh", args: []string{"-c", "exit 7"}}

		err := cmd.Run(t.Context(), nil, io.Discard, io.Discard)

		code, ok := exitcode.From(err)
		require.True(t, ok)
		assert.Equal(t, 7, code)
	})

	t.Run("start failure", func(t *testing.T) {
		cmd := &Command{name: "/nonexistent/qemu-system-m68k"}

		err := cmd.Run(t.Context(), nil, io.Discard, io.Discard)
		require.Error(t, err)

		_, ok := exitcode.From(err)
		assert.False(t, ok)
	})

	t.Run("canceled context terminates", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
		defer cancel()

		cmd := &Command{name: "sleep", args: []string{"30"}}

		err := cmd.Run(ctx, nil, io.Discard, io.Discard)
		require.Error(t, err)
	})
}
