// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exitcode

import (
	"errors"
	"fmt"
)

// Error is an exit code that is considered an error.
//
// It carries the wait status of the emulator child process through the error
// chain so the launcher can terminate with the exact same code.
type Error int

func (e Error) Error() string {
	return fmt.Sprintf("non-zero exit code: %d", int(e))
}

func (Error) Is(other error) bool {
	_, ok := other.(Error)
	return ok
}

// Code returns the exit code as basic int type.
func (e Error) Code() int {
	return int(e)
}

// From returns an exit code based on the given error and if the error chain
// contains an [Error].
//
// If the error is nil, the exit code is 0. If the chain contains an [Error]
// the exit code is the return value of [Error.Code]. Otherwise the exit code
// is -1.
func From(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	var exitErr Error
	if errors.As(err, &exitErr) {
		return exitErr.Code(), true
	}

	return -1, false
}
