// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package macrun

import "errors"

// ErrNotRegularFile is returned if a configured image path points at
// something other than a regular file.
var ErrNotRegularFile = errors.New("not a regular file")
