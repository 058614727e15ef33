// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI command entry point for macrun. It handles
// flag parsing, error handling, and output handling.
package cmd
