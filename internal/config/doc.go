// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads and validates launch configuration files.
//
// A configuration file is flat KEY=value text. The set of recognized keys
// depends on the target machine named by the MACHINE key. All validation
// happens at load time, before anything touches the host. Unknown keys are
// no error, they are preserved and passed through for consumers with their
// own key vocabulary.
package config
