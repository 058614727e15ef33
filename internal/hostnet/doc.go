// SPDX-FileCopyrightText: 2025 The macrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package hostnet provisions host network endpoints for guest sessions.
//
// The default backend creates a tap interface per session and attaches it to
// a bridge shared by all sessions, so guests can reach each other. The
// bridge is never removed, only the session's own interface is. An
// alternative userspace backend runs a vde_switch helper process instead
// and needs no privileges at all.
package hostnet
