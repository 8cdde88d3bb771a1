// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"context"

	"github.com/limbogate/limbogate/internal/limbo"
)

// DecisionKind tags what the engine should do with a connection before
// any auth dialogue starts.
type DecisionKind int

const (
	// DecisionAdmit runs the normal auth dialogue.
	DecisionAdmit DecisionKind = iota

	// DecisionBypass skips the dialogue and lets the connection through.
	DecisionBypass

	// DecisionDeny disconnects the connection with a reason.
	DecisionDeny

	// DecisionDefer hands the connection to the hook that returned it;
	// the engine does nothing further and the hook must resume or drop
	// the connection itself.
	DecisionDefer
)

// Decision is the pre-auth verdict for one connection.
type Decision struct {
	Kind   DecisionKind
	Reason string // set for DecisionDeny
}

// Admit returns the verdict that runs the normal dialogue.
func Admit() Decision { return Decision{Kind: DecisionAdmit} }

// Bypass returns the verdict that skips the dialogue.
func Bypass() Decision { return Decision{Kind: DecisionBypass} }

// Deny returns the verdict that disconnects with reason.
func Deny(reason string) Decision { return Decision{Kind: DecisionDeny, Reason: reason} }

// Defer returns the verdict that suspends engine handling.
func Defer() Decision { return Decision{Kind: DecisionDefer} }

// PreAuthHook inspects a connection before its auth session starts.
// rec is the matched record or nil for unregistered names; prior is
// the verdict so far (the engine's own, then each earlier hook's).
// Hooks run in registration order and the last verdict wins.
type PreAuthHook func(ctx context.Context, conn limbo.Conn, rec *PlayerRecord, prior Decision) Decision
