// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import (
	"bufio"
	"os"

	"github.com/samber/oops"
)

// PasswordPolicyConfig tunes registration password checks.
type PasswordPolicyConfig struct {
	MinLength int
	MaxLength int

	// CheckStrength enables the unsafe-password list lookup.
	CheckStrength bool
}

// Reason a password failed policy. PolicyOK means it passed.
type PolicyResult int

const (
	PolicyOK PolicyResult = iota
	PolicyTooShort
	PolicyTooLong
	PolicyUnsafe
)

// PasswordPolicy vets registration passwords against length bounds and
// an optional list of known-unsafe passwords.
type PasswordPolicy struct {
	cfg    PasswordPolicyConfig
	unsafe map[string]struct{}
}

// NewPasswordPolicy creates a policy with no unsafe list loaded.
func NewPasswordPolicy(cfg PasswordPolicyConfig) *PasswordPolicy {
	return &PasswordPolicy{cfg: cfg, unsafe: make(map[string]struct{})}
}

// LoadUnsafeList reads one password per line from path, replacing any
// previously loaded list. Blank lines are skipped.
func (p *PasswordPolicy) LoadUnsafeList(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return oops.Code("AUTH_UNSAFE_LIST_UNREADABLE").With("path", path).Wrap(err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	unsafe := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			unsafe[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return oops.Code("AUTH_UNSAFE_LIST_UNREADABLE").With("path", path).Wrap(err)
	}
	p.unsafe = unsafe
	return nil
}

// Check vets a candidate password. Length bounds of zero disable the
// corresponding check.
func (p *PasswordPolicy) Check(password string) PolicyResult {
	length := len(password)
	if p.cfg.MaxLength > 0 && length > p.cfg.MaxLength {
		return PolicyTooLong
	}
	if p.cfg.MinLength > 0 && length < p.cfg.MinLength {
		return PolicyTooShort
	}
	if p.cfg.CheckStrength {
		if _, bad := p.unsafe[password]; bad {
			return PolicyUnsafe
		}
	}
	return PolicyOK
}
