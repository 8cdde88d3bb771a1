// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import "github.com/pquerna/otp/totp"

// TotpVerifier validates time-based one-time codes against an enrolled
// secret. The implementation uses the standard 30-second step and
// default digit count.
type TotpVerifier interface {
	Validate(code, secret string) bool
}

// totpVerifier is the production TotpVerifier.
type totpVerifier struct{}

// NewTotpVerifier returns the standard time-based code verifier.
func NewTotpVerifier() TotpVerifier {
	return totpVerifier{}
}

func (totpVerifier) Validate(code, secret string) bool {
	return totp.Validate(code, secret)
}
