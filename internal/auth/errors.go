// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateName is returned when creating a record whose lowercased
// nickname is already registered. Callers should surface this as a
// "try again" prompt rather than a terminal failure.
var ErrDuplicateName = errors.New("nickname already registered")
