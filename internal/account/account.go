// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

// Package account provides the account domain: credential records,
// registration, and login.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// Account is a registered identity. PasswordHash holds the one-way
// credential record; the plaintext is never stored or logged.
type Account struct {
	ID             ulid.ULID
	Username       string
	Email          string
	PasswordHash   string
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount creates an Account with a fresh ID and timestamps. The
// password hash must already be computed; this constructor never sees
// plaintext.
func NewAccount(username, email, passwordHash string) *Account {
	now := time.Now()
	return &Account{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsLocked returns true if the account is currently locked out.
func (a *Account) IsLocked() bool {
	return isLockedOut(a.LockedUntil)
}

// RecordFailure increments the failure counter and sets lockout if the
// threshold is reached.
func (a *Account) RecordFailure() {
	a.FailedAttempts++
	a.LockedUntil = computeLockoutTime(a.FailedAttempts)
	a.UpdatedAt = time.Now()
}

// RecordSuccess resets the failure counter and lockout.
func (a *Account) RecordSuccess() {
	a.FailedAttempts = 0
	a.LockedUntil = nil
	a.UpdatedAt = time.Now()
}

// Repository manages account persistence. A uniqueness conflict on
// Create surfaces the driver's unique-violation error unchanged in the
// chain so the response normalizer can classify it.
type Repository interface {
	// Create stores a new account.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByUsername retrieves an account by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Update updates an existing account.
	Update(ctx context.Context, account *Account) error

	// UpdatePassword updates only the credential record for an account.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}
