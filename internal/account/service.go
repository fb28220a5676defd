// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package account

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskforge/taskforge/internal/apierror"
	"github.com/taskforge/taskforge/internal/credential"
	"github.com/taskforge/taskforge/internal/token"
)

// dummyPasswordHash is verified against when a username doesn't exist,
// so lookup misses and password mismatches take the same time. It is
// not a real credential and matches no password.
//
//nolint:gosec // G101: intentionally fake hash for timing equalization, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// invalidCredentialsMessage is shared by the missing-user and
// wrong-password paths so responses never reveal which one happened.
const invalidCredentialsMessage = "invalid username or password"

// Service coordinates registration and login. Inputs are assumed to
// have passed schema validation at the boundary.
type Service struct {
	repo   Repository
	hasher credential.Hasher
	tokens *token.Service
}

// NewService creates an account Service.
func NewService(repo Repository, hasher credential.Hasher, tokens *token.Service) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Register creates an account. A duplicate username or email surfaces
// as the driver's uniqueness conflict for the normalizer to classify.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account := NewAccount(username, email, hash)
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login verifies credentials and issues a session token. The missing
// user and wrong password paths run the same verification work and
// return the same failure, preventing timing-based and message-based
// username enumeration.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Account, error) {
	account, lookupErr := s.repo.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = account.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Keep verifying against the dummy hash below.
	default:
		return "", nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "get account by username").
			Wrap(lookupErr)
	}

	valid := s.hasher.Verify(password, targetHash)

	if !exists || !valid {
		// An already-locked account stops accumulating failures; the
		// counter resumes only once the lockout window has passed.
		if exists && !account.IsLocked() {
			account.RecordFailure()
			_ = s.repo.Update(ctx, account) //nolint:errcheck // best effort failure accounting
		}
		return "", nil, apierror.Unauthorized(invalidCredentialsMessage)
	}

	// Lockout is checked after verification to keep timing uniform.
	if account.IsLocked() {
		return "", nil, apierror.Unauthorized("account is temporarily locked")
	}

	account.RecordSuccess()
	_ = s.repo.Update(ctx, account) //nolint:errcheck // best effort, login succeeds regardless

	tok, err := s.tokens.Issue(account.ID.String(), 0)
	if err != nil {
		return "", nil, oops.Code("ACCOUNT_LOGIN_FAILED").
			With("operation", "issue session token").
			Wrap(err)
	}
	return tok, account, nil
}

// Get retrieves an account by the subject ID of a verified token. A
// vanished subject renders as an authentication failure, not a 500: the
// token outlived the account.
func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apierror.Unauthorized("account no longer exists")
		}
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("account_id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// ChangePassword replaces the credential record after verifying the
// current password. The new hash is computed with fresh salt; the old
// record is overwritten, never kept.
func (s *Service) ChangePassword(ctx context.Context, id ulid.ULID, current, next string) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierror.Unauthorized("account no longer exists")
		}
		return oops.Code("ACCOUNT_PASSWORD_CHANGE_FAILED").
			With("operation", "get account").
			Wrap(err)
	}

	if !s.hasher.Verify(current, account.PasswordHash) {
		return apierror.Unauthorized("current password is incorrect")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return oops.Code("ACCOUNT_PASSWORD_CHANGE_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return oops.Code("ACCOUNT_PASSWORD_CHANGE_FAILED").
			With("operation", "update password").
			Wrap(err)
	}
	return nil
}
