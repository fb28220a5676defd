// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/account"
)

func testAccount() *account.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &account.Account{
		ID:           ulid.Make(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func accountRows(a *account.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "password_hash",
		"failed_attempts", "locked_until", "created_at", "updated_at",
	}).AddRow(
		a.ID.String(), a.Username, a.Email, a.PasswordHash,
		a.FailedAttempts, a.LockedUntil, a.CreatedAt, a.UpdatedAt,
	)
}

func TestAccountRepository_Create(t *testing.T) {
	t.Run("inserts account", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		a := testAccount()
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(a.ID.String(), a.Username, a.Email, a.PasswordHash,
				a.FailedAttempts, a.LockedUntil, a.CreatedAt, a.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewAccountRepository(mock)
		require.NoError(t, repo.Create(context.Background(), a))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation stays reachable in the chain", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		pgErr := &pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			TableName:      "accounts",
			ConstraintName: "accounts_username_key",
		}
		a := testAccount()
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(a.ID.String(), a.Username, a.Email, a.PasswordHash,
				a.FailedAttempts, a.LockedUntil, a.CreatedAt, a.UpdatedAt).
			WillReturnError(pgErr)

		repo := NewAccountRepository(mock)
		err = repo.Create(context.Background(), a)
		require.Error(t, err)

		var got *pgconn.PgError
		require.ErrorAs(t, err, &got)
		assert.Equal(t, pgerrcode.UniqueViolation, got.Code)
		assert.Equal(t, "accounts_username_key", got.ConstraintName)
	})
}

func TestAccountRepository_GetByUsername(t *testing.T) {
	t.Run("returns account", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		a := testAccount()
		mock.ExpectQuery(`SELECT id, username, email, password_hash`).
			WithArgs(a.Username).
			WillReturnRows(accountRows(a))

		repo := NewAccountRepository(mock)
		got, err := repo.GetByUsername(context.Background(), a.Username)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, a.PasswordHash, got.PasswordHash)
	})

	t.Run("missing account maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, username, email, password_hash`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		repo := NewAccountRepository(mock)
		_, err = repo.GetByUsername(context.Background(), "ghost")
		require.Error(t, err)
		assert.ErrorIs(t, err, account.ErrNotFound)
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := testAccount()
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs(a.ID.String()).
		WillReturnRows(accountRows(a))

	repo := NewAccountRepository(mock)
	got, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Username, got.Username)
}

func TestAccountRepository_Update(t *testing.T) {
	t.Run("updates account", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		a := testAccount()
		a.FailedAttempts = 3
		mock.ExpectExec(`UPDATE accounts`).
			WithArgs(a.ID.String(), a.Username, a.Email, a.PasswordHash,
				a.FailedAttempts, a.LockedUntil, a.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewAccountRepository(mock)
		require.NoError(t, repo.Update(context.Background(), a))
	})

	t.Run("zero rows affected maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		a := testAccount()
		mock.ExpectExec(`UPDATE accounts`).
			WithArgs(a.ID.String(), a.Username, a.Email, a.PasswordHash,
				a.FailedAttempts, a.LockedUntil, a.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewAccountRepository(mock)
		err = repo.Update(context.Background(), a)
		require.Error(t, err)
		assert.ErrorIs(t, err, account.ErrNotFound)
	})
}

func TestAccountRepository_UpdatePassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := ulid.Make()
	mock.ExpectExec(`UPDATE accounts`).
		WithArgs(id.String(), "newhash", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewAccountRepository(mock)
	require.NoError(t, repo.UpdatePassword(context.Background(), id, "newhash"))
}
