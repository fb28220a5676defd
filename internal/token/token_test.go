// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/token"
)

func newService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService([]byte("test-signing-secret"), time.Hour)
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := token.NewService(nil, time.Hour)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive TTL", func(t *testing.T) {
		_, err := token.NewService([]byte("secret"), 0)
		assert.Error(t, err)
	})
}

func TestIssue(t *testing.T) {
	svc := newService(t)

	t.Run("round trip returns subject", func(t *testing.T) {
		tok, err := svc.Issue("subject-1", 0)
		require.NoError(t, err)

		subject, err := svc.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "subject-1", subject)
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := svc.Issue("", 0)
		assert.Error(t, err)
	})
}

func TestVerify(t *testing.T) {
	svc := newService(t)

	t.Run("expired token", func(t *testing.T) {
		tok, err := svc.Issue("subject-1", -time.Minute)
		require.NoError(t, err)

		_, err = svc.Verify(tok)
		require.Error(t, err)
		assert.ErrorIs(t, err, token.ErrExpired)
	})

	t.Run("tampered token has invalid signature", func(t *testing.T) {
		tok, err := svc.Issue("subject-1", 0)
		require.NoError(t, err)

		// Flip one character in the signature segment.
		parts := strings.Split(tok, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, err = svc.Verify(tampered)
		require.Error(t, err)
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("wrong secret has invalid signature", func(t *testing.T) {
		other, err := token.NewService([]byte("another-secret"), time.Hour)
		require.NoError(t, err)

		tok, err := other.Issue("subject-1", 0)
		require.NoError(t, err)

		_, err = svc.Verify(tok)
		require.Error(t, err)
		assert.ErrorIs(t, err, token.ErrSignatureInvalid)
	})

	t.Run("malformed token", func(t *testing.T) {
		for _, raw := range []string{"", "not.a.jwt", "garbage"} {
			_, err := svc.Verify(raw)
			require.Error(t, err, "input %q", raw)
			assert.ErrorIs(t, err, token.ErrMalformed, "input %q", raw)
		}
	})
}
