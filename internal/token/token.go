// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

// Package token issues and verifies signed, time-bounded session tokens.
//
// Tokens are stateless HS256 JWTs carrying only the subject identifier
// and their validity window. There is no server-side revocation list: a
// token stays valid until its expiry, and rotating the signing secret
// invalidates every outstanding token at once.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Verification failures, distinguished so callers can render different
// responses: an expired token prompts re-login, a malformed or forged
// one is treated as hostile.
var (
	// ErrMalformed means the string cannot be parsed as a token.
	ErrMalformed = errors.New("token is malformed")

	// ErrSignatureInvalid means the signature does not verify against
	// the current signing secret (tampering or secret rotation).
	ErrSignatureInvalid = errors.New("token signature is invalid")

	// ErrExpired means the embedded expiry is at or before now.
	ErrExpired = errors.New("token has expired")
)

// Service issues and verifies session tokens. The signing secret and
// default TTL are fixed at construction and never mutated, so a single
// Service is safe for unlimited concurrent use.
type Service struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewService creates a token Service. An empty secret or non-positive
// default TTL is a configuration error; callers should treat it as
// fatal at startup.
func NewService(secret []byte, defaultTTL time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secret must not be empty")
	}
	if defaultTTL <= 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("default TTL must be positive, got %s", defaultTTL)
	}
	return &Service{secret: secret, defaultTTL: defaultTTL}, nil
}

// Issue creates a signed token for the subject. A zero ttl uses the
// service default; negative values are honored as-is, which produces an
// already-expired token (useful in tests).
func (s *Service) Issue(subjectID string, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Errorf("subject ID must not be empty")
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").With("subject_id", subjectID).Wrap(err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns its subject ID.
// Failures are classified as ErrMalformed, ErrSignatureInvalid, or
// ErrExpired, reachable through errors.Is.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", classifyParseError(err)
	}

	if claims.Subject == "" {
		return "", oops.Code("TOKEN_MALFORMED").Wrap(ErrMalformed)
	}
	return claims.Subject, nil
}

// classifyParseError maps jwt library errors onto the closed set of
// verification failures. Anything unrecognized counts as malformed.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return oops.Code("TOKEN_SIGNATURE_INVALID").Wrap(ErrSignatureInvalid)
	case errors.Is(err, jwt.ErrTokenExpired):
		return oops.Code("TOKEN_EXPIRED").Wrap(ErrExpired)
	default:
		return oops.Code("TOKEN_MALFORMED").Wrap(ErrMalformed)
	}
}
