// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package httpapi

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/taskforge/taskforge/internal/apierror"
	"github.com/taskforge/taskforge/internal/observability"
	"github.com/taskforge/taskforge/internal/token"
)

// subjectKey is the gin context key holding the verified subject ID.
const subjectKey = "auth.subject"

// NormalizeErrors is the outermost middleware and the single place an
// error response is written. Handlers report failures with c.Error and
// abort; whatever reaches here is classified, logged, and rendered in
// the uniform wire shape.
func NormalizeErrors(normalizer *apierror.Normalizer, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := normalizer.Normalize(c.Request.Context(), c.Request.Method, c.Request.URL.Path, err)
		if metrics != nil {
			metrics.ResponsesByCode.WithLabelValues(string(body.Error.Code)).Inc()
		}
		c.JSON(status, body)
	}
}

// Recover converts a handler panic into an unclassified failure for
// the normalizer instead of letting gin write its own 500.
func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				_ = c.Error(apierror.Internal(oops.Errorf("panic: %v", r))) //nolint:errcheck // collected by NormalizeErrors
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RequireAuth verifies the bearer token on protected routes and stores
// the subject ID in the request context. Verification failures abort
// the request before the handler runs.
func RequireAuth(tokens *token.Service, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			recordVerdict(metrics, err)
			_ = c.Error(err) //nolint:errcheck // collected by NormalizeErrors
			c.Abort()
			return
		}

		subject, err := tokens.Verify(raw)
		if err != nil {
			recordVerdict(metrics, err)
			_ = c.Error(err) //nolint:errcheck // collected by NormalizeErrors
			c.Abort()
			return
		}

		if metrics != nil {
			metrics.TokenVerifications.WithLabelValues(observability.VerdictValid).Inc()
		}
		c.Set(subjectKey, subject)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header. A
// missing or non-bearer header is a malformed-token failure.
func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) || len(header) == len(prefix) {
		return "", oops.Code("TOKEN_MALFORMED").Wrap(token.ErrMalformed)
	}
	return header[len(prefix):], nil
}

// recordVerdict increments the token verification counter for a failed
// check.
func recordVerdict(metrics *observability.Metrics, err error) {
	if metrics == nil {
		return
	}
	verdict := observability.VerdictMalformed
	switch {
	case errors.Is(err, token.ErrSignatureInvalid):
		verdict = observability.VerdictBadSig
	case errors.Is(err, token.ErrExpired):
		verdict = observability.VerdictExpired
	}
	metrics.TokenVerifications.WithLabelValues(verdict).Inc()
}

// Subject returns the verified subject ID set by RequireAuth.
func Subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}
