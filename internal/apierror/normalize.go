// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package apierror

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/taskforge/taskforge/internal/schema"
	"github.com/taskforge/taskforge/internal/token"
)

// Response is the uniform wire shape for every rejected request.
type Response struct {
	Success bool `json:"success"`
	Error   Body `json:"error"`
}

// Body is the error payload inside a Response.
type Body struct {
	Message string        `json:"message"`
	Code    Code          `json:"code"`
	Details []FieldDetail `json:"details,omitempty"`
}

// Classify maps any error onto the closed taxonomy. It is pure and
// idempotent: classifying an already-classified error returns it
// unchanged, and two calls on the same error agree.
//
// The classification table, in fixed priority order:
//
//  1. schema validation failure        -> VALIDATION_ERROR (400, details)
//  2. malformed identifier (pre-tagged) -> INVALID_ID (400)
//  3. uniqueness conflict              -> DUPLICATE_KEY (409)
//  4. token malformed / bad signature  -> INVALID_TOKEN (401)
//  5. token expired                    -> TOKEN_EXPIRED (401)
//  6. anything else                    -> INTERNAL_ERROR (500)
func Classify(err error) *Error {
	// Already classified: idempotent passthrough.
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	// 1. Schema validation failures carry their full violation list.
	var violations schema.Violations
	if errors.As(err, &violations) {
		details := make([]FieldDetail, len(violations))
		for i, v := range violations {
			details[i] = FieldDetail{Field: v.Field, Message: v.Message}
		}
		return Validation(details)
	}

	// 2. Malformed identifiers arrive pre-tagged via InvalidID and are
	// caught by the passthrough above.

	// 3. Uniqueness conflicts from the persistence layer.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return Duplicate(fieldFromConstraint(pgErr))
	}

	// 4 and 5. Token verification failures.
	switch {
	case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrSignatureInvalid):
		return InvalidToken(err)
	case errors.Is(err, token.ErrExpired):
		return TokenExpired(err)
	}

	// 6. Unclassified.
	return Internal(err)
}

// fieldFromConstraint derives the conflicting field name from a unique
// violation. Constraint names follow the <table>_<column>_key
// convention; the column name reported by the server wins when set.
func fieldFromConstraint(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	name := pgErr.ConstraintName
	if name == "" {
		return "value"
	}
	if table := pgErr.TableName; table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	for _, suffix := range []string{"_key", "_idx", "_unique"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

// Normalizer renders classified failures as HTTP responses and logs
// each one exactly once. It is the single point of translation; it has
// no side effects beyond the log write.
type Normalizer struct {
	logger      *slog.Logger
	development bool
}

// NewNormalizer creates a Normalizer. In development mode the response
// body for internal errors includes the underlying message and the log
// record carries stack detail; in production both are withheld.
func NewNormalizer(logger *slog.Logger, development bool) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger, development: development}
}

// Normalize classifies err and returns the HTTP status and response
// body to render. method and path are logged for context, never echoed
// into the body.
func (n *Normalizer) Normalize(ctx context.Context, method, path string, err error) (int, Response) {
	e := Classify(err)
	status := e.Code.Status()

	message := e.Message
	if e.Code == CodeInternal && n.development && e.cause != nil {
		message = e.cause.Error()
	}

	n.log(ctx, method, path, status, e, err)

	return status, Response{
		Success: false,
		Error: Body{
			Message: message,
			Code:    e.Code,
			Details: e.Details,
		},
	}
}

// log writes the single log record for a classified failure. Internal
// errors log at error level, everything else at warn. Stack detail is
// attached only in development mode.
func (n *Normalizer) log(ctx context.Context, method, path string, status int, e *Error, raw error) {
	attrs := []any{
		"code", string(e.Code),
		"status", status,
		"method", method,
		"path", path,
		"error", raw.Error(),
	}

	if n.development {
		if oopsErr, ok := oops.AsOops(raw); ok {
			if trace := oopsErr.Stacktrace(); trace != "" {
				attrs = append(attrs, "stacktrace", trace)
			}
		}
	}

	if status >= 500 {
		n.logger.ErrorContext(ctx, "request rejected", attrs...)
		return
	}
	n.logger.WarnContext(ctx, "request rejected", attrs...)
}
