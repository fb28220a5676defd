// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/taskforge/taskforge/internal/account"
	"github.com/taskforge/taskforge/internal/apierror"
	"github.com/taskforge/taskforge/internal/observability"
	"github.com/taskforge/taskforge/internal/schema"
)

// Handler carries the admission dependencies for all routes.
type Handler struct {
	accounts *account.Service
	schemas  *schema.Registry
	metrics  *observability.Metrics
}

// NewHandler creates a Handler. metrics may be nil in tests.
func NewHandler(accounts *account.Service, schemas *schema.Registry, metrics *observability.Metrics) *Handler {
	return &Handler{accounts: accounts, schemas: schemas, metrics: metrics}
}

// accountView is the client-facing account shape. The credential
// record never appears here.
type accountView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOf(a *account.Account) accountView {
	return accountView{
		ID:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

// admit runs the named schema over the request body and returns the
// sanitized record, or reports the failure and aborts.
func (h *Handler) admit(c *gin.Context, schemaName string) (map[string]any, bool) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.reject(c, schemaName, schema.Violations{{Field: "body", Message: "must be a JSON object"}})
		return nil, false
	}

	input, err := h.schemas.Validate(schemaName, raw)
	if err != nil {
		h.reject(c, schemaName, err)
		return nil, false
	}
	return input, true
}

func (h *Handler) reject(c *gin.Context, schemaName string, err error) {
	if h.metrics != nil {
		h.metrics.ValidationFailures.WithLabelValues(schemaName).Inc()
	}
	_ = c.Error(err) //nolint:errcheck // collected by NormalizeErrors
	c.Abort()
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err) //nolint:errcheck // collected by NormalizeErrors
	c.Abort()
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(c *gin.Context) {
	input, ok := h.admit(c, SchemaRegister)
	if !ok {
		return
	}

	created, err := h.accounts.Register(c.Request.Context(),
		input["username"].(string),
		input["email"].(string),
		input["password"].(string),
	)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": viewOf(created)})
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	input, ok := h.admit(c, SchemaLogin)
	if !ok {
		return
	}

	tok, logged, err := h.accounts.Login(c.Request.Context(),
		input["username"].(string),
		input["password"].(string),
	)
	if err != nil {
		if h.metrics != nil {
			h.metrics.Logins.WithLabelValues(observability.OutcomeFailure).Inc()
		}
		h.fail(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Logins.WithLabelValues(observability.OutcomeSuccess).Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token":   tok,
			"account": viewOf(logged),
		},
	})
}

// Me handles GET /api/v1/me.
func (h *Handler) Me(c *gin.Context) {
	id, err := ulid.Parse(Subject(c))
	if err != nil {
		h.fail(c, apierror.InvalidID("account id"))
		return
	}

	a, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": viewOf(a)})
}

// ChangePassword handles POST /api/v1/auth/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	input, ok := h.admit(c, SchemaPasswordChange)
	if !ok {
		return
	}

	id, err := ulid.Parse(Subject(c))
	if err != nil {
		h.fail(c, apierror.InvalidID("account id"))
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), id,
		input["current_password"].(string),
		input["new_password"].(string),
	); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateTask handles POST /api/v1/tasks. It demonstrates admission of
// a protected, validated operation: the sanitized record is echoed
// back; task persistence lives outside this service.
func (h *Handler) CreateTask(c *gin.Context) {
	input, ok := h.admit(c, SchemaTaskCreate)
	if !ok {
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"task":     input,
			"owner_id": Subject(c),
		},
	})
}
