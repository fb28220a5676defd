// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

// Package httpapi is the HTTP gateway in front of the request
// admission core. Every request body passes schema validation, every
// protected route passes token verification, and every failure of
// either renders through the single error normalizer.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/account"
	"github.com/taskforge/taskforge/internal/apierror"
	"github.com/taskforge/taskforge/internal/observability"
	"github.com/taskforge/taskforge/internal/schema"
	"github.com/taskforge/taskforge/internal/token"
)

// RouterConfig carries the dependencies for NewRouter.
type RouterConfig struct {
	Accounts   *account.Service
	Schemas    *schema.Registry
	Tokens     *token.Service
	Normalizer *apierror.Normalizer

	// Metrics may be nil; counters are then skipped.
	Metrics *observability.Metrics
}

// NewRouter builds the API engine. gin's own logging and recovery are
// not installed: recovery must flow through the normalizer so panics
// get the same wire shape as every other failure.
func NewRouter(cfg RouterConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(
		NormalizeErrors(cfg.Normalizer, cfg.Metrics),
		Recover(),
	)

	h := NewHandler(cfg.Accounts, cfg.Schemas, cfg.Metrics)

	v1 := engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		protected := v1.Group("")
		protected.Use(RequireAuth(cfg.Tokens, cfg.Metrics))
		{
			protected.GET("/me", h.Me)
			protected.POST("/auth/password", h.ChangePassword)
			protected.POST("/tasks", h.CreateTask)
		}
	}

	return engine
}
