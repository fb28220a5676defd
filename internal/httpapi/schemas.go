// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package httpapi

import (
	"net/mail"
	"regexp"

	"github.com/taskforge/taskforge/internal/schema"
)

// Schema names, referenced by the handlers.
const (
	SchemaRegister       = "auth.register"
	SchemaLogin          = "auth.login"
	SchemaPasswordChange = "auth.password_change"
	SchemaTaskCreate     = "task.create"
)

// Username and date formats accepted by the API.
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NewSchemaRegistry builds the process-wide schema registry. It is
// called once at startup; the registry is immutable afterwards.
func NewSchemaRegistry() (*schema.Registry, error) {
	r := schema.NewRegistry()

	if err := r.RegisterCheck("email", checkEmail); err != nil {
		return nil, err
	}

	schemas := []*schema.Schema{
		{
			Name:    SchemaRegister,
			Version: 1,
			Strict:  true,
			Fields: []schema.Field{
				{Name: "username", Type: schema.TypeString, Required: true, MinLen: 3, MaxLen: 30, Pattern: usernamePattern, Sanitize: true},
				{Name: "email", Type: schema.TypeString, Required: true, MaxLen: 254, Sanitize: true, Checks: []string{"email"}},
				{Name: "password", Type: schema.TypeString, Required: true, MinLen: 8, MaxLen: 128},
				{Name: "confirm_password", Type: schema.TypeString, Required: true, MatchField: "password"},
			},
		},
		{
			Name:    SchemaLogin,
			Version: 1,
			Fields: []schema.Field{
				{Name: "username", Type: schema.TypeString, Required: true, MaxLen: 30},
				{Name: "password", Type: schema.TypeString, Required: true, MaxLen: 128},
			},
		},
		{
			Name:    SchemaPasswordChange,
			Version: 1,
			Strict:  true,
			Fields: []schema.Field{
				{Name: "current_password", Type: schema.TypeString, Required: true, MaxLen: 128},
				{Name: "new_password", Type: schema.TypeString, Required: true, MinLen: 8, MaxLen: 128},
				{Name: "confirm_password", Type: schema.TypeString, Required: true, MatchField: "new_password"},
			},
		},
		{
			Name:    SchemaTaskCreate,
			Version: 1,
			Fields: []schema.Field{
				{Name: "title", Type: schema.TypeString, Required: true, MinLen: 1, MaxLen: 200, Sanitize: true},
				{Name: "due", Type: schema.TypeString, Required: true, Pattern: datePattern},
				{Name: "priority", Type: schema.TypeString, Required: true, Enum: []string{"low", "medium", "high"}},
				// Empty description means "no description"; it is
				// dropped rather than stored as "".
				{Name: "description", Type: schema.TypeString, EmptyAsAbsent: true, MaxLen: 2000, Sanitize: true},
			},
		},
	}

	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// checkEmail validates address syntax with the stdlib parser.
func checkEmail(field string, value any) *schema.Violation {
	str, ok := value.(string)
	if !ok {
		return &schema.Violation{Field: field, Message: "must be a string"}
	}
	addr, err := mail.ParseAddress(str)
	if err != nil || addr.Address != str {
		return &schema.Violation{Field: field, Message: "must be a valid email address"}
	}
	return nil
}
