// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

// Package schema provides a declarative, sanitizing request validator.
//
// Schemas describe a request shape field by field: type, requiredness,
// enumerated values, length and format constraints, named checks from a
// registry, and a sanitize flag that rejects any markup in the value.
// Validation collects every violation instead of stopping at the first,
// so callers can render all form errors at once. Schemas are registered
// during startup and never mutated afterwards, which makes a Registry
// safe for unlimited concurrent readers without locking.
package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// Type is the declared type of a schema field.
type Type int

// Field types. JSON numbers arrive as float64 and are coerced; numeric
// and boolean strings are coerced as well, matching what HTML forms
// submit.
const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeBool
)

// String returns the human-readable name used in violation messages.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// withArticle returns the type name with its indefinite article, for
// violation messages.
func (t Type) withArticle() string {
	if t == TypeInt {
		return "an integer"
	}
	return "a " + t.String()
}

// Violation is a single failed rule on a single field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is the complete list of failed rules for one input record,
// ordered by schema field declaration. It implements error so it can
// flow through the normal error path to the response normalizer.
type Violations []Violation

// Error implements the error interface.
func (v Violations) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, len(v))
	for i, violation := range v {
		fields[i] = violation.Field
	}
	return fmt.Sprintf("validation failed on %s", strings.Join(fields, ", "))
}

// CheckFunc is a named, pure validation rule. It returns nil when the
// value passes, or a violation carrying the field name and message.
// Registered checks must not mutate the value or keep state.
type CheckFunc func(field string, value any) *Violation

// Field is one rule set in a schema, evaluated independently of its
// siblings.
type Field struct {
	// Name is the input key, unique within the schema.
	Name string

	// Type controls coercion. Violating the type skips the remaining
	// rules for this field.
	Type Type

	// Required rejects absent values. JSON null counts as absent.
	Required bool

	// Default fills the output when the field is absent. Defaults are
	// never applied to present values.
	Default any

	// EmptyAsAbsent treats an empty string as if the field were not
	// submitted at all. Each field picks its own policy explicitly.
	EmptyAsAbsent bool

	// Enum restricts a string field to a fixed value set.
	Enum []string

	// MinLen and MaxLen bound string length in bytes. Zero MaxLen means
	// unbounded.
	MinLen int
	MaxLen int

	// Pattern must match the whole string value when set.
	Pattern *regexp.Regexp

	// Sanitize rejects the value when markup stripping would change it.
	// Detected markup is a violation, never an auto-clean.
	Sanitize bool

	// MatchField names a sibling that must hold an equal value. It is
	// evaluated only after both fields pass their per-field rules.
	MatchField string

	// Checks are registry rule names run against the coerced value.
	Checks []string
}

// Schema is a named, versioned description of a valid request shape.
type Schema struct {
	Name    string
	Version int
	Fields  []Field

	// Strict rejects unknown input keys. The default is to ignore them
	// for forward compatibility.
	Strict bool
}

// Registry holds schemas and named checks. Register everything during
// startup; Validate is the only method meant for request time.
type Registry struct {
	schemas map[string]*Schema
	checks  map[string]CheckFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named rule usable from any schema's Checks list.
func (r *Registry) RegisterCheck(name string, fn CheckFunc) error {
	if name == "" || fn == nil {
		return oops.Code("SCHEMA_CHECK_INVALID").Errorf("check name and function must be set")
	}
	if _, exists := r.checks[name]; exists {
		return oops.Code("SCHEMA_CHECK_DUPLICATE").Errorf("check %q is already registered", name)
	}
	r.checks[name] = fn
	return nil
}

// Register adds a schema after verifying it is internally consistent:
// unique field names, resolvable MatchField references, and checks that
// exist in the registry.
func (r *Registry) Register(s *Schema) error {
	if s == nil || s.Name == "" {
		return oops.Code("SCHEMA_INVALID").Errorf("schema must have a name")
	}
	if _, exists := r.schemas[s.Name]; exists {
		return oops.Code("SCHEMA_DUPLICATE").Errorf("schema %q is already registered", s.Name)
	}
	if len(s.Fields) == 0 {
		return oops.Code("SCHEMA_INVALID").With("schema", s.Name).Errorf("schema %q has no fields", s.Name)
	}

	names := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return oops.Code("SCHEMA_INVALID").With("schema", s.Name).Errorf("schema %q has an unnamed field", s.Name)
		}
		if names[f.Name] {
			return oops.Code("SCHEMA_INVALID").With("schema", s.Name).Errorf("schema %q declares field %q twice", s.Name, f.Name)
		}
		names[f.Name] = true
	}
	for _, f := range s.Fields {
		if f.MatchField != "" && !names[f.MatchField] {
			return oops.Code("SCHEMA_INVALID").With("schema", s.Name).
				Errorf("field %q references unknown sibling %q", f.Name, f.MatchField)
		}
		for _, check := range f.Checks {
			if _, ok := r.checks[check]; !ok {
				return oops.Code("SCHEMA_INVALID").With("schema", s.Name).
					Errorf("field %q uses unregistered check %q", f.Name, check)
			}
		}
	}

	r.schemas[s.Name] = s
	return nil
}

// MustRegister is Register that panics, for startup wiring.
func (r *Registry) MustRegister(s *Schema) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Validate runs the named schema against an input record and returns
// the sanitized, type-coerced output. On failure it returns Violations
// listing every broken rule in field declaration order; unknown-field
// violations of strict schemas follow, sorted by key for determinism.
func (r *Registry) Validate(schemaName string, input map[string]any) (map[string]any, error) {
	s, ok := r.schemas[schemaName]
	if !ok {
		return nil, oops.Code("SCHEMA_UNKNOWN").Errorf("schema %q is not registered", schemaName)
	}

	out := make(map[string]any, len(s.Fields))
	var violations Violations
	clean := make(map[string]bool, len(s.Fields))

	for _, f := range s.Fields {
		value, present := presence(f, input)
		if !present {
			if f.Default != nil {
				out[f.Name] = f.Default
				clean[f.Name] = true
				continue
			}
			if f.Required {
				violations = append(violations, Violation{Field: f.Name, Message: "is required"})
			}
			continue
		}

		coerced, ok := coerce(f.Type, value)
		if !ok {
			violations = append(violations, Violation{Field: f.Name, Message: "must be " + f.Type.withArticle()})
			continue
		}

		fieldViolations := r.checkField(f, coerced)
		if len(fieldViolations) > 0 {
			violations = append(violations, fieldViolations...)
			continue
		}

		out[f.Name] = coerced
		clean[f.Name] = true
	}

	// Cross-field rules run only once both sides passed their own rules.
	for _, f := range s.Fields {
		if f.MatchField == "" || !clean[f.Name] || !clean[f.MatchField] {
			continue
		}
		if out[f.Name] != out[f.MatchField] {
			violations = append(violations, Violation{Field: f.Name, Message: "must match " + f.MatchField})
		}
	}

	if s.Strict {
		known := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			known[f.Name] = true
		}
		var unknown []string
		for key := range input {
			if !known[key] {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			violations = append(violations, Violation{Field: key, Message: "is not allowed"})
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return out, nil
}

// presence decides whether a field counts as submitted. JSON null is
// absent; an empty string is absent only when the field opts in.
func presence(f Field, input map[string]any) (any, bool) {
	value, present := input[f.Name]
	if !present || value == nil {
		return nil, false
	}
	if f.EmptyAsAbsent {
		if str, ok := value.(string); ok && str == "" {
			return nil, false
		}
	}
	return value, true
}

// checkField runs every per-field rule against a coerced value and
// collects all violations rather than stopping at the first.
func (r *Registry) checkField(f Field, value any) Violations {
	var violations Violations

	if str, ok := value.(string); ok {
		if f.MinLen > 0 && len(str) < f.MinLen {
			violations = append(violations, Violation{
				Field:   f.Name,
				Message: fmt.Sprintf("must be at least %d characters", f.MinLen),
			})
		}
		if f.MaxLen > 0 && len(str) > f.MaxLen {
			violations = append(violations, Violation{
				Field:   f.Name,
				Message: fmt.Sprintf("must be at most %d characters", f.MaxLen),
			})
		}
		if len(f.Enum) > 0 && !contains(f.Enum, str) {
			violations = append(violations, Violation{
				Field:   f.Name,
				Message: "must be one of: " + strings.Join(f.Enum, ", "),
			})
		}
		if f.Pattern != nil && !f.Pattern.MatchString(str) {
			violations = append(violations, Violation{Field: f.Name, Message: "has an invalid format"})
		}
		if f.Sanitize && ContainsMarkup(str) {
			violations = append(violations, Violation{Field: f.Name, Message: "must not include markup"})
		}
	}

	for _, check := range f.Checks {
		if v := r.checks[check](f.Name, value); v != nil {
			violations = append(violations, *v)
		}
	}

	return violations
}

// coerce converts a decoded JSON value to the field's declared type.
func coerce(t Type, value any) (any, bool) {
	switch t {
	case TypeString:
		str, ok := value.(string)
		return str, ok
	case TypeInt:
		switch v := value.(type) {
		case float64:
			if v != float64(int(v)) {
				return nil, false
			}
			return int(v), true
		case int:
			return v, true
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, false
			}
			return n, true
		}
		return nil, false
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, false
			}
			return n, true
		}
		return nil, false
	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, false
			}
			return b, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
