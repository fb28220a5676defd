// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskForge Contributors

package schema

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag and attribute. Built once; bluemonday
// policies are immutable after construction and safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// StripMarkup returns the value with all markup tags and attributes
// removed and entities decoded back to plain text.
func StripMarkup(value string) string {
	return html.UnescapeString(strict.Sanitize(value))
}

// ContainsMarkup reports whether stripping markup would change the
// value. Entity escaping done by the sanitizer is undone on both sides
// so plain text containing characters like "&" does not false-positive.
func ContainsMarkup(value string) bool {
	return StripMarkup(value) != html.UnescapeString(value)
}
