// Package envcheck reports whether the process environment carries the
// settings the service needs to reach its document store and sign tokens.
// It never fails the process; the report is surfaced by the diagnostics
// endpoint and logged once at startup.
package envcheck

import (
	"regexp"
	"strings"
)

// Names of the settings as operators know them.
const (
	DatabaseURIVar = "MONGODB_URI"
	JWTSecretVar   = "JWT_SECRET"
)

// MinSecretLength is the shortest signing secret accepted without a warning.
const MinSecretLength = 16

// WarningPrefix marks report entries that do not affect validity.
const WarningPrefix = "Warning: "

var uriPattern = regexp.MustCompile(`^mongodb(\+srv)?://.+`)

// Settings is the subset of configuration the validator inspects.
type Settings struct {
	DatabaseURI string
	JWTSecret   string
}

// Report is the result of a validation pass. Errors keeps the order in which
// problems were found.
type Report struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Warnings returns the entries that did not invalidate the report.
func (r Report) Warnings() []string {
	var out []string
	for _, e := range r.Errors {
		if strings.HasPrefix(e, WarningPrefix) {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks s and returns a fresh report. It has no side effects.
func Validate(s Settings) Report {
	r := Report{IsValid: true, Errors: []string{}}

	if s.DatabaseURI == "" {
		r.fail("Missing required environment variable: " + DatabaseURIVar)
	}
	if s.JWTSecret == "" {
		r.fail("Missing required environment variable: " + JWTSecretVar)
	}

	if s.DatabaseURI != "" && !uriPattern.MatchString(s.DatabaseURI) {
		r.fail(DatabaseURIVar + " has invalid format. Should start with mongodb:// or mongodb+srv://")
	}

	if s.JWTSecret != "" && len(s.JWTSecret) < MinSecretLength {
		r.Errors = append(r.Errors,
			WarningPrefix+JWTSecretVar+" should be at least 16 characters long for security")
	}

	return r
}

func (r *Report) fail(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}
