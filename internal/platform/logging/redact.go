package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// redactedFields are attribute keys whose values never reach the output.
// Header names are lowercase because that is how the middleware logs them.
var redactedFields = []string{
	"authorization",
	"cookie",
	"x-api-key",
	"password",
	"password_hash",
	"token",
	"secret",
	"jwt_secret",
	"api_secret",
	"signature",
	"database_uri",
	"mongodb_uri",
}

// redactedPrefixes catch variants such as "secret_key" or "api_key_v2".
var redactedPrefixes = []string{
	"secret_",
	"api_key",
	"api_secret",
}

// redactedValues match credentials that show up inside otherwise harmless
// strings such as driver errors or echoed headers.
var redactedValues = []*regexp.Regexp{
	// "Bearer <token>"
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	// header.payload.signature; ten characters per segment keeps version
	// strings like 1.2.3 out.
	regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`),
	// api_key=..., apikey: ...
	regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`),
	// userinfo of a connection string; the driver echoes the URI back.
	regexp.MustCompile(`mongodb(\+srv)?://[^/@\s:]+:[^@\s]+@`),
}

// redactor returns the masq ReplaceAttr hook installed by New.
func redactor() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(redactedFields)+len(redactedPrefixes)+len(redactedValues))
	for _, f := range redactedFields {
		opts = append(opts, masq.WithFieldName(f))
	}
	for _, p := range redactedPrefixes {
		opts = append(opts, masq.WithFieldPrefix(p))
	}
	for _, re := range redactedValues {
		opts = append(opts, masq.WithRegex(re))
	}
	return masq.New(opts...)
}
