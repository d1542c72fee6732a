package media

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// sign computes the request signature: parameters sorted by name, joined as
// k=v with '&', the API secret appended, SHA-1 hex encoded. Empty values are
// skipped, as the host does.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
