package headers

import (
	"fmt"
	"strings"
)

// Authorization holds the fields the Auth Engine needs out of a
// `Authorization: Digest ...` header. Only Digest is recognized; Basic
// credentials are out of scope for this core.
type Authorization struct {
	Username string
	Realm    string
	Nonce    string
	URI      string
	Response string
}

// ParseAuthorization decodes `Authorization: Digest k="v"(,k="v")*`. Keys
// are case-sensitive and unrecognized keys are ignored, per the Wire
// Parser contract.
func ParseAuthorization(value string) (Authorization, error) {
	const prefix = "Digest "
	if !strings.HasPrefix(value, prefix) {
		return Authorization{}, fmt.Errorf("unsupported authorization scheme")
	}
	body := value[len(prefix):]

	var a Authorization
	for _, kv := range splitDigestPairs(body) {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(kv[:eq])
		val := strings.Trim(kv[eq+1:], `"`)

		switch key {
		case "username":
			a.Username = val
		case "realm":
			a.Realm = val
		case "nonce":
			a.Nonce = val
		case "uri":
			a.URI = val
		case "response":
			a.Response = val
		}
	}

	return a, nil
}

// splitDigestPairs splits a comma-separated k=v list, respecting commas
// that fall inside double-quoted values (a URI value may itself contain
// one, in theory, though the core's own DESCRIBE/SETUP URLs never do).
func splitDigestPairs(s string) []string {
	var out []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}
