package session

import (
	"encoding/base64"
	"regexp"
	"sort"
	"strings"

	"sequence-engine/internal/sequence"
)

var apiKeyHeaderPattern = regexp.MustCompile(`(?i)^(x-)?api[-_ ]?key$`)

// InferAuth inspects parsed request headers for a recognizable
// authentication scheme. It returns the inferred auth type, its typed
// configuration and the name of the header it was derived from, or AuthNone
// when nothing is recognized.
func InferAuth(headers map[string]string) (sequence.AuthType, sequence.AuthConfig, string) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.EqualFold(name, "Authorization") {
			continue
		}
		value := strings.TrimSpace(headers[name])

		if token, ok := cutPrefixFold(value, "Bearer "); ok {
			return sequence.AuthBearer, sequence.BearerAuth{Token: strings.TrimSpace(token)}, name
		}

		if encoded, ok := cutPrefixFold(value, "Basic "); ok {
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
			if err != nil {
				continue
			}
			username, password, found := strings.Cut(string(decoded), ":")
			if !found {
				continue
			}
			return sequence.AuthBasic, sequence.BasicAuth{Username: username, Password: password}, name
		}
	}

	for _, name := range names {
		if apiKeyHeaderPattern.MatchString(name) {
			return sequence.AuthAPIKey, sequence.APIKeyAuth{
				KeyName:     name,
				KeyValue:    headers[name],
				KeyLocation: "header",
			}, name
		}
	}

	return sequence.AuthNone, nil, ""
}

// cutPrefixFold is strings.CutPrefix with case-insensitive prefix matching
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}
