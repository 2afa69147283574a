// Package curl reverse-engineers a structured HTTP request description from a
// pasted curl command line. Parsing is best-effort and never fails: ambiguous
// input produces a partial descriptor the editor can still merge into a step.
package curl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// FormBody holds a key=value&key=value request body
type FormBody map[string]string

// RequestDescriptor is the structured request recovered from a curl command.
// It is ephemeral: the editor session merges it into a step and discards it.
type RequestDescriptor struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"params"`
	Body        interface{}       `json:"body,omitempty"` // decoded JSON value, FormBody, or nil
}

// IsEmpty reports whether nothing useful was recovered from the input
func (d *RequestDescriptor) IsEmpty() bool {
	return d.URL == "" && len(d.Headers) == 0 && len(d.QueryParams) == 0 && d.Body == nil
}

// Render produces a canonical curl command for the descriptor. Parsing the
// rendered command yields an equal descriptor (method, URL, headers, body).
func (d *RequestDescriptor) Render() string {
	var b strings.Builder
	b.WriteString("curl")

	method := d.Method
	if method == "" {
		method = "GET"
	}
	fmt.Fprintf(&b, " -X %s", method)

	target := d.URL
	if target != "" && !strings.Contains(target, "?") && len(d.QueryParams) > 0 {
		target += "?" + canonicalQuery(d.QueryParams)
	}
	if target != "" {
		fmt.Fprintf(&b, " %s", quote(target))
	}

	for _, k := range sortedKeys(d.Headers) {
		fmt.Fprintf(&b, " -H %s", quote(k+": "+d.Headers[k]))
	}

	switch body := d.Body.(type) {
	case nil:
	case FormBody:
		pairs := make([]string, 0, len(body))
		for _, k := range sortedKeys(body) {
			pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(body[k]))
		}
		fmt.Fprintf(&b, " --data-raw %s", quote(strings.Join(pairs, "&")))
	default:
		if encoded, err := json.Marshal(body); err == nil {
			fmt.Fprintf(&b, " --data-raw %s", quote(string(encoded)))
		}
	}

	return b.String()
}

// quote wraps a value in single quotes using shell-style '\'' escaping
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func canonicalQuery(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for _, k := range sortedKeys(params) {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return strings.Join(pairs, "&")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
