package curl

import (
	"encoding/json"
	neturl "net/url"
	"regexp"
	"strings"
)

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// dataFlags carry a request body value
var dataFlags = map[string]bool{
	"--data-raw":       true,
	"--data":           true,
	"-d":               true,
	"--data-binary":    true,
	"--data-urlencode": true,
}

// structuralNoise lists flags that do not shape the request itself
var structuralNoise = map[string]bool{
	"--location": true, "--follow": true, "-L": true,
	"--max-redirs": true, "--connect-timeout": true, "--timeout": true,
	"--retry": true, "--retry-delay": true, "--retry-max-time": true,
	"--insecure": true, "-k": true,
	"--verbose": true, "-v": true,
	"--compressed": true, "-s": true, "--silent": true,
}

var bareURLPattern = regexp.MustCompile(`https?://[^\s'"]+`)

// smartCharReplacer straightens typographic quotes and dashes that word
// processors substitute into pasted commands
var smartCharReplacer = strings.NewReplacer(
	"–", "--", "—", "--", "―", "--",
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
)

// Parse recovers a RequestDescriptor from raw curl command text. It never
// fails: irrecoverable ambiguity yields a best-effort partial descriptor.
func Parse(text string) *RequestDescriptor {
	d := &RequestDescriptor{
		Method:      "GET",
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}

	norm := normalize(text)
	toks := tokenize(norm)

	var (
		explicitMethod string
		forceGet       bool
		hasDataFlag    bool
		urlFlag        string
		dataParts      []string
		loose          []token
	)

	for j := 0; j < len(toks); j++ {
		t := toks[j].text
		switch {
		case j == 0 && t == "curl":
		case t == "-X" || t == "--request":
			if j+1 < len(toks) {
				if m := strings.ToUpper(toks[j+1].text); validMethods[m] {
					explicitMethod = m
				}
				j++
			}
		case t == "-G" || t == "--get":
			forceGet = true
		case t == "-H" || t == "--header":
			if j+1 < len(toks) {
				applyHeader(d.Headers, toks[j+1].text)
				j++
			}
		case t == "--url":
			if j+1 < len(toks) {
				urlFlag = toks[j+1].text
				j++
			}
		case dataFlags[t]:
			hasDataFlag = true
			if j+1 < len(toks) {
				dataParts = append(dataParts, toks[j+1].text)
				j++
			}
		case structuralNoise[t]:
		case strings.HasPrefix(t, "-") && len(t) > 1:
			// unknown flag; its value (if any) stays in the loose pool where
			// it is harmless unless it looks like a URL
		default:
			loose = append(loose, toks[j])
		}
	}

	d.URL = pickURL(urlFlag, loose, norm, d.Headers)

	switch {
	case explicitMethod != "":
		d.Method = explicitMethod
	case forceGet:
		d.Method = "GET"
	case hasDataFlag:
		d.Method = "POST"
	}

	if d.URL != "" {
		mergeURLQuery(d.QueryParams, d.URL)
	}

	bodyStr := strings.TrimSpace(strings.Join(dataParts, "&"))
	if bodyStr != "" {
		if strings.HasPrefix(bodyStr, "{") || strings.HasPrefix(bodyStr, "[") {
			var v interface{}
			if err := json.Unmarshal([]byte(bodyStr), &v); err == nil {
				d.Body = v
			}
		} else {
			form := parseFormBody(bodyStr)
			if forceGet || d.Method == "GET" {
				// curl -G semantics: data flags become query-string data
				for k, v := range form {
					if _, exists := d.QueryParams[k]; !exists {
						d.QueryParams[k] = v
					}
				}
			} else if len(form) > 0 {
				d.Body = form
			}
		}
	}

	return d
}

// normalize merges line continuations, collapses line breaks to spaces and
// straightens smart quote characters
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\\\r\n", " ")
	text = strings.ReplaceAll(text, "\\\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return smartCharReplacer.Replace(text)
}

// pickURL resolves the request URL in priority order: the --url flag value, a
// quoted URL or path token, the longest bare http(s) occurrence outside header
// values, and finally a bare root-relative path token.
func pickURL(urlFlag string, loose []token, norm string, headers map[string]string) string {
	if urlFlag != "" {
		return urlFlag
	}

	for _, t := range loose {
		if t.quoted && (isHTTPURL(t.text) || strings.HasPrefix(t.text, "/")) {
			return t.text
		}
	}

	// Bare URLs anywhere in the text, excluding ones embedded in header
	// values such as User-Agent or Referer
	best := ""
	for _, candidate := range bareURLPattern.FindAllString(norm, -1) {
		embedded := false
		for _, hv := range headers {
			if strings.Contains(hv, candidate) {
				embedded = true
				break
			}
		}
		if !embedded && len(candidate) > len(best) {
			best = candidate
		}
	}
	if best != "" {
		return best
	}

	for _, t := range loose {
		if strings.HasPrefix(t.text, "/") {
			return t.text
		}
	}
	return ""
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// applyHeader splits a header flag value on the first colon. Later duplicate
// keys overwrite earlier ones.
func applyHeader(headers map[string]string, value string) {
	idx := strings.Index(value, ":")
	if idx < 0 {
		return
	}
	key := strings.TrimSpace(value[:idx])
	if key == "" {
		return
	}
	headers[key] = strings.TrimSpace(value[idx+1:])
}

// mergeURLQuery extracts the URL's query string into the params map
func mergeURLQuery(params map[string]string, rawURL string) {
	if strings.HasPrefix(rawURL, "/") {
		rawURL = "http://local" + rawURL
	}
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return
	}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
}

// parseFormBody decodes key=value&key=value data; first occurrence of a key wins
func parseFormBody(s string) FormBody {
	form := make(FormBody)
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if decoded, err := neturl.QueryUnescape(strings.ReplaceAll(key, "+", " ")); err == nil {
			key = decoded
		}
		if decoded, err := neturl.QueryUnescape(strings.ReplaceAll(value, "+", " ")); err == nil {
			value = decoded
		}
		if key == "" {
			continue
		}
		if _, exists := form[key]; !exists {
			form[key] = value
		}
	}
	return form
}
