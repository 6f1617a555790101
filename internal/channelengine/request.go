package channelengine

import (
	"net/http"
	"net/url"
	"strings"
)

// Request describes one upstream call. The client adds the API key and
// resolves the path against the configured base URL.
type Request struct {
	Method   string
	Query    url.Values
	Body     interface{}
	segments []string
}

// NewRequest creates a request for the path built from segments. Each segment
// is escaped on its own, so values such as product numbers may contain any
// character.
func NewRequest(method string, segments ...string) *Request {
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method:   method,
		Query:    url.Values{},
		segments: segments,
	}
}

func (r *Request) AddQueryParameter(key, value string) *Request {
	r.Query.Add(key, value)
	return r
}

// SetJSONBody sets a body that is marshalled to JSON on every attempt.
func (r *Request) SetJSONBody(body interface{}) *Request {
	r.Body = body
	return r
}

// Path returns the escaped relative path. Dot segments are percent-encoded
// so they cannot climb out of the resource they name when resolved.
func (r *Request) Path() string {
	escaped := make([]string, 0, len(r.segments))
	for _, s := range r.segments {
		escaped = append(escaped, escapeSegment(s))
	}
	return strings.Join(escaped, "/")
}

func escapeSegment(s string) string {
	switch s {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(s)
}
