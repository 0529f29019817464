package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized matches 401/403 responses and locally expired credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTransport wraps failures to reach the backend at all.
	ErrTransport = errors.New("backend unreachable")
)

// Error is a non-2xx backend response. Body is kept verbatim.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrUnauthorized) match auth rejections.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// Message extracts the human-readable part of the backend body. The backend
// uses {"error": ...}, {"detail": ...} or {"mensaje": ...}; field validation
// errors come as {"field": ["msg", ...]}. Unknown shapes yield the raw body.
func (e *Error) Message() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &obj); err != nil {
		return body
	}
	for _, k := range []string{"error", "detail", "mensaje", "non_field_errors"} {
		if raw, ok := obj[k]; ok {
			if s := flatten(raw); s != "" {
				return s
			}
		}
	}
	var parts []string
	for k, raw := range obj {
		if s := flatten(raw); s != "" {
			parts = append(parts, k+": "+s)
		}
	}
	if len(parts) == 0 {
		return body
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func flatten(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, ", ")
	}
	return ""
}
