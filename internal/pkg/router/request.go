package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
)

const maxFormBytes = 64 * 1024

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// GetParam returns the named path parameter.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the first value of the query parameter, trimmed.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// LookupQuery returns the raw first value of key and whether key was present
// at all. "?key=" is present with an empty value.
func (r *Request) LookupQuery(key string) (string, bool) {
	vs, ok := r.URL.Query()[key]
	if !ok {
		return "", false
	}
	if len(vs) == 0 {
		return "", true
	}
	return vs[0], true
}

// Form parses an application/x-www-form-urlencoded body and returns it.
// Query parameters are not merged in.
func (r *Request) Form() (map[string][]string, error) {
	if r.Body == nil {
		return map[string][]string{}, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, goerror.NewInvalidFormat("Invalid form body")
	}
	return r.PostForm, nil
}

// DecodeBody strictly decodes a single JSON document into dst.
func (r *Request) DecodeBody(dst any) error {
	if r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxFormBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}

// ClientIP returns the address resolved by the real-IP middleware.
func (r *Request) ClientIP() string {
	return r.RemoteAddr
}
