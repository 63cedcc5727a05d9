package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
	"github.com/shandysiswandi/emailcode/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func encodeError(ctx context.Context, w http.ResponseWriter, err error) {
	gerr, ok := goerror.As(err)
	if !ok {
		slog.ErrorContext(ctx, "unhandled error reached the router", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg()}

	var ve validator.ValidationError
	if errors.As(err, &ve) {
		resp.Error = ve.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Error = gerr.Fields()
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func encode(w http.ResponseWriter, r *http.Request, resp any) {
	if c, ok := resp.(interface{ Cookies() []*http.Cookie }); ok {
		for _, cookie := range c.Cookies() {
			http.SetCookie(w, cookie)
		}
	}

	switch v := resp.(type) {
	case *HTML:
		writeHTML(w, v)
		return
	case *Redirect:
		http.Redirect(w, r, v.Location, v.statusCode())
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}
	if resp == nil || code == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	msg := "request has been successfully"
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}

	var meta map[string]any
	if m, ok := resp.(interface{ Meta() map[string]any }); ok {
		meta = m.Meta()
	}

	writeJSON(w, successResponse{Message: msg, Data: resp, Meta: meta}, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response as json", "error", err)
	}
}

func writeHTML(w http.ResponseWriter, page *HTML) {
	code := page.Status
	if code == 0 {
		code = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, must-revalidate, max-age=0")
	w.WriteHeader(code)
	if _, err := w.Write(page.Body); err != nil {
		slog.Error("failed to write html response", "error", err)
	}
}
