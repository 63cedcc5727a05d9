package inbound

import (
	"net/http"
	"time"
)

type StartSessionRequest struct {
	UserID string `json:"user_id"`
}

type StartSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ResumeURL string    `json:"resume_url"`
	ExpiresAt time.Time `json:"expires_at"`

	cookies []*http.Cookie
}

func (StartSessionResponse) Message() string {
	return "Authentication session started"
}

func (StartSessionResponse) StatusCode() int {
	return http.StatusCreated
}

func (r StartSessionResponse) Cookies() []*http.Cookie {
	return r.cookies
}
