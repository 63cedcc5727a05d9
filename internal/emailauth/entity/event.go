package entity

import "time"

type EventType string

const (
	EventCodeSent     EventType = "EMAIL_CODE_SENT"
	EventLogin        EventType = "LOGIN"
	EventLoginError   EventType = "LOGIN_ERROR"
	EventCodeCanceled EventType = "EMAIL_CODE_CANCELED"
)

// Event error codes.
const (
	ErrorInvalidUserCredentials = "invalid_user_credentials"
	ErrorInvalidUser            = "invalid_user"
	ErrorEmailSendFailed        = "email_send_failed"
)

// LoginEvent is an audit record of something that happened during the step.
type LoginEvent struct {
	ID        int64             `json:"id,string"`
	Type      EventType         `json:"type"`
	Error     string            `json:"error,omitempty"`
	RealmID   string            `json:"realm_id"`
	UserID    string            `json:"user_id"`
	SessionID string            `json:"session_id"`
	IP        string            `json:"ip,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Time      time.Time         `json:"time"`
}
