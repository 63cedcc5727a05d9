package entity

import "time"

type Realm struct {
	ID          string
	Name        string
	DisplayName string
}

type User struct {
	ID       string
	RealmID  string
	Username string
	// Email is empty when the user never registered one.
	Email string
}

type SessionStatus string

const (
	SessionStatusPending       SessionStatus = "pending"
	SessionStatusAuthenticated SessionStatus = "authenticated"
)

// AuthSession is one in-flight login. It lives in the session store until it
// expires, is cancelled, or is consumed by the next login step.
type AuthSession struct {
	ID          string        `json:"id"`
	RealmID     string        `json:"realm_id"`
	RealmName   string        `json:"realm_name"`
	UserID      string        `json:"user_id"`
	ExecutionID string        `json:"execution_id"`
	Status      SessionStatus `json:"status"`
	Notes       Notes         `json:"notes"`
	CreatedAt   time.Time     `json:"created_at"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

// Attempt is everything one step invocation sees.
type Attempt struct {
	SessionID   string
	ExecutionID string
	// ResumeURL re-enters this step; the link key is appended to it.
	ResumeURL string
	Realm     Realm
	User      User
	Notes     Notes
	IP        string
}
