package inbound

import (
	"context"

	"github.com/shandysiswandi/emailcode/internal/emailauth/usecase"
	"github.com/shandysiswandi/emailcode/internal/pkg/jwt"
	"github.com/shandysiswandi/emailcode/internal/pkg/router"
)

type uc interface {
	StartSession(ctx context.Context, in usecase.StartSessionInput) (*usecase.StartSessionOutput, error)

	Authenticate(ctx context.Context, in usecase.AuthenticateInput) (*usecase.StepOutput, error)
	Action(ctx context.Context, in usecase.ActionInput) (*usecase.StepOutput, error)
}

// HTTPOptions configures the session cookie and the handoff guard.
type HTTPOptions struct {
	JWT           jwt.JWT
	CookieName    string
	CookieSecure  bool
	HandoffHeader string
	HandoffAPIKey string
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, opt HTTPOptions) {
	end := &HTTPEndpoint{
		uc:           uc,
		cookieName:   opt.CookieName,
		cookieSecure: opt.CookieSecure,
	}

	handoff := router.MiddlewareAPIKey(opt.HandoffHeader, opt.HandoffAPIKey)
	session := router.MiddlewareSession(opt.JWT, opt.CookieName)

	// Internal: called by the first-factor step once the user is identified
	r.POST("/api/v1/realms/:realm/auth-sessions", end.StartSession, handoff)

	// Browser flow (need auth session cookie)
	r.GET("/realms/:realm/login-actions/email-code", end.Authenticate, session)
	r.POST("/realms/:realm/login-actions/email-code", end.Action, session)
}
