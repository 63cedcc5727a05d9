package inbound

import (
	"net/http"
	"net/url"

	"github.com/shandysiswandi/emailcode/internal/emailauth/usecase"
	"github.com/shandysiswandi/emailcode/internal/pkg/router"
)

// HTTPEndpoint exposes the email code step over HTTP.
type HTTPEndpoint struct {
	uc           uc
	cookieName   string
	cookieSecure bool
}

// StartSession opens an auth session for an identified user and sets the
// session cookie.
func (h *HTTPEndpoint) StartSession(r *router.Request) (any, error) {
	var req StartSessionRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	realm := r.GetParam("realm")
	resp, err := h.uc.StartSession(r.Context(), usecase.StartSessionInput{
		Realm:  realm,
		UserID: req.UserID,
	})
	if err != nil {
		return nil, err
	}

	return StartSessionResponse{
		SessionID: resp.SessionID,
		Token:     resp.Token,
		ResumeURL: resp.ResumeURL,
		ExpiresAt: resp.ExpiresAt,
		cookies: []*http.Cookie{{
			Name:     h.cookieName,
			Value:    resp.Token,
			Path:     cookiePath(realm),
			Expires:  resp.ExpiresAt,
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		}},
	}, nil
}

// Authenticate renders the code form, or completes the step when the
// request carries a valid link key.
func (h *HTTPEndpoint) Authenticate(r *router.Request) (any, error) {
	key, hasKey := r.LookupQuery("key")

	out, err := h.uc.Authenticate(r.Context(), usecase.AuthenticateInput{
		Realm:  r.GetParam("realm"),
		Key:    key,
		HasKey: hasKey,
		IP:     r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return h.stepResponse(r.GetParam("realm"), out), nil
}

// Action processes the posted code form.
func (h *HTTPEndpoint) Action(r *router.Request) (any, error) {
	form, err := r.Form()
	if err != nil {
		return nil, err
	}

	out, err := h.uc.Action(r.Context(), usecase.ActionInput{
		Realm:     r.GetParam("realm"),
		Execution: r.GetQuery("execution"),
		Form:      url.Values(form),
		IP:        r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return h.stepResponse(r.GetParam("realm"), out), nil
}

func (h *HTTPEndpoint) stepResponse(realm string, out *usecase.StepOutput) any {
	if out.RedirectURL == "" {
		return &router.HTML{Body: out.Page}
	}

	redirect := &router.Redirect{Location: out.RedirectURL}
	if out.EndSession {
		redirect.WithCookie(&http.Cookie{
			Name:     h.cookieName,
			Value:    "",
			Path:     cookiePath(realm),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return redirect
}

func cookiePath(realm string) string {
	return "/realms/" + url.PathEscape(realm) + "/"
}
