package router

import "net/http"

// HTML is a rendered page.
type HTML struct {
	Status  int
	Body    []byte
	cookies []*http.Cookie
}

// Redirect sends the browser to Location. Status defaults to 302.
type Redirect struct {
	Location string
	Status   int
	cookies  []*http.Cookie
}

func (r *Redirect) statusCode() int {
	if r.Status == 0 {
		return http.StatusFound
	}
	return r.Status
}

// WithCookie queues a Set-Cookie header on the page.
func (h *HTML) WithCookie(c *http.Cookie) *HTML {
	h.cookies = append(h.cookies, c)
	return h
}

func (h *HTML) Cookies() []*http.Cookie { return h.cookies }

// WithCookie queues a Set-Cookie header on the redirect.
func (r *Redirect) WithCookie(c *http.Cookie) *Redirect {
	r.cookies = append(r.cookies, c)
	return r
}

func (r *Redirect) Cookies() []*http.Cookie { return r.cookies }
