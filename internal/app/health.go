package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/emailcode/internal/pkg/router"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks"`
	degraded bool
}

func (h healthResponse) Message() string {
	if h.degraded {
		return "service is degraded"
	}
	return "service is healthy"
}

func (h healthResponse) StatusCode() int {
	if h.degraded {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// health pings Postgres and Redis. Broker and storage are not checked: the
// login step keeps working without them.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:  "ok",
		Service: a.config.GetString("instrument.service_name"),
		Checks:  map[string]string{},
	}

	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{name: "database", ping: a.dbConn.Ping},
		{name: "redis", ping: func(ctx context.Context) error { return a.cacheConn.Ping(ctx).Err() }},
	}
	for _, c := range checks {
		if err := c.ping(ctx); err != nil {
			slog.ErrorContext(ctx, "health check failed", "name", c.name, "error", err)
			resp.Checks[c.name] = "down"
			resp.Status = "degraded"
			resp.degraded = true
			continue
		}
		resp.Checks[c.name] = "up"
	}

	return resp, nil
}
