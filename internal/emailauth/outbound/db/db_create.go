package db

import (
	"context"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/valueobject"
)

const queryCreateLoginEvent = `
INSERT INTO emailauth_login_events (id, type, error, realm_id, user_id, session_id, ip, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *DB) CreateLoginEvent(ctx context.Context, ev entity.LoginEvent) (err error) {
	ctx, span := s.startSpan(ctx, "CreateLoginEvent")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateLoginEvent,
		ev.ID,
		string(ev.Type),
		ev.Error,
		ev.RealmID,
		ev.UserID,
		ev.SessionID,
		ev.IP,
		valueobject.JSONMap(ev.Details),
		ev.Time,
	)
	err = s.mapError(err)
	return err
}
