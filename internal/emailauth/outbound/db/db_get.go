package db

import (
	"context"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
)

const queryGetRealmByName = `SELECT id, name, display_name FROM realms WHERE name = $1`

func (s *DB) GetRealmByName(ctx context.Context, name string) (_ *entity.Realm, err error) {
	ctx, span := s.startSpan(ctx, "GetRealmByName")
	defer func() { s.endSpan(span, err) }()

	var r entity.Realm
	if err = s.conn.QueryRow(ctx, queryGetRealmByName, name).Scan(&r.ID, &r.Name, &r.DisplayName); err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return &r, nil
}

const queryGetUserByID = `SELECT id, realm_id, username, COALESCE(email, '') FROM users WHERE realm_id = $1 AND id = $2`

func (s *DB) GetUserByID(ctx context.Context, realmID, userID string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	if err = s.conn.QueryRow(ctx, queryGetUserByID, realmID, userID).Scan(&u.ID, &u.RealmID, &u.Username, &u.Email); err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return &u, nil
}
