// Package session keeps auth sessions in Redis as JSON documents whose TTL
// is the session lifetime.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
)

const keyPrefix = "emailauth:session:"

type Store struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func NewStore(client *redis.Client, ins instrument.Instrumentation) *Store {
	return &Store{client: client, ins: ins}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("emailauth.outbound.session").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create stores a new session. It fails with goerror.ErrConflict if the id
// is taken.
func (s *Store) Create(ctx context.Context, sess entity.AuthSession, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer func() { s.endSpan(span, err) }()

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+sess.ID, data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		err = goerror.ErrConflict
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (_ *entity.AuthSession, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		err = goerror.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	var sess entity.AuthSession
	if err = json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Notes == nil {
		sess.Notes = entity.Notes{}
	}
	return &sess, nil
}

// Save overwrites an existing session and keeps its remaining TTL. An
// expired or deleted session is not resurrected.
func (s *Store) Save(ctx context.Context, sess entity.AuthSession) (err error) {
	ctx, span := s.startSpan(ctx, "Save")
	defer func() { s.endSpan(span, err) }()

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	err = s.client.SetArgs(ctx, keyPrefix+sess.ID, data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		err = goerror.ErrNotFound
	}
	return err
}

func (s *Store) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	err = s.client.Del(ctx, keyPrefix+id).Err()
	return err
}
