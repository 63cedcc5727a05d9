package emailauth

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/emailcode/internal/emailauth/inbound"
	"github.com/shandysiswandi/emailcode/internal/emailauth/outbound/db"
	"github.com/shandysiswandi/emailcode/internal/emailauth/outbound/email"
	"github.com/shandysiswandi/emailcode/internal/emailauth/outbound/mq"
	"github.com/shandysiswandi/emailcode/internal/emailauth/outbound/session"
	"github.com/shandysiswandi/emailcode/internal/emailauth/outbound/theme"
	"github.com/shandysiswandi/emailcode/internal/emailauth/usecase"
	"github.com/shandysiswandi/emailcode/internal/pkg/clock"
	"github.com/shandysiswandi/emailcode/internal/pkg/config"
	"github.com/shandysiswandi/emailcode/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/jwt"
	"github.com/shandysiswandi/emailcode/internal/pkg/locker"
	"github.com/shandysiswandi/emailcode/internal/pkg/mail"
	"github.com/shandysiswandi/emailcode/internal/pkg/messaging"
	"github.com/shandysiswandi/emailcode/internal/pkg/router"
	"github.com/shandysiswandi/emailcode/internal/pkg/storage"
	"github.com/shandysiswandi/emailcode/internal/pkg/uid"
	"github.com/shandysiswandi/emailcode/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
	// Storage is optional; it is only read for theme overrides.
	Storage storage.Storage
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	if dep.Config.GetBool("modules.emailauth.auto_migrate") {
		if err := dbAuth.Migrate(dep.Ctx); err != nil {
			return err
		}
	}

	th, err := theme.New(dep.Instrument, dep.Config.GetString("modules.emailauth.locale"))
	if err != nil {
		return err
	}
	if bucket := dep.Config.GetString("modules.emailauth.theme.bucket"); bucket != "" && dep.Storage != nil {
		if err := th.LoadOverrides(dep.Ctx, dep.Storage, bucket,
			dep.Config.GetString("modules.emailauth.theme.prefix"),
			dep.Config.GetArray("modules.emailauth.theme.locales"),
		); err != nil {
			return err
		}
		slog.InfoContext(dep.Ctx, "email code theme overrides applied", "bucket", bucket)
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoSession:   session.NewStore(dep.CacheConn, dep.Instrument),
		RepoMail:      email.New(dep.Mail, th, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Config.GetString("modules.emailauth.event_destination"), dep.Instrument),
		Renderer:      th,
		Locker:        locker.NewRedis(dep.CacheConn, "", dep.UUID),
		Validator:     dep.Validator,
		Config:        dep.Config,
		UID:           dep.UID,
		UUID:          dep.UUID,
		OID:           dep.OID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.HTTPOptions{
		JWT:           dep.JWT,
		CookieName:    dep.Config.GetString("modules.emailauth.cookie.name"),
		CookieSecure:  dep.Config.GetBool("modules.emailauth.cookie.secure"),
		HandoffHeader: "X-Internal-Key",
		HandoffAPIKey: dep.Config.GetString("modules.emailauth.handoff_api_key"),
	})

	return nil
}
