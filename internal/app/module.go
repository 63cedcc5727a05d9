package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/emailcode/internal/emailauth"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.emailauth.enabled") {
		if err := emailauth.New(emailauth.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Messaging:  a.messaging,
			Mail:       a.mail,
			Storage:    a.storage,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			OID:        a.oid,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module emailauth", "error", err)
			os.Exit(1)
		}
	}
}
