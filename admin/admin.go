package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/webhookx-io/hookdash/config/modules"
	"go.uber.org/zap"
)

// Admin is an HTTP Server
type Admin struct {
	cfg *modules.AdminConfig
	s   *http.Server
	log *zap.SugaredLogger
}

func NewAdmin(cfg modules.AdminConfig, handler http.Handler, log *zap.SugaredLogger) *Admin {
	s := &http.Server{
		Handler: handler,
		Addr:    cfg.Listen,

		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	admin := &Admin{
		cfg: &cfg,
		s:   s,
		log: log.Named("admin"),
	}

	return admin
}

// Start starts an HTTP server
func (a *Admin) Start() {
	go func() {
		var err error
		tls := a.cfg.TLS
		if tls.Enabled() {
			err = a.s.ListenAndServeTLS(tls.Cert, tls.Key)
		} else {
			err = a.s.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("failed to start admin: %v", err)
		}
	}()
	a.log.Infof("listening on %s", a.cfg.URL())
}

// Stop stops the HTTP server
func (a *Admin) Stop(ctx context.Context) error {
	return a.s.Shutdown(ctx)
}
