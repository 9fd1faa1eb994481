package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/webhookx-io/hookdash/config/modules"
	"github.com/webhookx-io/hookdash/pkg/stats"
	"go.uber.org/zap"
)

// Status serves process stats and dependency health
type Status struct {
	api *API
	cfg *modules.StatusConfig
	s   *http.Server
	log *zap.SugaredLogger
}

type Options struct {
	Indicators []*Indicator
	Stats      *stats.Collector
	Tracing    bool
}

func NewStatus(cfg modules.StatusConfig, opts Options, log *zap.SugaredLogger) *Status {
	api := &API{
		startAt:        time.Now(),
		debugEndpoints: cfg.DebugEndpoints,
		indicators:     opts.Indicators,
		stats:          opts.Stats,
		tracing:        opts.Tracing,
	}
	s := &http.Server{
		Handler:      api.Handler(),
		Addr:         cfg.Listen,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Status{
		api: api,
		cfg: &cfg,
		s:   s,
		log: log.Named("status"),
	}
}

func (s *Status) Handler() http.Handler {
	return s.s.Handler
}

func (s *Status) Start() error {
	go func() {
		if err := s.s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Fatalf("failed to start status server: %v", err)
		}
	}()

	s.log.Infof(`listening on address "%s"`, s.cfg.Listen)

	if s.cfg.DebugEndpoints {
		s.log.Infow("serving debug endpoints at /debug", "pprof", "/debug/pprof/")
	}
	return nil
}

func (s *Status) Stop(ctx context.Context) error {
	return s.s.Shutdown(ctx)
}
