package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	uuid "github.com/satori/go.uuid"
	"github.com/webhookx-io/hookdash"
	"github.com/webhookx-io/hookdash/admin"
	"github.com/webhookx-io/hookdash/admin/api"
	"github.com/webhookx-io/hookdash/config"
	"github.com/webhookx-io/hookdash/config/modules"
	"github.com/webhookx-io/hookdash/counter"
	"github.com/webhookx-io/hookdash/db"
	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/db/migrator"
	"github.com/webhookx-io/hookdash/pkg/log"
	"github.com/webhookx-io/hookdash/pkg/metrics"
	"github.com/webhookx-io/hookdash/pkg/stats"
	"github.com/webhookx-io/hookdash/pkg/taskqueue"
	"github.com/webhookx-io/hookdash/pkg/tracing"
	"github.com/webhookx-io/hookdash/status"
	"github.com/webhookx-io/hookdash/trigger"
	"github.com/webhookx-io/hookdash/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
)

// Source delivers change events to the counter
type Source interface {
	Start() error
	Stop() error
}

type Application struct {
	nodeID string

	cfg *config.Config

	mux     sync.Mutex
	started bool

	stop chan struct{}

	log        *zap.SugaredLogger
	db         *db.DB
	redis      *redis.Client
	queue      *taskqueue.RedisTaskQueue
	maintainer *counter.Maintainer
	source     Source
	admin      *admin.Admin
	status     *status.Status
	stats      *stats.Collector
	metrics    *metrics.Metrics
	tracer     *tracing.Tracer
	closers    []func() error
}

func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		nodeID: uuid.NewV4().String(),
		cfg:    cfg,
		stop:   make(chan struct{}, 1),
	}

	err := app.initialize()
	if err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) initialize() error {
	cfg := app.cfg

	log, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log.Desugar())
	app.log = log

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		app.log.Errorf("[opentelemetry] %v", err)
	}))

	app.metrics, err = metrics.New(cfg.Metrics)
	if err != nil {
		return err
	}
	app.tracer, err = tracing.New(&cfg.Tracing)
	if err != nil {
		return err
	}

	app.redis = cfg.Redis.GetClient()

	sqlDB, err := db.NewSqlDB(cfg.Database)
	if err != nil {
		return err
	}

	var opts []db.Option
	var queueSource *trigger.QueueSource
	switch {
	case cfg.Trigger.Source == modules.TriggerSourceQueue:
		app.queue = taskqueue.NewRedisQueue(taskqueue.RedisTaskQueueOptions{
			Client:            app.redis,
			VisibilityTimeout: utils.DurationS(int64(cfg.Trigger.VisibilityTimeout)),
		}, log, app.metrics)
		// the source is built after the DAO it observes
		opts = append(opts, db.WithChangeHook(func(ctx context.Context, before, after *entities.Webhook) error {
			return queueSource.Enqueue(ctx, before, after)
		}))
	case cfg.Trigger.Source == modules.TriggerSourceHTTP && cfg.Counter.Backend == modules.CounterBackendPostgres:
		// the HTTP source only sees external stores, so local writes are counted
		// inside their own transaction
		log.Info("trigger source is http: webhook writes through the admin API are counted inline")
		opts = append(opts, db.WithChangeHook(func(ctx context.Context, before, after *entities.Webhook) error {
			return app.maintainer.Handle(ctx, trigger.WebhookChange(before, after))
		}))
	case cfg.Trigger.Source == modules.TriggerSourceHTTP && cfg.Admin.IsEnabled():
		log.Warnf("trigger source is http with counter backend %s: webhook writes through the admin API are not counted", cfg.Counter.Backend)
	}
	app.db = db.NewDB(sqlDB, log, opts...)

	app.stats = stats.NewCollector()
	app.stats.Register(app.db)
	if app.queue != nil {
		app.stats.Register(app.queue)
	}

	// counter
	writer, err := app.newWriter()
	if err != nil {
		return err
	}
	var counterOpts []counter.Option
	if cfg.Trigger.Dedup.Enabled {
		ttl := utils.DurationS(int64(cfg.Trigger.Dedup.TTL))
		counterOpts = append(counterOpts, counter.WithLedger(counter.NewRedisLedger(app.redis, ttl)))
	}
	counterOpts = append(counterOpts, counter.WithMetrics(app.metrics))
	app.maintainer = counter.NewMaintainer(writer, log.Named("counter"), counterOpts...)

	// trigger
	switch cfg.Trigger.Source {
	case modules.TriggerSourceQueue:
		queueSource = trigger.NewQueueSource(app.queue, app.maintainer, log.Named("trigger"), trigger.QueueOptions{
			Workers:   int(cfg.Trigger.Workers),
			PoolSize:  int(cfg.Trigger.QueueSize),
			BatchSize: int64(cfg.Trigger.BatchSize),
			Hold:      utils.DurationS(int64(cfg.Trigger.VisibilityTimeout)),
			Metrics:   app.metrics,
		})
		app.source = queueSource
	case modules.TriggerSourceHTTP:
		app.source = trigger.NewHTTPSource(app.maintainer, log.Named("trigger"), trigger.HTTPOptions{
			Listen:      cfg.Trigger.Listen,
			Metrics:     app.metrics,
			Middlewares: app.middlewares("api.trigger"),
		})
	}

	// admin
	if cfg.Admin.IsEnabled() {
		api := api.NewAPI(api.Options{
			Config:      cfg,
			DB:          app.db,
			Middlewares: app.middlewares("api.admin"),
		})
		app.admin = admin.NewAdmin(cfg.Admin, api.Handler(), log)
	}

	if cfg.Status.IsEnabled() {
		indicators := []*status.Indicator{
			{
				Name:  "db",
				Check: app.db.Ping,
			},
			{
				Name: "redis",
				Check: func() error {
					resp := app.redis.Ping(context.TODO())
					if resp.Err() != nil {
						return resp.Err()
					}
					if resp.Val() != "PONG" {
						return errors.New("invalid response from redis: " + resp.Val())
					}
					return nil
				},
			},
		}
		app.status = status.NewStatus(cfg.Status, status.Options{
			Indicators: indicators,
			Stats:      app.stats,
			Tracing:    app.tracer != nil,
		}, log)
	}

	return nil
}

func (app *Application) middlewares(operation string) []mux.MiddlewareFunc {
	if app.tracer == nil {
		return nil
	}
	return []mux.MiddlewareFunc{otelhttp.NewMiddleware(operation)}
}

func (app *Application) newWriter() (counter.Writer, error) {
	cfg := app.cfg.Counter
	switch cfg.Backend {
	case modules.CounterBackendFirestore:
		client, err := counter.NewFirestoreClient(context.Background(), cfg.Firestore)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		return counter.NewFirestoreWriter(client, cfg.Firestore.Collection, cfg.Firestore.Field), nil
	default:
		return counter.NewPostgresWriter(app.db.Endpoints), nil
	}
}

func (app *Application) DB() *db.DB {
	return app.db
}

func (app *Application) Maintainer() *counter.Maintainer {
	return app.maintainer
}

func (app *Application) NodeID() string {
	return app.nodeID
}

func (app *Application) Config() *config.Config {
	return app.cfg
}

// Start starts application
func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	m := migrator.New(app.db.SqlDB(), app.cfg.Database.Database)
	version, dirty, err := m.Status()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d", version)
	}
	pending, err := m.Pending()
	if err != nil {
		return err
	}
	if pending {
		return errors.New("database is not up to date. Run 'hookdash db up' before starting")
	}

	app.log.Infof("starting hookdash %s (node %s)", hookdash.VERSION, app.nodeID)

	if app.source != nil {
		if err := app.source.Start(); err != nil {
			return err
		}
	} else {
		app.log.Info("trigger is disabled")
	}
	if app.admin != nil {
		app.admin.Start()
	}
	if app.status != nil {
		if err := app.status.Start(); err != nil {
			return err
		}
	}

	now := time.Now()
	app.stats.Register(stats.ProviderFunc(func() map[string]interface{} {
		return map[string]interface{}{
			"started_at": now,
		}
	}))

	app.started = true

	return nil
}

func (app *Application) Wait() {
	<-app.stop
}

// Stop stops application
func (app *Application) Stop() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	app.log.Info("exiting")

	defer func() {
		app.log.Info("exit")
		_ = app.log.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if app.admin != nil {
		_ = app.admin.Stop(ctx)
	}
	if app.status != nil {
		_ = app.status.Stop(ctx)
	}
	if app.source != nil {
		if err := app.source.Stop(); err != nil {
			app.log.Warnf("failed to stop trigger: %v", err)
		}
	}
	if app.queue != nil {
		app.queue.Close()
	}
	for _, closer := range app.closers {
		_ = closer()
	}
	if err := app.metrics.Stop(); err != nil {
		app.log.Warnf("failed to stop metrics: %v", err)
	}
	if err := app.tracer.Stop(); err != nil {
		app.log.Warnf("failed to stop tracer: %v", err)
	}
	_ = app.redis.Close()
	_ = app.db.Close()

	app.started = false
	app.stop <- struct{}{}

	return nil
}
