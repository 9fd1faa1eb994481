package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/webhookx-io/hookdash/counter"
	"github.com/webhookx-io/hookdash/db/entities"
	"github.com/webhookx-io/hookdash/db/transaction"
	"github.com/webhookx-io/hookdash/pkg/loglimiter"
	"github.com/webhookx-io/hookdash/pkg/metrics"
	"github.com/webhookx-io/hookdash/pkg/pool"
	"github.com/webhookx-io/hookdash/pkg/taskqueue"
	"github.com/webhookx-io/hookdash/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type QueueOptions struct {
	Workers      int
	PoolSize     int
	BatchSize    int64
	PollInterval time.Duration
	// Hold is how long a task enqueued inside a transaction stays invisible
	// when the commit is never confirmed
	Hold    time.Duration
	Metrics *metrics.Metrics
}

// QueueSource delivers changes through the task queue. A task is deleted only
// after the handler succeeds, otherwise it reappears after the visibility timeout.
type QueueSource struct {
	mux     sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}

	opts    QueueOptions
	queue   taskqueue.TaskQueue
	handler Handler
	pool    *pool.Pool
	log     *zap.SugaredLogger
	limiter *loglimiter.Limiter
}

func NewQueueSource(queue taskqueue.TaskQueue, handler Handler, log *zap.SugaredLogger, opts QueueOptions) *QueueSource {
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Hold <= 0 {
		opts.Hold = time.Minute
	}
	return &QueueSource{
		opts:    opts,
		queue:   queue,
		handler: handler,
		log:     log,
		limiter: loglimiter.NewLimiter(time.Minute),
	}
}

// Enqueue is a dao.ChangeHook. Inside a transaction the task is held back until
// the commit and deleted on rollback.
func (s *QueueSource) Enqueue(ctx context.Context, before, after *entities.Webhook) error {
	change := WebhookChange(before, after)
	if change.Delta() == 0 {
		return nil
	}
	task := taskqueue.NewTaskMessage(change)
	task.ID = change.ID

	inTx := transaction.InTx(ctx)
	if inTx {
		task.ScheduledAt = task.ScheduledAt.Add(s.opts.Hold)
	}
	if err := s.queue.Add(ctx, []*taskqueue.TaskMessage{task}); err != nil {
		return err
	}
	if inTx {
		transaction.OnCommit(ctx, func() { s.release(task) })
		transaction.OnRollback(ctx, func() { s.delete(context.Background(), task) })
	}
	return nil
}

// release makes a held task visible. On failure it is delivered once the hold expires.
func (s *QueueSource) release(task *taskqueue.TaskMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.queue.Schedule(ctx, task, time.Now()); err != nil {
		s.log.Warnf("[trigger] failed to release task %s: %v", task.ID, err)
	}
}

func (s *QueueSource) Start() error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.started {
		return ErrSourceStarted
	}

	s.pool = pool.NewPool(s.opts.PoolSize, s.opts.Workers)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run()
	s.started = true
	s.log.Infof("[trigger] queue source started with %d workers", s.opts.Workers)
	return nil
}

func (s *QueueSource) Stop() error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if !s.started {
		return ErrSourceStopped
	}

	close(s.stop)
	<-s.done
	s.pool.Shutdown()
	s.started = false
	s.log.Info("[trigger] queue source stopped")
	return nil
}

func (s *QueueSource) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for {
				n, err := s.poll(context.Background())
				if err != nil {
					if ok, suppressed := s.limiter.AllowN("poll"); ok {
						s.log.Errorf("[trigger] failed to poll tasks: %v (%d similar errors suppressed)", err, suppressed)
					}
					break
				}
				if n < s.opts.BatchSize {
					break
				}
				select {
				case <-s.stop:
					return
				default:
				}
			}
		}
	}
}

// poll pulls one batch and hands it to the pool, returning the batch size
func (s *QueueSource) poll(ctx context.Context) (int64, error) {
	tasks, err := s.queue.Get(ctx, &taskqueue.GetOptions{Count: s.opts.BatchSize})
	if err != nil {
		return 0, err
	}
	for _, task := range tasks {
		err := s.pool.SubmitFn(time.Second*5, func() {
			s.process(context.Background(), task)
		})
		if err != nil {
			// left invisible, requeued after the visibility timeout
			s.log.Warnf("[trigger] failed to submit task %s: %v", task.ID, err)
		}
	}
	return int64(len(tasks)), nil
}

func (s *QueueSource) process(ctx context.Context, task *taskqueue.TaskMessage) {
	ctx, span := tracing.Start(ctx, "trigger.queue.process", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("task.id", task.ID))

	change := &counter.Change{}
	if err := task.UnmarshalData(change); err != nil {
		s.log.Errorf("[trigger] failed to unmarshal task %s: %v", task.ID, err)
		tracing.Error(span, err)
		s.record("malformed")
		s.delete(ctx, task)
		return
	}
	if change.ID == "" {
		change.ID = task.ID
	}

	if err := s.handler.Handle(ctx, change); err != nil {
		s.log.Errorf("[trigger] failed to handle change %s: %v", task.ID, err)
		tracing.Error(span, err)
		s.record("failed")
		return
	}
	s.record("ok")
	s.delete(ctx, task)
}

func (s *QueueSource) record(result string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.TriggerEventCounter.With("source", "queue", "result", result).Add(1)
	}
}

func (s *QueueSource) delete(ctx context.Context, task *taskqueue.TaskMessage) {
	if err := s.queue.Delete(ctx, task); err != nil {
		s.log.Errorf("[trigger] failed to delete task %s: %v", task.ID, err)
	}
}
