package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/webhookx-io/hookdash/counter"
	"github.com/webhookx-io/hookdash/pkg/http/middlewares"
	"github.com/webhookx-io/hookdash/pkg/metrics"
	"github.com/webhookx-io/hookdash/pkg/http/response"
	"github.com/webhookx-io/hookdash/pkg/types"
	"go.uber.org/zap"
)

// Document is a Firestore document as carried by document-write events.
// An empty Name means the document does not exist.
type Document struct {
	Name       string                 `json:"name"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
	CreateTime string                 `json:"createTime,omitempty"`
	UpdateTime string                 `json:"updateTime,omitempty"`
}

func (d *Document) snapshot() *counter.Snapshot {
	if d == nil || d.Name == "" {
		return &counter.Snapshot{Exists: false}
	}
	return &counter.Snapshot{Exists: true, Data: d.Fields}
}

// DocumentEvent is the body of a Firestore document-write event
type DocumentEvent struct {
	OldValue *Document `json:"oldValue"`
	Value    *Document `json:"value"`
}

func (e *DocumentEvent) name() string {
	if e.Value != nil && e.Value.Name != "" {
		return e.Value.Name
	}
	if e.OldValue != nil {
		return e.OldValue.Name
	}
	return ""
}

type HTTPOptions struct {
	Listen      string
	Metrics     *metrics.Metrics
	Middlewares []mux.MiddlewareFunc
}

// HTTPSource receives document-write events over HTTP. Failures to apply a
// change answer 5xx so the event platform retries; malformed events answer 4xx.
type HTTPSource struct {
	handler Handler
	opts    HTTPOptions
	log     *zap.SugaredLogger
	s       *http.Server
}

func NewHTTPSource(handler Handler, log *zap.SugaredLogger, opts HTTPOptions) *HTTPSource {
	source := &HTTPSource{
		handler: handler,
		opts:    opts,
		log:     log,
	}
	source.s = &http.Server{
		Handler:      source.Handler(),
		Addr:         opts.Listen,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}
	return source
}

func (s *HTTPSource) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, 404, types.ErrorResponse{Message: "not found"})
	})
	for _, m := range s.opts.Middlewares {
		r.Use(m)
	}
	r.Use(middlewares.NewRecovery(nil).Handle)
	r.HandleFunc("/events/firestore", s.handleFirestore).Methods("POST")
	return r
}

func (s *HTTPSource) record(result string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.TriggerEventCounter.With("source", "http", "result", result).Add(1)
	}
}

func (s *HTTPSource) handleFirestore(w http.ResponseWriter, r *http.Request) {
	var event DocumentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.record("malformed")
		response.JSON(w, 400, types.ErrorResponse{Message: "malformed event: " + err.Error()})
		return
	}

	name := event.name()
	params, ok := MatchPath(WebhookPathPattern, name)
	if !ok {
		s.record("malformed")
		response.JSON(w, 400, types.ErrorResponse{Message: "document path does not match " + WebhookPathPattern})
		return
	}

	change := &counter.Change{
		ID:     r.Header.Get("ce-id"),
		Before: event.OldValue.snapshot(),
		After:  event.Value.snapshot(),
		Params: counter.Params{
			EndpointId: params["endpointId"],
			WebhookId:  params["webhookId"],
		},
	}
	if err := s.handler.Handle(r.Context(), change); err != nil {
		s.log.Errorf("[trigger] failed to handle change of %s: %v", name, err)
		s.record("failed")
		response.JSON(w, 500, types.ErrorResponse{Message: "failed to apply change"})
		return
	}

	s.record("ok")
	w.WriteHeader(204)
}

func (s *HTTPSource) Start() error {
	go func() {
		s.log.Infof("[trigger] http source listening on %s", s.s.Addr)
		if err := s.s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("[trigger] failed to start http source: %v", err)
		}
	}()
	return nil
}

func (s *HTTPSource) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.s.Shutdown(ctx)
}
