package trigger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/hookdash/counter"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const docName = "projects/demo/databases/(default)/documents/endpoints/E1/webhooks/W1"

func post(t *testing.T, handler http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/events/firestore", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHTTPSource(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h := &recordingHandler{}
		s := NewHTTPSource(h, zap.S(), HTTPOptions{})
		body := `{"oldValue":{},"value":{"name":"` + docName + `","fields":{"eventType":{"stringValue":"ping"}}}}`
		rec := post(t, s.Handler(), body, map[string]string{"ce-id": "evt-1"})

		assert.Equal(t, 204, rec.Code)
		require.Equal(t, 1, h.count())
		change := h.first()
		assert.Equal(t, "evt-1", change.ID)
		assert.Equal(t, "E1", change.Params.EndpointId)
		assert.Equal(t, "W1", change.Params.WebhookId)
		assert.Equal(t, int64(1), change.Delta())
	})

	t.Run("deleted", func(t *testing.T) {
		h := &recordingHandler{}
		s := NewHTTPSource(h, zap.S(), HTTPOptions{})
		rec := post(t, s.Handler(), `{"oldValue":{"name":"endpoints/E1/webhooks/W1"}}`, nil)

		assert.Equal(t, 204, rec.Code)
		require.Equal(t, 1, h.count())
		assert.Equal(t, int64(-1), h.first().Delta())
	})

	t.Run("updated", func(t *testing.T) {
		h := &recordingHandler{}
		s := NewHTTPSource(h, zap.S(), HTTPOptions{})
		body := `{"oldValue":{"name":"` + docName + `"},"value":{"name":"` + docName + `"}}`
		rec := post(t, s.Handler(), body, nil)

		assert.Equal(t, 204, rec.Code)
		assert.Equal(t, int64(0), h.first().Delta())
	})

	t.Run("malformed body", func(t *testing.T) {
		h := &recordingHandler{}
		s := NewHTTPSource(h, zap.S(), HTTPOptions{})
		rec := post(t, s.Handler(), `{`, nil)
		assert.Equal(t, 400, rec.Code)
		assert.Equal(t, 0, h.count())
	})

	t.Run("path mismatch", func(t *testing.T) {
		h := &recordingHandler{}
		s := NewHTTPSource(h, zap.S(), HTTPOptions{})
		rec := post(t, s.Handler(), `{"value":{"name":"endpoints/E1"}}`, nil)
		assert.Equal(t, 400, rec.Code)
		assert.Contains(t, rec.Body.String(), WebhookPathPattern)
		assert.Equal(t, 0, h.count())
	})

	t.Run("handler failure", func(t *testing.T) {
		h := &recordingHandler{err: errors.New("unavailable")}
		s := NewHTTPSource(h, zap.S(), HTTPOptions{})
		rec := post(t, s.Handler(), `{"value":{"name":"endpoints/E1/webhooks/W1"}}`, nil)
		assert.Equal(t, 500, rec.Code)
		assert.JSONEq(t, `{"message":"failed to apply change"}`, rec.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		s := NewHTTPSource(&recordingHandler{}, zap.S(), HTTPOptions{})
		req := httptest.NewRequest("GET", "/events/firestore", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, 405, rec.Code)
	})
}

// spanHandler records whether changes arrive with a recording span
type spanHandler struct {
	traced bool
}

func (h *spanHandler) Handle(ctx context.Context, change *counter.Change) error {
	h.traced = trace.SpanContextFromContext(ctx).IsValid()
	return nil
}

func TestHTTPSourceTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	h := &spanHandler{}
	s := NewHTTPSource(h, zap.S(), HTTPOptions{
		Middlewares: []mux.MiddlewareFunc{otelhttp.NewMiddleware("api.trigger")},
	})
	rec := post(t, s.Handler(), `{"value":{"name":"endpoints/E1/webhooks/W1"}}`, nil)

	assert.Equal(t, 204, rec.Code)
	assert.True(t, h.traced)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
}
