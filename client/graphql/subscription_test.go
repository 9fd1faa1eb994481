package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func wsServer(t *testing.T, handle func(ctx context.Context, conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{Subprotocols: []string{Subprotocol}})
		if err != nil {
			return
		}
		defer conn.CloseNow()
		handle(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// handshake acknowledges the connection and returns the init and start messages
func handshake(ctx context.Context, conn *websocket.Conn) (init message, start message, err error) {
	if err = wsjson.Read(ctx, conn, &init); err != nil {
		return
	}
	if err = wsjson.Write(ctx, conn, &message{Type: typeConnectionAck}); err != nil {
		return
	}
	if err = wsjson.Write(ctx, conn, &message{Type: typeKeepAlive}); err != nil {
		return
	}
	err = wsjson.Read(ctx, conn, &start)
	return
}

func collect(t *testing.T, sub *Subscription) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return events
			}
			events = append(events, e)
		case <-timeout:
			t.Fatal("subscription did not finish")
			return nil
		}
	}
}

func TestSubscribe(t *testing.T) {
	var init, start message
	var starts int32
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn) {
		var err error
		init, start, err = handshake(ctx, conn)
		if err != nil {
			return
		}
		atomic.AddInt32(&starts, 1)
		data := json.RawMessage(`{"data":{"webhookCreated":{"webhook":{"id":"W3"}}}}`)
		_ = wsjson.Write(ctx, conn, &message{ID: start.ID, Type: typeData, Payload: data})
		_ = wsjson.Write(ctx, conn, &message{ID: start.ID, Type: typeComplete})
	})

	c := New(Options{WSURL: url, Token: StaticToken("secret")}, zap.S())
	sub := c.Subscribe(context.Background(), &Request{
		Query:     "subscription webhookCreated($endpointId: ID!) { webhookCreated(endpointId: $endpointId) { webhook { id } } }",
		Variables: map[string]interface{}{"endpointId": "E1"},
	})
	defer sub.Close()

	events := collect(t, sub)
	require.Len(t, events, 1)
	assert.NoError(t, events[0].Err)
	assert.JSONEq(t, `{"webhookCreated":{"webhook":{"id":"W3"}}}`, string(events[0].Data))

	assert.Equal(t, typeConnectionInit, init.Type)
	assert.JSONEq(t, `{"x-token":"secret"}`, string(init.Payload))
	assert.Equal(t, typeStart, start.Type)
	assert.Equal(t, operationID, start.ID)
	var req Request
	require.NoError(t, json.Unmarshal(start.Payload, &req))
	assert.Equal(t, "E1", req.Variables["endpointId"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&starts))
}

func TestSubscribeReconnect(t *testing.T) {
	var connections int32
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn) {
		n := atomic.AddInt32(&connections, 1)
		_, start, err := handshake(ctx, conn)
		if err != nil {
			return
		}
		if n == 1 {
			conn.Close(websocket.StatusGoingAway, "restarting")
			return
		}
		data := json.RawMessage(`{"data":{"n":2}}`)
		_ = wsjson.Write(ctx, conn, &message{ID: start.ID, Type: typeData, Payload: data})
		_ = wsjson.Write(ctx, conn, &message{ID: start.ID, Type: typeComplete})
	})

	c := New(Options{WSURL: url, Reconnect: []int64{0}}, zap.S())
	sub := c.Subscribe(context.Background(), &Request{Query: "subscription { n }"})
	defer sub.Close()

	events := collect(t, sub)
	require.Len(t, events, 2)
	assert.Error(t, events[0].Err)
	assert.NoError(t, events[1].Err)
	assert.JSONEq(t, `{"n":2}`, string(events[1].Data))
	assert.Equal(t, int32(2), atomic.LoadInt32(&connections))
}

func TestSubscribeReconnectExhausted(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	c := New(Options{WSURL: url, Reconnect: []int64{0}}, zap.S())
	sub := c.Subscribe(context.Background(), &Request{Query: "subscription { n }"})
	defer sub.Close()

	events := collect(t, sub)
	require.Len(t, events, 2)
	assert.Error(t, events[0].Err)
	assert.Error(t, events[1].Err)
}

func TestSubscribeOperationError(t *testing.T) {
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn) {
		_, start, err := handshake(ctx, conn)
		if err != nil {
			return
		}
		payload := json.RawMessage(`[{"message":"denied","extensions":{"code":"FORBIDDEN"}}]`)
		_ = wsjson.Write(ctx, conn, &message{ID: start.ID, Type: typeError, Payload: payload})
		// keep the connection until the client leaves
		var msg message
		_ = wsjson.Read(ctx, conn, &msg)
	})

	hooked := make(chan *Error, 1)
	c := New(Options{WSURL: url, OnUnauthenticated: func(e *Error) { hooked <- e }}, zap.S())
	sub := c.Subscribe(context.Background(), &Request{Query: "subscription { n }"})
	defer sub.Close()

	events := collect(t, sub)
	require.Len(t, events, 1)
	assert.True(t, IsUnauthenticated(events[0].Err))
	select {
	case e := <-hooked:
		assert.Equal(t, "denied", e.Message)
	default:
		t.Fatal("hook not called")
	}
}

func TestSubscriptionCloseSendsStop(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan message, 1)
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn) {
		if _, _, err := handshake(ctx, conn); err != nil {
			return
		}
		close(started)
		var msg message
		if err := wsjson.Read(ctx, conn, &msg); err == nil {
			stopped <- msg
		}
	})

	c := New(Options{WSURL: url}, zap.S())
	sub := c.Subscribe(context.Background(), &Request{Query: "subscription { n }"})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not start")
	}
	sub.Close()
	sub.Close()

	select {
	case msg := <-stopped:
		assert.Equal(t, typeStop, msg.Type)
		assert.Equal(t, operationID, msg.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("stop not received")
	}
	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestDecodeErrors(t *testing.T) {
	assert.Equal(t, "graphql: a", decodeErrors(json.RawMessage(`[{"message":"a"}]`)).Error())
	assert.Equal(t, "graphql: b", decodeErrors(json.RawMessage(`{"message":"b"}`)).Error())
	assert.Equal(t, `graphql: "c"`, decodeErrors(json.RawMessage(`"c"`)).Error())
	assert.Equal(t, "graphql: unknown error", decodeErrors(json.RawMessage(`[null]`)).Error())
}

func TestSubscribeNullErrors(t *testing.T) {
	url := wsServer(t, func(ctx context.Context, conn *websocket.Conn) {
		_, start, err := handshake(ctx, conn)
		if err != nil {
			return
		}
		_ = wsjson.Write(ctx, conn, &message{ID: start.ID, Type: typeData, Payload: json.RawMessage(`{"data":null,"errors":[null]}`)})
		_ = wsjson.Write(ctx, conn, &message{ID: start.ID, Type: typeError, Payload: json.RawMessage(`[null]`)})
		var msg message
		_ = wsjson.Read(ctx, conn, &msg)
	})

	c := New(Options{WSURL: url, OnUnauthenticated: func(*Error) {}}, zap.S())
	sub := c.Subscribe(context.Background(), &Request{Query: "subscription { n }"})
	defer sub.Close()

	events := collect(t, sub)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.EqualError(t, e.Err, "graphql: unknown error")
	}
}
