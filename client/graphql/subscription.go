package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/webhookx-io/hookdash/constants"
	"github.com/webhookx-io/hookdash/pkg/retry"
	"go.uber.org/zap"
)

const Subprotocol = "graphql-ws"

// graphql-ws message types
const (
	typeConnectionInit  = "connection_init"
	typeConnectionAck   = "connection_ack"
	typeConnectionError = "connection_error"
	typeKeepAlive       = "ka"
	typeStart           = "start"
	typeData            = "data"
	typeError           = "error"
	typeComplete        = "complete"
	typeStop            = "stop"
)

const operationID = "1"

type message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is one subscription result. Err is set for GraphQL errors and for
// transport failures that trigger a reconnect.
type Event struct {
	Data json.RawMessage
	Err  error
}

// Subscription is a live operation. Events is closed when the server completes
// the operation, reconnect attempts are exhausted, or the subscription is closed.
type Subscription struct {
	client *Client
	req    *Request
	retry  retry.Retry
	log    *zap.SugaredLogger

	events chan Event
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn

	closeOnce sync.Once
}

// Subscribe starts the operation in the background. Cancelling ctx has the same
// effect as Close.
func (c *Client) Subscribe(ctx context.Context, req *Request) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		client: c,
		req:    req,
		retry:  retry.NewRetry(retry.FixedStrategy, retry.WithFixedDelay(c.opts.Reconnect)),
		log:    c.log,
		events: make(chan Event, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close stops the operation and releases the connection. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = wsjson.Write(ctx, conn, &message{ID: operationID, Type: typeStop})
			cancel()
		}
		s.cancel()
		<-s.done
	})
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	attempts := 0
	for {
		acked, err := s.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			return
		}
		s.log.Debugf("[graphql] subscription interrupted: %v", err)
		if !s.emit(ctx, Event{Err: err}) {
			return
		}

		if acked {
			attempts = 0
		}
		attempts++
		delay := s.retry.NextDelay(attempts)
		if delay == retry.Stop {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (s *Subscription) emit(ctx context.Context, event Event) bool {
	select {
	case s.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Subscription) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

// session runs one connection until the operation completes (nil) or fails
func (s *Subscription) session(ctx context.Context) (acked bool, err error) {
	header := http.Header{}
	for _, h := range constants.DefaultClientHeaders {
		header.Set(h.Name, h.Value)
	}
	conn, _, err := websocket.Dial(ctx, s.client.opts.WSURL, &websocket.DialOptions{
		Subprotocols: []string{Subprotocol},
		HTTPHeader:   header,
	})
	if err != nil {
		return false, err
	}
	defer func() {
		s.setConn(nil)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	init, _ := json.Marshal(map[string]string{constants.HeaderToken: s.client.opts.Token()})
	if err := wsjson.Write(ctx, conn, &message{Type: typeConnectionInit, Payload: init}); err != nil {
		return false, err
	}

	for !acked {
		var msg message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return false, err
		}
		switch msg.Type {
		case typeConnectionAck:
			acked = true
		case typeKeepAlive:
		case typeConnectionError:
			return false, fmt.Errorf("graphql: connection error: %s", string(msg.Payload))
		default:
			s.log.Debugf("[graphql] unexpected message before ack: %s", msg.Type)
		}
	}

	payload, err := json.Marshal(s.req)
	if err != nil {
		return acked, err
	}
	s.setConn(conn)
	if err := wsjson.Write(ctx, conn, &message{ID: operationID, Type: typeStart, Payload: payload}); err != nil {
		return acked, err
	}

	for {
		var msg message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return acked, err
		}
		switch msg.Type {
		case typeKeepAlive:
		case typeData:
			var res response
			if err := json.Unmarshal(msg.Payload, &res); err != nil {
				return acked, err
			}
			event := Event{Data: res.Data}
			if len(res.Errors) > 0 {
				s.client.handleErrors(res.Errors)
				event.Err = res.Errors
			}
			if !s.emit(ctx, event) {
				return acked, ctx.Err()
			}
		case typeError:
			errs := decodeErrors(msg.Payload)
			s.client.handleErrors(errs)
			s.emit(ctx, Event{Err: errs})
			return acked, nil
		case typeComplete:
			return acked, nil
		case typeConnectionError:
			return acked, errors.New("graphql: connection error: " + string(msg.Payload))
		}
	}
}

// decodeErrors accepts an error array, a single error object or anything else
func decodeErrors(payload json.RawMessage) Errors {
	var errs Errors
	if err := json.Unmarshal(payload, &errs); err == nil && len(errs) > 0 {
		return errs
	}
	var e Error
	if err := json.Unmarshal(payload, &e); err == nil && e.Message != "" {
		return Errors{&e}
	}
	return Errors{{Message: string(payload)}}
}
