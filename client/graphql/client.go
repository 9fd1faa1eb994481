package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/webhookx-io/hookdash/constants"
	"github.com/webhookx-io/hookdash/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Request is a GraphQL operation
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

// TokenSource returns the current session token, empty when signed out
type TokenSource func() string

func StaticToken(token string) TokenSource {
	return func() string { return token }
}

type Options struct {
	HTTPURL string
	WSURL   string
	Timeout time.Duration
	Token   TokenSource
	// Reconnect are the delays in seconds between subscription reconnects
	Reconnect []int64
	// OnUnauthenticated is called when the server answers UNAUTHENTICATED or FORBIDDEN
	OnUnauthenticated func(err *Error)
}

type Client struct {
	opts Options
	http *resty.Client
	log  *zap.SugaredLogger
}

func New(opts Options, log *zap.SugaredLogger) *Client {
	if opts.Token == nil {
		opts.Token = StaticToken("")
	}
	client := resty.New().
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	for _, header := range constants.DefaultClientHeaders {
		client.SetHeader(header.Name, header.Value)
	}
	return &Client{
		opts: opts,
		http: client,
		log:  log,
	}
}

// Query executes a query or mutation and decodes "data" into out
func (c *Client) Query(ctx context.Context, req *Request, out interface{}) (err error) {
	ctx, span := tracing.Start(ctx, "graphql.query", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("graphql.operation.name", req.OperationName))
	defer func() {
		tracing.Error(span, err)
		span.End()
	}()

	var res response
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(constants.HeaderToken, c.opts.Token()).
		SetBody(req).
		Post(c.opts.HTTPURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		if resp.IsError() {
			return fmt.Errorf("graphql: unexpected status %d", resp.StatusCode())
		}
		return fmt.Errorf("graphql: invalid response: %w", err)
	}

	if len(res.Errors) > 0 {
		c.handleErrors(res.Errors)
		return res.Errors
	}
	if resp.IsError() {
		return fmt.Errorf("graphql: unexpected status %d", resp.StatusCode())
	}

	if out != nil && len(res.Data) > 0 {
		return json.Unmarshal(res.Data, out)
	}
	return nil
}

// handleErrors reports authentication failures to the hook and logs the rest
func (c *Client) handleErrors(errs Errors) {
	for _, e := range errs {
		if e == nil {
			continue
		}
		if e.unauthenticated() {
			if c.opts.OnUnauthenticated != nil {
				c.opts.OnUnauthenticated(e)
			}
			continue
		}
		c.log.Warnf("[graphql] error: %s, location: %v, path: %v", e.Message, e.Locations, e.Path)
	}
}
