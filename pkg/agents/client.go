// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/agentdeck/pkg/errors"
	"github.com/jllopis/agentdeck/pkg/resilience"
	"github.com/jllopis/agentdeck/pkg/telemetry"
	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
)

// APIPath is the version prefix of every platform endpoint.
const APIPath = "/api/v1"

// Client talks to the agent platform API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      resilience.RetryConfig
	breaker    *resilience.Breaker
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRetry overrides the retry policy.
func WithRetry(rc resilience.RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithBreaker guards calls with a circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a platform client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      resilience.DefaultRetryConfig(),
		tracer:     otel.Tracer("agentdeck/agents"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CreateWorkflow submits a workflow. Recoverable failures such as 5xx
// answers or transport errors are retried.
func (c *Client) CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (CreateWorkflowResponse, error) {
	ctx, span := c.tracer.Start(ctx, "Platform.CreateWorkflow",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(telemetry.AttrPlatformOp, "create_workflow"),
			attribute.String(telemetry.AttrDocument, telemetry.Truncate(req.Name, 128)),
		),
	)
	defer span.End()

	rc := c.retry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
		c.logger.WarnContext(ctx, "retrying platform call",
			"operation", "create_workflow",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	})

	var resp CreateWorkflowResponse
	err := rc.Do(ctx, func(ctx context.Context) error {
		call := func(ctx context.Context) error {
			return c.doJSON(ctx, http.MethodPost, "/workflows", req, &resp)
		}
		if c.breaker != nil {
			return c.breaker.Call(ctx, call)
		}
		return call(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CreateWorkflowResponse{}, err
	}
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + APIPath + path
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, resp any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.New(errors.CodeInternal, "encode request", err)
		}
		body = bytes.NewReader(raw)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return errors.New(errors.CodeInternal, "build request", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(ctx, request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return errors.New(errors.CodeTimeout, "platform request cancelled", err).WithRecoverable(false)
		}
		return errors.New(errors.CodeUpstream, "platform unreachable", err).
			WithContext("url", request.URL.String())
	}
	defer response.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(telemetry.AttrPlatformStatus, response.StatusCode))
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseHTTPError(response)
	}
	if resp == nil {
		return nil
	}
	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.New(errors.CodeUpstream, "read response", err)
	}
	if err := json.Unmarshal(bodyBytes, resp); err != nil {
		return errors.New(errors.CodeUpstream, "decode response", err).WithRecoverable(false)
	}
	return nil
}

func (c *Client) applyHeaders(ctx context.Context, request *http.Request) {
	request.Header.Set("Accept", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))
}

// parseHTTPError maps a non-2xx answer to a typed error. The platform puts
// its message in "detail", which may be a string or a structured value.
func parseHTTPError(response *http.Response) error {
	code := errors.FromStatus(response.StatusCode)
	message := "API Error: " + response.Status

	// A falsy detail ("", 0, false, null) keeps the status message.
	payload, _ := io.ReadAll(response.Body)
	if body, err := jsonvalue.ParseJSON(payload); err == nil {
		if detail := body.Get("detail"); detail.Truthy() {
			if s, ok := detail.Str(); ok {
				message = s
			} else if raw, err := detail.MarshalJSON(); err == nil {
				message = string(raw)
			}
		}
	}
	return errors.New(code, message, nil).
		WithContext("status", response.StatusCode).
		WithStatus(response.StatusCode)
}
