// Package supabase talks to the hosted Postgres through its PostgREST API. A
// single Client implements the category, transaction, family and import job
// stores.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/infra/resilience"
)

var tracer = otel.Tracer("supabase")

// Config holds the connection settings.
type Config struct {
	URL            string
	APIKey         string
	ServiceRoleKey string
	Timeout        time.Duration
	Resilience     resilience.Config
}

// ErrorRecorder counts failed calls per store.
type ErrorRecorder interface {
	IncrExternalError(service string)
}

// Client is the Supabase REST client.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	recorder       ErrorRecorder
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithErrorRecorder reports every failed call to r.
func WithErrorRecorder(r ErrorRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new Supabase REST client.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	key := cfg.ServiceRoleKey
	if key == "" {
		key = cfg.APIKey
	}

	c := &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		apiKey:         cfg.APIKey,
		serviceRoleKey: key,
		cb:             resilience.NewCircuitBreaker("supabase", logger),
		cfg:            cfg.Resilience,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is a non-2xx PostgREST response. Its message is the store's own.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string { return e.Message }

type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (c *Client) endpoint(table string, query url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest performs one call. 4xx responses come back as permanent errors so
// they are neither retried nor counted against the breaker.
func (c *Client) doRequest(ctx context.Context, method, table string, query url.Values, body any, prefer string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("failed to encode %s payload: %w", table, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(table, query), reader)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceRoleKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			slog.String("method", method),
			slog.String("table", table),
			slog.Any("error", err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		c.logger.Warn("supabase: non-2xx",
			slog.String("method", method),
			slog.String("table", table),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)),
		)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, resilience.Permanent(apiErr)
		}
		return nil, apiErr
	}

	c.logger.Debug("supabase: OK", slog.String("method", method), slog.String("table", table), slog.Int("status", resp.StatusCode))
	return respBody, nil
}

func newAPIError(status int, body []byte) *apiError {
	e := &apiError{Status: status}
	var pe postgrestError
	if json.Unmarshal(body, &pe) == nil && pe.Message != "" {
		e.Code = pe.Code
		e.Message = pe.Message
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = fmt.Sprintf("supabase returned status %d", status)
	}
	return e
}

// read GETs table rows into out, retrying transient failures.
func (c *Client) read(ctx context.Context, service, table string, query url.Values, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			return c.get(ctx, table, query, out)
		})
	})
	return c.wrap(service, err)
}

// readOnce GETs table rows into out through the breaker only. The import
// pipeline reads this way: a failed run is re-run by the caller.
func (c *Client) readOnce(ctx context.Context, service, table string, query url.Values, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.get(ctx, table, query, out)
	})
	return c.wrap(service, err)
}

func (c *Client) get(ctx context.Context, table string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, table, query, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resilience.Permanent(fmt.Errorf("failed to decode %s: %w", table, err))
	}
	return nil
}

// write sends one mutating call. Writes are not retried: a timed out insert
// may have landed. When out is nil the store is asked for no representation.
func (c *Client) write(ctx context.Context, service, method, table string, query url.Values, body, out any) error {
	prefer := "return=minimal"
	if out != nil {
		prefer = "return=representation"
	}
	_, err := c.cb.Execute(func() (any, error) {
		respBody, err := c.doRequest(ctx, method, table, query, body, prefer)
		if err != nil {
			return nil, err
		}
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return nil, resilience.Permanent(fmt.Errorf("failed to decode %s: %w", table, err))
			}
		}
		return nil, nil
	})
	return c.wrap(service, err)
}

func (c *Client) wrap(service string, err error) error {
	if err == nil {
		return nil
	}
	if c.recorder != nil {
		c.recorder.IncrExternalError(service)
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		err = apiErr
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Supabase."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func eq(v fmt.Stringer) string {
	return "eq." + v.String()
}

// storeCode returns the Postgres error code of a store rejection, if any.
func storeCode(err error) string {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
