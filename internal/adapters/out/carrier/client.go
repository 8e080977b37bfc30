// Package carrier talks to the tracking aggregators and the label provider
// over HTTP. Every call carries a timeout, is traced and counted, and maps
// failures onto the provider error kinds of the errs package.
package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/metrics"
	"buyback/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 20 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config describes one provider endpoint.
type Config struct {
	Name    string
	BaseURL string
	APIKey  string

	// KeySetting names the setting that holds APIKey, for error messages.
	KeySetting string

	// AuthHeader carries the key, "API-Key" when empty. AuthPrefix is
	// prepended to the key, e.g. "Bearer ".
	AuthHeader string
	AuthPrefix string

	Timeout time.Duration
}

type client struct {
	cfg    Config
	http   *http.Client
	tracer trace.Tracer
}

func newClient(cfg Config, hc *http.Client) *client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = "API-Key"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &client{cfg: cfg, http: hc, tracer: tracing.Tracer("buyback/carrier")}
}

func (c *client) configured() error {
	if c.cfg.APIKey == "" || c.cfg.BaseURL == "" {
		return errs.NewCredentialsMissingError(c.cfg.Name, c.cfg.KeySetting)
	}
	return nil
}

// do sends one request and decodes a 2xx JSON answer into out.
func (c *client) do(ctx context.Context, operation, method, path string, in, out any) (err error) {
	if err := c.configured(); err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "carrier."+operation, trace.WithAttributes(
		attribute.String("provider", c.cfg.Name),
		attribute.String("http.method", method),
	))
	defer func() {
		result := "ok"
		switch {
		case errors.Is(err, errs.ErrProviderTransient):
			result = "transient"
		case err != nil:
			result = "failed"
		}
		metrics.ProviderCallsTotal.WithLabelValues(c.cfg.Name, operation, result).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return errs.NewProviderFailedError(c.cfg.Name, operation, 0, err.Error())
	}
	req.Header.Set(c.cfg.AuthHeader, c.cfg.AuthPrefix+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.NewProviderTransientError(c.cfg.Name, operation, 0, "", transportCause(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errs.NewProviderTransientError(c.cfg.Name, operation, resp.StatusCode, "", transportCause(err))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return errs.NewProviderTransientError(c.cfg.Name, operation, resp.StatusCode, string(raw), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errs.NewProviderFailedError(c.cfg.Name, operation, resp.StatusCode, string(raw))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.NewProviderFailedError(c.cfg.Name, operation, resp.StatusCode, string(raw))
	}
	return nil
}

// transportCause keeps the timeout visible in the error chain.
func transportCause(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("timeout: %w", err)
	}
	return err
}
