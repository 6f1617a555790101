package channelengine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/orderpulse/ordersbff/internal/config"
	"github.com/orderpulse/ordersbff/internal/metrics"
	"github.com/orderpulse/ordersbff/internal/result"
)

// Sender is the boundary the order service talks to. out, when non-nil, is
// the JSON decoding target for a successful response body.
type Sender interface {
	Send(ctx context.Context, req *Request, out interface{}) result.Outcome[result.Unit]
}

type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	governor   *Governor
	retry      config.RetryConfig
	metrics    *metrics.Registry
	logger     *zap.Logger
}

// NewClient creates a new ChannelEngine REST client
func NewClient(cfg config.ChannelEngineConfig, reg *metrics.Registry, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/") + "/")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ChannelEngine base URL %q", cfg.BaseURL)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("ChannelEngine base URL %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		governor: NewGovernor(cfg.RateLimit),
		retry:    cfg.Retry,
		metrics:  reg,
		logger:   logger.With(zap.String("component", "ChannelEngineClient")),
	}, nil
}

// Execute sends req and decodes a successful body into T.
func Execute[T any](ctx context.Context, s Sender, req *Request) result.Outcome[T] {
	var data T
	o := s.Send(ctx, req, &data)
	if !o.IsSuccess() {
		return result.Propagate[T](o)
	}
	return result.Success(data)
}

// ExecuteNoContent sends req and ignores any successful body.
func ExecuteNoContent(ctx context.Context, s Sender, req *Request) result.Outcome[result.Unit] {
	return s.Send(ctx, req, nil)
}

// Send runs req through the resilience pipeline and converts the final
// result into an Outcome. It never returns an error.
func (c *Client) Send(ctx context.Context, req *Request, out interface{}) result.Outcome[result.Unit] {
	body, err := c.sendWithThrottleRetry(ctx, req)
	if err == nil && out != nil {
		if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
			err = &DecodeError{Err: decodeErr, Body: body}
		}
	}
	if err != nil {
		return c.failure(req, err)
	}
	return result.Success(result.Unit{})
}

// sendWithThrottleRetry retries governor rejections, upstream 429s and
// exhausted transport faults until the call succeeds, fails otherwise, or
// ctx is done.
func (c *Client) sendWithThrottleRetry(ctx context.Context, req *Request) ([]byte, error) {
	for retries := 0; ; retries++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.sendWithTransientRetry(ctx, req)
		if err == nil {
			return body, nil
		}

		wait, ok := c.throttleWait(err)
		if !ok {
			return nil, err
		}
		if limit := c.retry.ThrottleMaxAttempts; limit > 0 && retries >= limit {
			return nil, err
		}

		c.metrics.UpstreamRetries.WithLabelValues(metrics.LayerThrottle).Inc()
		c.logger.Warn("Upstream call throttled, waiting before retry",
			zap.String("method", req.Method),
			zap.String("path", req.Path()),
			zap.Int("attempt", retries+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (c *Client) throttleWait(err error) (time.Duration, bool) {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		if rateErr.HasHint {
			return rateErr.RetryAfter, true
		}
		return c.retry.ThrottleWait, true
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return c.retry.ThrottleWait, true
	}
	return 0, false
}

// sendWithTransientRetry retries transport faults and upstream 5xx up to
// TransientAttempts times, waiting 2^n backoff units before retry n.
func (c *Client) sendWithTransientRetry(ctx context.Context, req *Request) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, err := c.attempt(ctx, req)
		if err == nil || !isTransient(err) || attempt >= c.retry.TransientAttempts {
			return body, err
		}

		wait := transientBackoff(c.retry.BackoffUnit, attempt+1)
		c.metrics.UpstreamRetries.WithLabelValues(metrics.LayerTransient).Inc()
		c.logger.Warn("Transient upstream fault, backing off",
			zap.String("method", req.Method),
			zap.String("path", req.Path()),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.retry.TransientAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func isTransient(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode >= http.StatusInternalServerError
}

// attempt performs exactly one governed HTTP exchange.
func (c *Client) attempt(ctx context.Context, req *Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ok, retryAfter := c.governor.Admit(); !ok {
		c.metrics.RateLimitRejections.Inc()
		return nil, &RateLimitError{Source: "governor", RetryAfter: retryAfter, HasHint: retryAfter > 0}
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.UpstreamLatencySec.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.metrics.UpstreamRequests.WithLabelValues(req.Method, "error").Inc()
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.metrics.UpstreamRequests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Err: errors.Wrap(err, "failed to read response")}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, hasHint := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return nil, &RateLimitError{Source: "upstream", RetryAfter: retryAfter, HasHint: hasHint}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	c.logger.Debug("Upstream call succeeded",
		zap.String("method", req.Method),
		zap.String("path", req.Path()),
		zap.Int("status", resp.StatusCode),
	)
	return body, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	ref, err := url.Parse(req.Path())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request path")
	}
	target := c.baseURL.ResolveReference(ref)

	query := url.Values{}
	for k, vs := range req.Query {
		query[k] = append([]string(nil), vs...)
	}
	query.Set("apikey", c.apiKey)
	target.RawQuery = query.Encode()

	var body io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// failure is the single place where faults become Outcomes.
func (c *Client) failure(req *Request, err error) result.Outcome[result.Unit] {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.Path()),
		zap.Error(err),
	}

	var (
		statusErr    *StatusError
		rateErr      *RateLimitError
		transportErr *TransportError
		decodeErr    *DecodeError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.logger.Warn("Upstream call canceled", fields...)
		return result.FailureText[result.Unit](StatusClientClosedRequest, "request canceled")
	case errors.As(err, &statusErr):
		c.logger.Error("Upstream returned an error status", append(fields, zap.Int("status", statusErr.StatusCode))...)
		return result.Failure[result.Unit](statusErr.StatusCode, parseErrorEntries(statusErr.Body)...)
	case errors.As(err, &rateErr):
		c.logger.Error("Upstream call rate limited", fields...)
		return result.FailureText[result.Unit](http.StatusTooManyRequests, "rate limit exceeded")
	case errors.As(err, &transportErr):
		c.logger.Error("Upstream unreachable", fields...)
		return result.FailureText[result.Unit](http.StatusInternalServerError, transportErr.Error())
	case errors.As(err, &decodeErr):
		c.logger.Error("Failed to deserialize upstream response", fields...)
		return result.FailureText[result.Unit](http.StatusInternalServerError, decodeErr.Error())
	default:
		c.logger.Error("Upstream call failed", fields...)
		return result.FailureText[result.Unit](http.StatusInternalServerError, err.Error())
	}
}

// errorEnvelope is the upstream's failure body.
type errorEnvelope struct {
	Success   bool                `json:"success"`
	Errors    []result.ErrorEntry `json:"errors"`
	ErrorCode int                 `json:"errorCode"`
	Message   string              `json:"message"`
}

// parseErrorEntries relays the upstream's error texts; an unparseable body
// yields no entries.
func parseErrorEntries(body []byte) []result.ErrorEntry {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	if len(env.Errors) == 0 && env.Message != "" {
		return []result.ErrorEntry{{Text: env.Message}}
	}
	return env.Errors
}
