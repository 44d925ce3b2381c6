package llm

import (
	"context"
	"encoding/json"
	"time"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// Client is the analyzer-facing entry point: provider selection, an
// optional shared rate limiter, and a bounded retry policy for transient
// statuses (spec §5's "retries are at the analyzer layer only" rule lives
// here, not in correlate/aggregate).
type Client struct {
	backend     StructuredClient
	rateLimiter *RateLimiter
	maxRetries  int
	timeout     time.Duration
	log         *logging.Logger
}

// Config configures Client construction; it mirrors config.LLMConfig so
// callers can pass that struct's fields directly.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RedisAddr  string
	RPM        int64
}

// NewClientWithBackend builds a Client around an already-constructed
// backend, bypassing provider selection and rate limiting. Used by
// analyzer tests to inject a fake StructuredClient.
func NewClientWithBackend(backend StructuredClient, maxRetries int) *Client {
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &Client{
		backend:    backend,
		maxRetries: maxRetries,
		timeout:    60 * time.Second,
		log:        logging.With("component", "llm"),
	}
}

// NewClient selects a backend by cfg.Provider and wires an optional Redis
// rate limiter (skipped when RedisAddr is empty — useful for tests and
// single-shot CLI runs).
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var backend StructuredClient
	switch Provider(cfg.Provider) {
	case ProviderGemini:
		gc, err := newGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, evierrors.LLMUnavailableErr(err, "initialize gemini client")
		}
		backend = gc
	case ProviderOpenAIChat:
		backend = newOpenAIChatClient(cfg.APIKey, cfg.Model)
	default:
		backend = newOpenAIResponsesClient(cfg.APIKey, cfg.Model)
	}

	c := &Client{
		backend:    backend,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
		log:        logging.With("component", "llm"),
	}
	if c.maxRetries <= 0 {
		c.maxRetries = 2
	}
	if c.timeout <= 0 {
		c.timeout = 60 * time.Second
	}

	if cfg.RedisAddr != "" {
		rl, err := NewRateLimiter(cfg.RedisAddr, "evitool:"+cfg.Provider, cfg.RPM)
		if err != nil {
			return nil, evierrors.LLMUnavailableErr(err, "initialize rate limiter")
		}
		c.rateLimiter = rl
	}

	return c, nil
}

// Complete issues req, enforcing the per-request timeout, the rate
// limiter (if configured), and a bounded retry policy that applies to
// backend call errors and the transient `incomplete` status — refusals
// and schema-validation failures are never retried.
func (c *Client) Complete(ctx context.Context, req Request) (Result, error) {
	if req.Temperature != 0 {
		c.log.Warn("non-zero temperature requested; determinism is not guaranteed", "temperature", req.Temperature)
	}

	var last Result
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, evierrors.CancelRequestedErr()
		}

		if c.rateLimiter != nil {
			estimatedTokens := int64(len(req.Prompt) / 4)
			if err := c.rateLimiter.CheckAndIncrementWithRetry(ctx, estimatedTokens); err != nil {
				return Result{}, evierrors.LLMUnavailableErr(err, "rate limiter")
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		result, err := c.backend.Complete(callCtx, req)
		cancel()

		if err != nil {
			if attempt < c.maxRetries {
				c.log.Warn("llm call failed, retrying", "attempt", attempt, "error", err)
				continue
			}
			return Result{}, evierrors.LLMUnavailableErr(err, "structured completion")
		}

		last = result
		if result.Status == schema.LLMIncomplete && attempt < c.maxRetries {
			c.log.Warn("llm returned incomplete status, retrying", "attempt", attempt)
			continue
		}
		break
	}

	return last, nil
}

// Close releases the rate limiter's Redis connection, if one was opened.
// Safe to call on a Client built without RedisAddr set.
func (c *Client) Close() error {
	if c.rateLimiter != nil {
		return c.rateLimiter.Close()
	}
	return nil
}

// ParseInto validates res's status and unmarshals its raw payload into v,
// returning the appropriate closed-taxonomy error for incomplete/refused
// statuses (spec §4.3's error-conditions table).
func ParseInto(res Result, v interface{}) error {
	switch res.Status {
	case schema.LLMIncomplete:
		return evierrors.LLMIncompleteErr("llm returned incomplete status", string(res.Raw))
	case schema.LLMRefused:
		return evierrors.LLMRefusedErr("llm refused to complete the request")
	}
	if err := json.Unmarshal(res.Raw, v); err != nil {
		return evierrors.Wrapf(err, evierrors.SchemaValidation, evierrors.SeverityFatal, "unmarshal llm response")
	}
	return nil
}
