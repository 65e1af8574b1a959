package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// CredentialFunc returns the current API credential. It is consulted on every
// call: a changed value forces the underlying provider to be rebuilt instead
// of reusing a stale connection.
type CredentialFunc func() string

// ProviderBuilder constructs a provider for the given credential.
type ProviderBuilder func(credential string) (IProvider, error)

type ClientOptions struct {
	Credential      CredentialFunc
	Builder         ProviderBuilder
	EmbedModel      string
	ChatModels      []string
	MaxOutputTokens int
	MaxAttempts     int
	BackoffUnit     time.Duration
	JitterMax       time.Duration
	CallTimeout     time.Duration

	// Sleep and RandFloat are injectable for tests.
	Sleep     func(ctx context.Context, d time.Duration) error
	RandFloat func() float64
}

// Client wraps the two remote inference operations with retry, exponential
// backoff with jitter and ordered model fallback. It holds no state beyond
// connection readiness; it never fabricates data.
type Client struct {
	mu         sync.Mutex
	provider   IProvider
	activeCred string

	credential      CredentialFunc
	builder         ProviderBuilder
	embedModel      string
	chatModels      []string
	maxOutputTokens int
	maxAttempts     int
	backoffUnit     time.Duration
	jitterMax       time.Duration
	callTimeout     time.Duration
	sleep           func(ctx context.Context, d time.Duration) error
	randFloat       func() float64
}

func NewClient(opts ClientOptions) *Client {
	c := &Client{
		credential:      opts.Credential,
		builder:         opts.Builder,
		embedModel:      opts.EmbedModel,
		chatModels:      opts.ChatModels,
		maxOutputTokens: opts.MaxOutputTokens,
		maxAttempts:     opts.MaxAttempts,
		backoffUnit:     opts.BackoffUnit,
		jitterMax:       opts.JitterMax,
		callTimeout:     opts.CallTimeout,
		sleep:           opts.Sleep,
		randFloat:       opts.RandFloat,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 3
	}
	if c.backoffUnit <= 0 {
		c.backoffUnit = time.Second
	}
	if c.jitterMax < 0 {
		c.jitterMax = 0
	}
	if c.jitterMax == 0 {
		c.jitterMax = 500 * time.Millisecond
	}
	if c.sleep == nil {
		c.sleep = sleepCtx
	}
	if c.randFloat == nil {
		c.randFloat = rand.Float64
	}
	return c
}

// ensureProvider lazily builds the provider for the current credential.
// The build happens at most once per distinct credential value.
func (c *Client) ensureProvider() (IProvider, error) {
	cred := ""
	if c.credential != nil {
		cred = strings.TrimSpace(c.credential())
	}
	if cred == "" {
		return nil, ErrNoCredential
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil && c.activeCred == cred {
		return c.provider, nil
	}
	provider, err := c.builder(cred)
	if err != nil {
		return nil, err
	}
	c.provider = provider
	c.activeCred = cred
	return provider, nil
}

// Embed retries on any failure up to the attempt ceiling, waiting
// backoff*2^n plus jitter between attempts. Exhaustion yields
// ErrEmbedUnavailable; the caller must treat that as fatal for the query.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	provider, err := c.ensureProvider()
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoffWait(attempt-1)); err != nil {
				return nil, err
			}
		}
		vec, err := c.callEmbed(ctx, provider, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("embed attempt failed",
			zap.Int("attempt", attempt+1),
			zap.String("class", Classify(err).String()),
			zap.Error(err))
	}
	return nil, fmt.Errorf("%w: %v", ErrEmbedUnavailable, lastErr)
}

// Complete walks the model preference list, most capable first. The fallback
// cascade runs only on the first attempt; later attempts stick to the
// preferred model. Only timeouts and connection failures re-enter the backoff
// loop; anything else propagates immediately.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	provider, err := c.ensureProvider()
	if err != nil {
		return "", err
	}
	if len(c.chatModels) == 0 {
		return "", fmt.Errorf("no chat models configured")
	}
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoffWait(attempt-1)); err != nil {
				return "", err
			}
		}
		models := c.chatModels[:1]
		if attempt == 0 {
			models = c.chatModels
		}
		for _, model := range models {
			text, err := c.callComplete(ctx, provider, model, messages)
			if err == nil {
				return text, nil
			}
			lastErr = err
			logutil.GetLogger(ctx).Warn("completion attempt failed",
				zap.Int("attempt", attempt+1),
				zap.String("model", model),
				zap.String("class", Classify(err).String()),
				zap.Error(err))
		}
		if class := Classify(lastErr); class != FailureTimeout && class != FailureConnection {
			return "", &CompletionError{Class: class, Last: lastErr}
		}
	}
	return "", &CompletionError{Class: Classify(lastErr), Last: lastErr}
}

func (c *Client) callEmbed(ctx context.Context, provider IProvider, text string) ([]float32, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return provider.Embed(ctx, c.embedModel, text)
}

func (c *Client) callComplete(ctx context.Context, provider IProvider, model string, messages []Message) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	text, err := provider.Complete(ctx, model, messages, c.maxOutputTokens)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty completion from %s", model)
	}
	return text, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.callTimeout)
}

func (c *Client) backoffWait(n int) time.Duration {
	wait := c.backoffUnit << uint(n)
	jitter := time.Duration(c.randFloat() * float64(c.jitterMax))
	return wait + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
