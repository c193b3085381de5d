// Package llm provides the single-attempt client used to talk to
// text-generation providers, plus the strict response decoding and error
// taxonomy shared by every pipeline stage.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"ideaunpack/config"
	"ideaunpack/internal/logging"
	"ideaunpack/providers"
)

// Generator is the contract every pipeline stage depends on: one prompt in,
// raw text out, a distinguishable failure otherwise. Client implements it;
// tests substitute scripted fakes.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}

// GenerateOption customizes a single Generate call.
type GenerateOption func(*generateSettings)

type generateSettings struct {
	systemPrompt   string
	maxOutputWords int
}

// WithSystemPrompt attaches a role/system instruction to the call.
func WithSystemPrompt(system string) GenerateOption {
	return func(s *generateSettings) {
		s.systemPrompt = system
	}
}

// WithMaxOutputWords converts a word ceiling into the provider's
// maximum-output-length option. Providers without such an option ignore it.
func WithMaxOutputWords(words int) GenerateOption {
	return func(s *generateSettings) {
		s.maxOutputWords = words
	}
}

// Client is a single-attempt HTTP client over one provider. It performs no
// retries: a failed call propagates to the caller, which decides whether
// the overall flow aborts.
type Client struct {
	provider  providers.Provider
	client    *http.Client
	limiter   *rate.Limiter
	estimator *TokenEstimator
	logger    logging.Logger
	options   map[string]any
}

// NewClient creates a client for the given provider, taking timeout,
// sampling, and pacing defaults from the session configuration.
func NewClient(cfg *config.Config, logger logging.Logger, provider providers.Provider) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	return &Client{
		provider: provider,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  limiter,
		logger:   logger,
		options: map[string]any{
			providers.OptionTemperature: cfg.Temperature,
		},
	}
}

// SetTokenEstimator attaches an optional estimator used for advisory
// prompt-token logging. A client without one still works.
func (c *Client) SetTokenEstimator(estimator *TokenEstimator) {
	c.estimator = estimator
}

// Name returns the underlying provider's name.
func (c *Client) Name() string {
	return c.provider.Name()
}

// SetOption sets a default provider option applied to every call.
func (c *Client) SetOption(key string, value any) {
	c.options[key] = value
	c.logger.Debug("option set", "provider", c.provider.Name(), "key", key, "value", value)
}

// Generate sends one prompt to the provider and returns its raw text
// response. Non-2xx statuses, transport failures, and undecodable provider
// payloads all surface as ErrorTypeService.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	var settings generateSettings
	for _, opt := range opts {
		opt(&settings)
	}

	options := make(map[string]any, len(c.options)+2)
	for k, v := range c.options {
		options[k] = v
	}
	if settings.systemPrompt != "" {
		options[providers.OptionSystemPrompt] = settings.systemPrompt
	}
	if settings.maxOutputWords > 0 {
		options[providers.OptionMaxTokens] = OutputTokenBudget(settings.maxOutputWords)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", NewError(ErrorTypeRequest, "rate limiter wait canceled", err)
		}
	}

	if c.estimator != nil {
		c.logger.Debug("sending prompt",
			"provider", c.provider.Name(), "prompt_tokens", c.estimator.Count(prompt))
	}

	reqBody, err := c.provider.PrepareRequest(prompt, options)
	if err != nil {
		return "", NewError(ErrorTypeRequest, "failed to prepare request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return "", NewError(ErrorTypeRequest, "failed to create request", err)
	}
	for k, v := range c.provider.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", NewError(ErrorTypeService, "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(ErrorTypeService, "failed to read response body", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("API error",
			"provider", c.provider.Name(), "status", resp.StatusCode, "body", string(body))
		return "", NewError(ErrorTypeService, fmt.Sprintf("API error: status code %d", resp.StatusCode), nil)
	}

	result, err := c.provider.ParseResponse(body)
	if err != nil {
		return "", NewError(ErrorTypeService, "failed to parse provider response", err)
	}

	c.logger.Debug("text generated", "provider", c.provider.Name(), "chars", len(result))
	return result, nil
}
