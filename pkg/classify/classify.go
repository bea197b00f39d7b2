// Package classify labels page text with a zero-shot classification model.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// DefaultEndpoint is the hosted zero-shot model used when no endpoint
// is configured.
const DefaultEndpoint = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"

// Result is the best label for a piece of text.
type Result struct {
	Label string
	Score float64
}

// Classifier assigns one of the candidate labels to text.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (Result, error)
}

// Client is a Classifier backed by a zero-shot inference HTTP API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	endpoint string
	token    string
	logger   *slog.Logger
}

// WithEndpoint overrides the inference endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *config) { c.endpoint = endpoint }
}

// WithToken sets the API bearer token.
func WithToken(token string) Option {
	return func(c *config) { c.token = token }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New creates a zero-shot classification client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{
		endpoint: DefaultEndpoint,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.endpoint == "" {
		return nil, errors.New("classifier endpoint required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   cfg.endpoint,
		token:      cfg.token,
		logger:     cfg.logger,
	}, nil
}

type apiRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters apiParameters `json:"parameters"`
}

type apiParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

// apiResponse holds labels sorted by descending score.
type apiResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify sends text to the inference API and returns the top label.
func (c *Client) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	if text == "" {
		return Result{}, errors.New("empty text")
	}
	if len(labels) == 0 {
		return Result{}, errors.New("no candidate labels")
	}

	payload, err := json.Marshal(apiRequest{
		Inputs:     text,
		Parameters: apiParameters{CandidateLabels: labels},
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return c.post(ctx, payload)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.MaxJitter(time.Second),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.DebugContext(ctx, "retrying classification", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}
	if len(resp.Labels) == 0 || len(resp.Scores) == 0 {
		return Result{}, errors.New("empty classification response")
	}

	result := Result{Label: resp.Labels[0], Score: resp.Scores[0]}
	c.logger.DebugContext(ctx, "classified text", "label", result.Label, "score", result.Score)
	return result, nil
}

type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d from classifier: %s", e.status, e.body)
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // intentional

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httpError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// isRetryable returns true for transient errors. Hosted inference
// endpoints answer 503 while the model is loading.
func isRetryable(err error) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		switch httpErr.status {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
