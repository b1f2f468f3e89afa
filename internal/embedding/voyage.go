package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
)

// Client is a Voyage-compatible embeddings client. The model is chosen
// per call so one client can serve a whole fallback list.
type Client struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	retryDelay time.Duration
}

// Config configures the embeddings client. RetryDelay is the fixed
// backoff before the single retry on a transient failure.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Timeout    time.Duration
	RetryDelay time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "VOYAGE_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.voyageai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		client:     &http.Client{Timeout: timeout},
		retryDelay: delay,
	}, nil
}

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed requests one embedding vector. Rate-limit and server errors get a
// single retry after the fixed backoff; the second failure is surfaced.
func (c *Client) Embed(ctx context.Context, model, text string) ([]float64, error) {
	var vector []float64
	err := retry.Do(
		func() error {
			v, err := c.embedOnce(ctx, model, text)
			if err != nil {
				return err
			}
			vector = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func (c *Client) embedOnce(ctx context.Context, model, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Input: []string{text}, Model: model})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: model %s", ErrRateLimited, model)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: %s", errUnavailable, resp.Status)
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings request failed: %s: %s", resp.Status, string(payload))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("model %s returned no embedding", model)
	}
	return out.Data[0].Embedding, nil
}

var errUnavailable = errors.New("embedding service unavailable")

func isTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, errUnavailable)
}
