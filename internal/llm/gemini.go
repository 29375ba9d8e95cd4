package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kartoza/lottery-analyst/internal/config"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/prediction"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 4 << 20

// GeminiClient calls the Gemini generateContent API and converts the
// answer into a typed prediction
type GeminiClient struct {
	cfg        config.PredictionConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGeminiClient creates a client from an explicit configuration.
// Zero fields fall back to config.DefaultPredictionConfig.
func NewGeminiClient(cfg config.PredictionConfig) *GeminiClient {
	defaults := config.DefaultPredictionConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60.0)
	}

	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// IsAvailable reports whether a credential is configured
func (c *GeminiClient) IsAvailable() bool {
	return c.cfg.APIKey != ""
}

// GetModelInfo returns client information safe to show to users
func (c *GeminiClient) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"available":   c.cfg.APIKey != "",
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"timeout":     c.cfg.RequestTimeout.String(),
		"language":    c.cfg.Language,
	}
}

// Predict sends the request to Gemini and returns the validated prediction
func (c *GeminiClient) Predict(ctx context.Context, req prediction.Request) (*prediction.Prediction, error) {
	cfg := c.cfg

	if cfg.APIKey == "" {
		return nil, prediction.ErrMissingCredential
	}
	game, ok := lottery.Lookup(req.Game)
	if !ok {
		return nil, fmt.Errorf("unknown game: %q", req.Game)
	}
	if err := req.Parameters.Validate(); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", prediction.ErrServiceUnavailable, err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: buildPrompt(game, req, cfg.Language)}}}},
		GenerationConfig: generationConfig{
			Temperature:      cfg.Temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   predictionSchema(textFor(cfg.Language).summary),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", cfg.BaseURL, cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", prediction.ErrServiceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", prediction.ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status %d: %s", prediction.ErrMissingCredential, resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("%w: status %d: %s", prediction.ErrServiceUnavailable, resp.StatusCode, msg)
	}

	pred, err := parseResponse(respBody)
	if err != nil {
		return nil, err
	}
	pred.Game = req.Game

	log.WithFields(log.Fields{
		"game":         req.Game,
		"model":        cfg.Model,
		"combinations": len(pred.SuggestedCombinations),
	}).Info("Prediction received")

	return pred, nil
}

// parseResponse extracts the candidate text of a generateContent response
// and decodes it into a validated prediction
func parseResponse(body []byte) (*prediction.Prediction, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not JSON", prediction.ErrMalformedResponse)
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if !text.Exists() || strings.TrimSpace(text.String()) == "" {
		if reason := gjson.GetBytes(body, "promptFeedback.blockReason").String(); reason != "" {
			return nil, fmt.Errorf("%w: prompt blocked: %s", prediction.ErrMalformedResponse, reason)
		}
		if reason := gjson.GetBytes(body, "candidates.0.finishReason").String(); reason != "" {
			return nil, fmt.Errorf("%w: no content, finish reason %s", prediction.ErrMalformedResponse, reason)
		}
		return nil, fmt.Errorf("%w: no candidate text", prediction.ErrMalformedResponse)
	}

	raw := stripCodeFence(text.String())
	var pred prediction.Prediction
	if err := json.Unmarshal([]byte(raw), &pred); err != nil {
		return nil, fmt.Errorf("%w: %v", prediction.ErrMalformedResponse, err)
	}
	if err := pred.Validate(); err != nil {
		return nil, err
	}
	return &pred, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
