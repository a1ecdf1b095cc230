// Package gateway talks to the hosted chat-completions API behind the
// assistant endpoint. One request, one answer; no streaming and no retry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lalith-99/factorylink/internal/apperr"
	"go.uber.org/zap"
)

// SystemPrompt frames every assistant query.
const SystemPrompt = `You are a helpful AI assistant for ShilpoAI. Answer questions about:
- Job matching and recruitment in garment industry
- Worker skills and qualifications
- Factory management best practices
- Skill assessment and training
- Workforce analytics and predictions

Provide accurate, helpful information based on your knowledge of the garment industry in Bangladesh.`

// maxErrorBody caps how much of an error response is kept for logs.
const maxErrorBody = 4 << 10

type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(zap.String("adapter", "gateway")),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends systemPrompt and query and returns the first choice's
// text. Failures are *apperr.GatewayError; 429 and 402 carry
// apperr.ErrRateLimited and apperr.ErrPaymentRequired as their kind.
func (c *Client) Complete(ctx context.Context, systemPrompt, query string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &apperr.GatewayError{Kind: apperr.ErrGateway, Detail: "AI service not configured"}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gateway: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed", zap.Error(err))
		return "", &apperr.GatewayError{Kind: apperr.ErrGateway, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("gateway error response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", text),
		)
		return "", statusError(resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &apperr.GatewayError{Kind: apperr.ErrGateway, Detail: "decode response: " + err.Error()}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", &apperr.GatewayError{Kind: apperr.ErrGateway, Detail: "no response from AI service"}
	}

	return out.Choices[0].Message.Content, nil
}

func statusError(code int) *apperr.GatewayError {
	switch code {
	case http.StatusTooManyRequests:
		return &apperr.GatewayError{StatusCode: code, Kind: apperr.ErrRateLimited, Detail: "rate limit exceeded"}
	case http.StatusPaymentRequired:
		return &apperr.GatewayError{StatusCode: code, Kind: apperr.ErrPaymentRequired, Detail: "payment required"}
	default:
		return &apperr.GatewayError{StatusCode: code, Kind: apperr.ErrGateway, Detail: "AI service error"}
	}
}
