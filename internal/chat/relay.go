package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finteach/internal/config"

	"go.uber.org/zap"
)

// FallbackReply is returned whenever the upstream cannot produce an answer.
const FallbackReply = "Sorry, I'm having trouble connecting right now. Please try again later."

var (
	ErrEmptyMessage = errors.New("chat: empty message")
	errNoAPIKey     = errors.New("chat: api key not configured")
	errNoChoices    = errors.New("chat: response has no content")
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 1 << 20

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Relay forwards a single user message to an OpenAI-compatible chat
// completion endpoint. It keeps no conversation history.
type Relay struct {
	cfg        config.ChatConfig
	httpClient *http.Client
	log        *zap.Logger
}

func NewRelay(cfg config.ChatConfig, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = config.DefaultSystemPrompt
	}
	return &Relay{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.Named("chat"),
	}
}

// Ask returns the assistant's reply. Only an empty message is reported as an
// error; every upstream failure is logged and answered with FallbackReply.
func (r *Relay) Ask(ctx context.Context, msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", ErrEmptyMessage
	}

	reply, err := r.complete(ctx, msg)
	if err != nil {
		r.log.Warn("chat completion failed",
			zap.String("model", r.cfg.Model),
			zap.Error(err),
		)
		return FallbackReply, nil
	}
	return reply, nil
}

func (r *Relay) complete(ctx context.Context, msg string) (string, error) {
	if r.cfg.APIKey == "" {
		return "", errNoAPIKey
	}

	body, err := json.Marshal(completionRequest{
		Model: r.cfg.Model,
		Messages: []message{
			{Role: "system", Content: r.cfg.SystemPrompt},
			{Role: "user", Content: msg},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat: failed to encode request: %w", err)
	}

	url := strings.TrimRight(r.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("chat: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("chat: HTTP %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("chat: HTTP %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("chat: failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errNoChoices
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", errNoChoices
	}
	return content, nil
}
