// Package ai holds the clients for the external AI services: Gemini for
// quiz generation and the farming chat assistant.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// FallbackReply is shown whenever the assistant cannot be reached.
	FallbackReply = "I'm having trouble connecting to my agricultural database. Please check your connection."
	// EmptyReply stands in for a successful response with no text.
	EmptyReply = "I'm here to help you grow your farm. What else can I assist with?"
)

// Assistant talks to the chat endpoint at baseURL + "/chat".
type Assistant struct {
	baseURL string
	client  *http.Client
}

func NewAssistant(baseURL string) *Assistant {
	return &Assistant{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Content  string `json:"content"`
}

// Ask sends message and returns the assistant's reply. It never fails: an
// unreachable, erroring or garbled endpoint yields FallbackReply, and the
// underlying error is returned alongside for logging.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	reply, err := a.ask(ctx, message)
	if err != nil {
		slog.Warn("Assistant request failed", "error", err)
		return FallbackReply, err
	}
	return reply, nil
}

func (a *Assistant) ask(ctx context.Context, message string) (string, error) {
	if a == nil || a.baseURL == "" {
		return "", fmt.Errorf("assistant endpoint not configured")
	}
	payload, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat status: %s, body: %s", resp.Status, string(body))
	}
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	switch {
	case out.Response != "":
		return out.Response, nil
	case out.Content != "":
		return out.Content, nil
	}
	return EmptyReply, nil
}
