package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/llm"
)

var _ llm.Session = (*Client)(nil)

// Prompt sends text as the next user turn and returns the assistant reply.
// The turn is only added to the history when the call succeeds.
func (c *Client) Prompt(ctx context.Context, text string) (string, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	c.mu.Lock()
	messages := make([]chatMessage, 0, len(c.history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: c.cfg.SystemPrompt})
	messages = append(messages, c.history...)
	c.mu.Unlock()
	messages = append(messages, chatMessage{Role: "user", Content: text})

	c.logger.Info("llm.prompt.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
		"history", len(messages)-2,
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages":    messages,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, c.headers(), c.logger)
	if err != nil {
		c.logger.Error("llm.prompt.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", classify(ctx, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.prompt.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", common.ModelUnavailableError("decode chat completion", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.prompt.no_choices", "req_id", rid, "raw", string(raw))
		return "", common.ModelUnavailableError("no choices in chat completion", nil)
	}
	reply := strings.TrimSpace(cc.Choices[0].Message.Content)

	c.remember(chatMessage{Role: "user", Content: text}, chatMessage{Role: "assistant", Content: reply})

	c.logger.Info("llm.prompt.ok",
		"req_id", rid,
		"reply_len", len(reply),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

// Reset forgets the conversation, as if the session had been recreated.
func (c *Client) Reset() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
	c.logger.Info("llm.session.reset")
}

// Ping checks that the endpoint answers its model listing.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return common.ModelUnavailableError("build ping request", err)
	}
	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("llm.ping.response_body_close_error", "error", err)
		}
	}(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return common.ModelUnavailableError(fmt.Sprintf("model ping returned %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *Client) headers() map[string]string {
	if c.cfg.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

func (c *Client) remember(turn ...chatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, turn...)
	if over := len(c.history) - c.cfg.MaxHistory; over > 0 {
		c.history = append([]chatMessage(nil), c.history[over:]...)
	}
}

// classify maps a transport failure onto the two errors callers act on:
// cancellation is an abort, everything else means the model is unavailable.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return common.AbortedError("chat completion cancelled", err)
	}
	return common.ModelUnavailableError("chat completion failed", err)
}
