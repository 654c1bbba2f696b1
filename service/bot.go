package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"
)

const (
	// DefaultBotReply is used when the webhook answers 2xx but the
	// reply field is missing or empty.
	DefaultBotReply = "I'm here to help! How can I assist you today?"

	// FallbackBotReply is appended instead of an error whenever the
	// webhook is unreachable or answers non-2xx. The send flow never
	// surfaces bot failures to the caller.
	FallbackBotReply = "I'm having trouble connecting right now. Please try again in a moment."
)

// BotClient talks to the reply webhook. The endpoint has no contract
// beyond HTTP request/response: one POST, a JSON reply with the text
// under one of a couple of known fields.
type BotClient struct {
	url    string
	source string
	client *http.Client
}

func NewBotClient(url string) *BotClient {
	return &BotClient{
		url:    url,
		source: "chat-interface",
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewBotClientFromEnv builds the client from BOT_WEBHOOK_URL.
func NewBotClientFromEnv() *BotClient {
	return NewBotClient(os.Getenv("BOT_WEBHOOK_URL"))
}

type botRequest struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

type botResponse struct {
	Output  string `json:"output"`
	Message string `json:"message"`
}

// Reply sends the user's message and returns the bot's answer. It
// never returns an error: any failure degrades to FallbackBotReply so
// a send is never left pending on the bot.
func (c *BotClient) Reply(ctx context.Context, message string) string {
	payload, err := json.Marshal(botRequest{
		Message:   message,
		Sender:    "user",
		Timestamp: time.Now().Format(time.RFC3339),
		Source:    c.source,
	})
	if err != nil {
		return FallbackBotReply
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(payload))
	if err != nil {
		return FallbackBotReply
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return FallbackBotReply
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return FallbackBotReply
	}

	var reply botResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return FallbackBotReply
	}
	if reply.Output != "" {
		return reply.Output
	}
	if reply.Message != "" {
		return reply.Message
	}
	return DefaultBotReply
}
