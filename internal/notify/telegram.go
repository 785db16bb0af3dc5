package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramSender delivers notifications via the Telegram Bot API.
type TelegramSender struct {
	token     string
	chatID    string
	apiBase   string
	parseMode string
	client    *http.Client
}

// TelegramOption customises a TelegramSender.
type TelegramOption func(*TelegramSender)

// WithTelegramAPI overrides the Bot API base URL.
func WithTelegramAPI(base string) TelegramOption {
	return func(t *TelegramSender) { t.apiBase = strings.TrimRight(base, "/") }
}

// WithParseMode sets the sendMessage parse_mode ("Markdown", "HTML").
// Messages are sent as plain text by default because market questions often
// contain characters Markdown would reject.
func WithParseMode(mode string) TelegramOption {
	return func(t *TelegramSender) { t.parseMode = mode }
}

// NewTelegramSender creates a TelegramSender for the given bot token and chat
// ID. It uses a default HTTP client with a 10-second timeout.
func NewTelegramSender(token, chatID string, opts ...TelegramOption) *TelegramSender {
	t := &TelegramSender{
		token:   token,
		chatID:  chatID,
		apiBase: defaultTelegramAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Send posts a message to the configured chat. A non-empty title becomes the
// first line of the text.
func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	text := message
	if title != "" {
		text = title + "\n" + message
	}

	body, err := json.Marshal(telegramMessage{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             t.parseMode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string {
	return "telegram"
}
