package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osa911/portfolio/internal/email"
)

const defaultTelegramAPIURL = "https://api.telegram.org"

// TelegramService mirrors contact notifications into a Telegram chat
type TelegramService struct {
	botToken string
	chatID   string
	apiURL   string
	client   *http.Client
}

// NewTelegramService creates a new Telegram service. apiURL may be empty.
func NewTelegramService(botToken, chatID, apiURL string) *TelegramService {
	if apiURL == "" {
		apiURL = defaultTelegramAPIURL
	}
	return &TelegramService{
		botToken: botToken,
		chatID:   chatID,
		apiURL:   strings.TrimRight(apiURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether both the bot token and chat id are set
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.chatID != ""
}

// telegramMessage represents a Telegram API message
type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendNotification posts n to the configured chat
func (s *TelegramService) SendNotification(ctx context.Context, n email.Notification) error {
	if !s.Enabled() {
		return fmt.Errorf("telegram bot token or chat ID not configured")
	}

	payload := telegramMessage{
		ChatID:    s.chatID,
		Text:      formatTelegram(n),
		ParseMode: "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of logs
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// formatTelegram renders n in Telegram's HTML subset
func formatTelegram(n email.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 <b>%s</b>\n\n", html.EscapeString(n.Title))
	for _, f := range n.Fields {
		if f.Multiline {
			fmt.Fprintf(&b, "<b>%s:</b>\n%s\n", html.EscapeString(f.Label), html.EscapeString(f.Value))
			continue
		}
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", html.EscapeString(f.Label), html.EscapeString(f.Value))
	}
	fmt.Fprintf(&b, "\n<i>%s · %s</i>", html.EscapeString(n.MessageID), html.EscapeString(n.Timestamp))
	return b.String()
}
