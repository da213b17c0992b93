package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"monalert/internal/model"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	messageLimit   = 4096
	provider       = "telegram"
)

type Sender struct {
	token    string
	chat     string
	threadID *int

	client  *http.Client
	apiBase string
}

func NewSender(client *http.Client, token, chat string, threadID *int) *Sender {
	return &Sender{
		token:    token,
		chat:     chat,
		threadID: threadID,
		client:   client,
		apiBase:  defaultAPIBase,
	}
}

// WithAPIBase points the sender at another Bot API host.
func (s *Sender) WithAPIBase(base string) *Sender {
	s.apiBase = strings.TrimRight(base, "/")
	return s
}

// Send delivers the notification, split into Telegram sized parts. Every
// part must be accepted.
func (s *Sender) Send(ctx context.Context, n model.Notification) error {
	for _, part := range formatParts(n, messageLimit) {
		if err := s.postMessage(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sender) postMessage(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id":    s.chat,
		"text":       text,
		"parse_mode": "HTML",
	}
	if s.threadID != nil {
		payload["message_thread_id"] = *s.threadID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", model.ErrNotificationDelivery, provider, redact(err.Error(), s.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %w", model.ErrNotificationDelivery, provider, err)
	}

	// An undecodable body leaves ok false; the raw body is what gets reported.
	var parsed telegramResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.OK {
		return &model.DeliveryError{Provider: provider, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return nil
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// formatParts cuts the raw text into parts of at most limit visible runes
// and escapes each part on its own, so no entity or tag spans two messages.
// The bold title leads the first part.
func formatParts(n model.Notification, limit int) []string {
	header := ""
	first := limit
	if n.Title != "" {
		header = fmt.Sprintf("<b>%s</b>\n", html.EscapeString(n.Title))
		first = max(limit-utf8.RuneCountInString(n.Title)-1, 1)
	}

	runes := []rune(n.Message)
	head := min(first, len(runes))
	parts := []string{header + html.EscapeString(string(runes[:head]))}
	if head == len(runes) {
		return parts
	}
	for _, chunk := range splitMessage(string(runes[head:]), limit) {
		parts = append(parts, html.EscapeString(chunk))
	}
	return parts
}

// redact keeps the bot token out of error text; net/http errors embed the URL.
func redact(text, token string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, "***")
}

func splitMessage(message string, limit int) []string {
	runes := []rune(message)
	if len(runes) <= limit {
		return []string{message}
	}

	parts := []string{}
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
