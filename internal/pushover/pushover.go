package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"monalert/internal/model"
	"monalert/internal/providers/common"
)

const (
	DefaultURL = "https://api.pushover.net/1/messages.json"

	statusAccepted = 1
	provider       = "pushover"
)

type Sender struct {
	token  string
	user   string
	device string

	client *http.Client
	url    string
}

func NewSender(client *http.Client, token, user, device string) *Sender {
	return &Sender{token: token, user: user, device: device, client: client, url: DefaultURL}
}

// WithURL points the sender at another endpoint.
func (s *Sender) WithURL(u string) *Sender {
	s.url = u
	return s
}

type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// Send posts the notification and succeeds only when Pushover answers with
// status 1.
func (s *Sender) Send(ctx context.Context, n model.Notification) error {
	form := url.Values{
		"token":   {s.token},
		"user":    {s.user},
		"device":  {s.device},
		"message": {n.Message},
	}
	if n.Title != "" {
		form.Set("title", n.Title)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", common.BrowserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrNotificationDelivery, provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %w", model.ErrNotificationDelivery, provider, err)
	}

	// An undecodable body leaves status at zero; the raw body is what gets reported.
	var parsed pushoverResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || parsed.Status != statusAccepted {
		return &model.DeliveryError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return nil
}
