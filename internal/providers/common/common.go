package common

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"monalert/internal/model"
)

const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/81.0.4044.138 Safari/537.36"

const snippetLimit = 512

// Do sends req and maps transport failures and non-2xx answers to
// model.ErrSourceUnavailable. The caller closes the body.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", model.ErrSourceUnavailable, req.Method, req.URL.Host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := snippet(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status: %d %s", model.ErrSourceUnavailable, resp.StatusCode, body)
	}

	return resp, nil
}

// FormatError wraps a parsing failure as model.ErrSourceFormat.
func FormatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrSourceFormat, fmt.Sprintf(format, args...))
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, snippetLimit))
	return strings.TrimSpace(string(b))
}
