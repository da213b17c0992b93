package dmvny

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"monalert/internal/model"
	"monalert/internal/providers/common"
)

const (
	DefaultBaseURL = "https://nysdmvqw.us.qmatic.cloud/qwebbook/rest/schedule"
	defaultReferer = "https://nysdmvqw.us.qmatic.cloud/qwebbook/index.jsp"

	// Manhattan - Lower Manhattan (Financial District).
	DefaultBranch = "8bcc5ca5cad16666ba6f5dd43d15241e172bd511f7e8d6f2e1caa2380b66776a"
	// Exchange Your Out of State License.
	DefaultService = "2cac88e280dfb5f69ecf53ace1a0c00e4d43ba8d14c55a99ee5cb52e824b7389"
)

type Scraper struct {
	client  *http.Client
	base    string
	branch  string
	service string
}

func NewScraper(client *http.Client, base, branch, service string) *Scraper {
	if base == "" {
		base = DefaultBaseURL
	}
	if branch == "" {
		branch = DefaultBranch
	}
	if service == "" {
		service = DefaultService
	}
	return &Scraper{client: client, base: base, branch: branch, service: service}
}

type availableDate struct {
	Date string `json:"date"`
}

// FetchDates returns the available dates in ascending order.
func (s *Scraper) FetchDates(ctx context.Context) ([]time.Time, error) {
	endpoint := fmt.Sprintf("%s/branches/%s/services/%s/dates", s.base, url.PathEscape(s.branch), url.PathEscape(s.service))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", defaultReferer)
	req.Header.Set("User-Agent", common.BrowserUserAgent)

	resp, err := common.Do(s.client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []availableDate
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, common.FormatError("decode available dates: %v", err)
	}

	dates := make([]time.Time, 0, len(payload))
	for _, item := range payload {
		parsed, err := model.ParseDate(item.Date)
		if err != nil {
			return nil, common.FormatError("invalid date %q", item.Date)
		}
		dates = append(dates, parsed)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}
