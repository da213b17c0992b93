package uscis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"monalert/internal/model"
	"monalert/internal/providers/common"
)

const (
	DefaultURL = "https://egov.uscis.gov/casestatus/mycasestatus.do"

	receiptField      = "appReceiptNum"
	statusBlockSelect = ".rows.text-center"
)

type Scraper struct {
	client *http.Client
	url    string
	now    func() time.Time
}

type Option func(*Scraper)

func WithURL(u string) Option {
	return func(s *Scraper) {
		s.url = u
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scraper) {
		s.now = now
	}
}

func NewScraper(client *http.Client, options ...Option) *Scraper {
	s := &Scraper{client: client, url: DefaultURL, now: time.Now}
	for _, option := range options {
		option(s)
	}
	return s
}

// FetchStatus posts the receipt number and extracts the single status block
// from the HTML answer.
func (s *Scraper) FetchStatus(ctx context.Context, receiptNum string) (model.CaseStatus, error) {
	form := url.Values{receiptField: {receiptNum}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return model.CaseStatus{}, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", common.BrowserUserAgent)
	if origin, err := url.Parse(s.url); err == nil {
		req.Header.Set("Origin", origin.Scheme+"://"+origin.Host)
	}
	req.Header.Set("Referer", s.url)

	resp, err := common.Do(s.client, req)
	if err != nil {
		return model.CaseStatus{}, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return model.CaseStatus{}, fmt.Errorf("%w: read case status page: %w", model.ErrSourceUnavailable, err)
	}

	status, description, err := extractStatus(doc)
	if err != nil {
		return model.CaseStatus{}, err
	}

	return model.CaseStatus{
		ObservedAt:  s.now().UTC(),
		ReceiptNum:  receiptNum,
		Status:      status,
		Description: description,
	}, nil
}

func extractStatus(doc *goquery.Document) (string, string, error) {
	blocks := doc.Find(statusBlockSelect)
	if blocks.Length() != 1 {
		return "", "", common.FormatError("expected one status block, found %d", blocks.Length())
	}

	heading := blocks.Find("h1").First()
	paragraph := blocks.Find("p").First()
	if heading.Length() == 0 || paragraph.Length() == 0 {
		return "", "", common.FormatError("status block has no title or description")
	}

	return strings.TrimSpace(heading.Text()), strings.TrimSpace(paragraph.Text()), nil
}
