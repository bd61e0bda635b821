package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"VixPull/internal/model"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "http://vixcentral.com"

	historicalPath = "/ajax_historical"

	// Raw bodies the endpoint sends instead of data. Both are JSON string literals.
	protectionMarker = `"hello historical"`
	errorMarker      = `"error"`

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"
)

// VixCentralOptions configures the vixcentral.com fetcher.
type VixCentralOptions struct {
	BaseURL          string
	Proxy            string
	Timeout          time.Duration // zero means no timeout
	CloudflareBypass bool
}

// VixCentralFetcher implements Fetcher against vixcentral.com's historical AJAX endpoint.
type VixCentralFetcher struct {
	BaseURL string
	Client  *resty.Client
	Now     func() time.Time
}

// NewVixCentralFetcher creates a fetcher with optional proxy, timeout and Cloudflare bypass.
func NewVixCentralFetcher(opts VixCentralOptions) (*VixCentralFetcher, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	// Cookies are handed to every request explicitly; the client must not keep its own.
	client.SetCookieJar(nil)
	client.SetLogger(logrus.WithField("component", "resty"))
	client.SetHeader("User-Agent", userAgent)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	return &VixCentralFetcher{
		BaseURL: baseURL,
		Client:  client,
		Now:     time.Now,
	}, nil
}

func (f *VixCentralFetcher) Name() string { return "vixcentral" }

// FetchCookies requests the site root and returns the cookies it sets.
func (f *VixCentralFetcher) FetchCookies(ctx context.Context) (Cookies, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		return nil, fmt.Errorf("vixcentral root: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		logrus.WithField("status", resp.StatusCode()).Warn("vixcentral root did not answer 200, continuing without cookies")
		return nil, nil
	}

	cookies := make(Cookies)
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	logrus.WithField("count", len(cookies)).Debug("session cookies obtained")
	return cookies, nil
}

// FetchDay requests one day of historical data.
func (f *VixCentralFetcher) FetchDay(ctx context.Context, day string, cookies Cookies) (model.DayRecord, error) {
	// cache-buster only
	stamp := strconv.FormatInt(f.Now().UnixMilli(), 10)

	req := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"n1": day,
			"_":  stamp,
		}).
		SetHeaders(map[string]string{
			"Accept":           "application/json, text/javascript, */*; q=0.01",
			"Accept-Language":  "en-US,en;q=0.9",
			"Referer":          f.BaseURL + "/",
			"X-Requested-With": "XMLHttpRequest",
		})
	for name, value := range cookies {
		req.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := req.Get(historicalPath)
	if err != nil {
		return nil, fmt.Errorf("vixcentral historical: %w", err)
	}
	rec, err := parseDayBody(day, resp.Body())
	if err != nil && resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode(), err)
	}
	return rec, err
}

// parseDayBody dispatches on the raw body and prepends day to the result.
func parseDayBody(day string, body []byte) (model.DayRecord, error) {
	switch string(bytes.TrimSpace(body)) {
	case protectionMarker:
		return nil, ErrProtectionHit
	case errorMarker:
		return model.NewDayRecord(day, model.ErrorToken), nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields []any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode body: null response")
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return nil, fmt.Errorf("decode body: trailing data after JSON array")
	}
	return model.NewDayRecord(day, fields...), nil
}
