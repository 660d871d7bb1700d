// Package fetch wraps an explicitly constructed HTTP client with the headers
// and limits the portal expects. Nothing here is global: every caller gets a
// client value with its own jar and timeout.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// MaxHops caps redirect chains, matching the portal's worst observed depth.
const MaxHops = 15

// Client is an HTTP client preconfigured for the finance portal: cookie jar
// (the form pages are session-stateful), browser User-Agent, bounded
// redirects.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient builds a Client. A zero timeout leaves the cutoff to the
// caller's context deadline.
func NewClient(userAgent string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives: true,
				MaxIdleConns:      0,
			},
			Jar:     jar,
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxHops {
					return fmt.Errorf("stopped after %d redirects", MaxHops)
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

func (c *Client) prepare(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// Get issues a GET with the portal headers applied.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	c.prepare(req)
	return c.http.Do(req)
}

// Head issues a HEAD with the portal headers applied.
func (c *Client) Head(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}
	c.prepare(req)
	return c.http.Do(req)
}

// PostForm issues a form POST with the portal headers applied.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	c.prepare(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.http.Do(req)
}

// GetHTML fetches a page and returns its body decoded to UTF-8. Non-200
// responses are errors.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return DecodeBody(resp.Body, resp.Header.Get("Content-Type"))
}

// DecodeBody reads a response body as UTF-8 regardless of the declared
// charset; the portal serves both English and Gujarati pages.
func DecodeBody(body io.Reader, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(body, contentType)
	if err != nil {
		utf8Reader = body
	}
	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
