package intra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"intracookie/internal/store"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL   = "https://profile.intra.42.fr/"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	maxPageBytes     = 4 << 20
)

var ErrNotAuthenticated = errors.New("session cookie is not authenticated")

type HTTPStatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.URL, e.Status)
}

// Client checks captured session cookies against the intra profile page.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string
	Logger    *logrus.Logger
}

func NewClient(httpClient *http.Client, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Client{
		BaseURL:   defaultBaseURL,
		HTTP:      httpClient,
		UserAgent: defaultUserAgent,
		Logger:    logger,
	}
}

// Whoami fetches the profile page with cookie and returns the login it shows.
func (c *Client) Whoami(ctx context.Context, cookie store.Cookie) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	jar, err := JarFromCookies([]store.Cookie{cookie}, base.Hostname())
	if err != nil {
		return "", err
	}
	httpClient := *c.HTTP
	httpClient.Jar = jar

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return "", err
	}
	c.applyHeaders(req)
	c.Logger.WithField("url", req.URL.String()).Debug("verifying session")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrNotAuthenticated
	}
	if resp.StatusCode >= 400 {
		return "", &HTTPStatusError{URL: base.String(), Status: resp.Status, StatusCode: resp.StatusCode}
	}
	if resp.Request != nil && resp.Request.URL != nil && isSignInURL(resp.Request.URL) {
		return "", ErrNotAuthenticated
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	html := string(body)
	if IsSignInPage(html) {
		return "", ErrNotAuthenticated
	}
	return ExtractLogin(html)
}

func (c *Client) applyHeaders(req *http.Request) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	}
}

func isSignInURL(u *url.URL) bool {
	path := strings.ToLower(u.Path)
	return strings.Contains(path, "sign_in") ||
		strings.Contains(path, "/login") ||
		strings.HasPrefix(strings.ToLower(u.Host), "auth.")
}
