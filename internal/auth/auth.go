package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"intracookie/internal/store"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout      = 600 * time.Second
	defaultPollInterval = 500 * time.Millisecond
	progressEvery       = 30 * time.Second
)

var (
	ErrLoginTimeout   = errors.New("timed out waiting for login")
	ErrCookieNotFound = errors.New("session cookie not found")
)

var (
	navigateFn   = navigate
	getCookiesFn = getCookies
)

type Options struct {
	URL        string
	CookieName string
	// NoNavigate reads cookies from whatever the browser already has open.
	NoNavigate   bool
	Timeout      time.Duration
	PollInterval time.Duration
	// Settle is slept between detecting the cookie and reading its value.
	Settle time.Duration
	Logger *logrus.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.Logger == nil {
		o.Logger = logrus.New()
		o.Logger.SetOutput(io.Discard)
	}
	return o
}

// Capture opens the login page and blocks until the user has logged in,
// then returns the session cookie.
func Capture(ctx context.Context, opts Options) (store.Cookie, error) {
	opts = opts.withDefaults()
	if opts.CookieName == "" {
		return store.Cookie{}, errors.New("cookie name required")
	}

	if !opts.NoNavigate {
		if err := navigateFn(ctx, opts.URL); err != nil {
			return store.Cookie{}, fmt.Errorf("open %s: %w", opts.URL, err)
		}
		opts.Logger.WithField("url", opts.URL).Info("Browser opened. Please log in.")
	}

	if err := waitForCookie(ctx, opts); err != nil {
		return store.Cookie{}, err
	}
	opts.Logger.WithField("cookie", opts.CookieName).Info("Login detected")

	if opts.Settle > 0 {
		select {
		case <-ctx.Done():
			return store.Cookie{}, ctx.Err()
		case <-time.After(opts.Settle):
		}
	}

	cookies, err := getCookiesFn(ctx, opts.URL)
	if err != nil {
		return store.Cookie{}, fmt.Errorf("read cookies: %w", err)
	}
	c, ok := findCookie(cookies, opts.CookieName)
	if !ok {
		return store.Cookie{}, ErrCookieNotFound
	}
	return c, nil
}

func waitForCookie(ctx context.Context, opts Options) error {
	start := time.Now()
	deadline := start.Add(opts.Timeout)
	lastProgress := start
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		cookies, err := getCookiesFn(ctx, opts.URL)
		if err == nil {
			if _, ok := findCookie(cookies, opts.CookieName); ok {
				return nil
			}
		} else {
			opts.Logger.WithError(err).Debug("cookie poll failed")
		}

		now := time.Now()
		if !now.Before(deadline) {
			return fmt.Errorf("%w after %s", ErrLoginTimeout, opts.Timeout)
		}
		if now.Sub(lastProgress) >= progressEvery {
			lastProgress = now
			opts.Logger.WithField("elapsed", now.Sub(start).Round(time.Second)).Info("Still waiting for login...")
		}

		delay := opts.PollInterval
		if remaining := time.Until(deadline); remaining < delay {
			delay = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func navigate(ctx context.Context, url string) error {
	return chromedp.Run(ctx,
		network.Enable(),
		chromedp.Navigate(url),
	)
}

func getCookies(ctx context.Context, url string) ([]*network.Cookie, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cookies []*network.Cookie
	err := chromedp.Run(probeCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			req := network.GetCookies()
			if url != "" {
				req = req.WithUrls([]string{url})
			}
			cookies, err = req.Do(ctx)
			return err
		}),
	)
	return cookies, err
}

// findCookie returns the first cookie with the given name and a non-empty value.
func findCookie(cookies []*network.Cookie, name string) (store.Cookie, bool) {
	for _, c := range cookies {
		if c == nil || c.Name != name {
			continue
		}
		if c.Value == "" {
			return store.Cookie{}, false
		}
		return toStoreCookie(c), true
	}
	return store.Cookie{}, false
}

func toStoreCookie(c *network.Cookie) store.Cookie {
	return store.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  int64(c.Expires),
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: string(c.SameSite),
	}
}
