package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

const testCookie = "_intra_42_session_production"

func stubBrowser(t *testing.T, cookies func(call int) []*network.Cookie) (*int32, *string) {
	t.Helper()
	oldNavigate := navigateFn
	oldGetCookies := getCookiesFn
	t.Cleanup(func() {
		navigateFn = oldNavigate
		getCookiesFn = oldGetCookies
	})

	var navigated string
	var calls int32
	navigateFn = func(ctx context.Context, url string) error {
		navigated = url
		return nil
	}
	getCookiesFn = func(ctx context.Context, url string) ([]*network.Cookie, error) {
		n := atomic.AddInt32(&calls, 1)
		return cookies(int(n)), nil
	}
	return &calls, &navigated
}

func TestCaptureWaitsForCookie(t *testing.T) {
	calls, navigated := stubBrowser(t, func(call int) []*network.Cookie {
		if call < 3 {
			return []*network.Cookie{{Name: "_ga", Value: "x"}}
		}
		return []*network.Cookie{
			{Name: "_ga", Value: "x"},
			{Name: testCookie, Value: "first", Domain: ".intra.42.fr", Path: "/"},
			{Name: testCookie, Value: "second"},
		}
	})

	c, err := Capture(context.Background(), Options{
		URL:          "https://profile.intra.42.fr/",
		CookieName:   testCookie,
		Timeout:      5 * time.Second,
		PollInterval: 5 * time.Millisecond,
		Settle:       5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if c.Value != "first" || c.Domain != ".intra.42.fr" {
		t.Fatalf("unexpected cookie: %#v", c)
	}
	if *navigated != "https://profile.intra.42.fr/" {
		t.Fatalf("unexpected navigation: %q", *navigated)
	}
	if got := atomic.LoadInt32(calls); got != 4 {
		t.Fatalf("expected 3 polls plus final read, got %d", got)
	}
}

func TestCaptureTimesOut(t *testing.T) {
	stubBrowser(t, func(call int) []*network.Cookie { return nil })

	start := time.Now()
	_, err := Capture(context.Background(), Options{
		CookieName:   testCookie,
		Timeout:      50 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})
	if !errors.Is(err, ErrLoginTimeout) {
		t.Fatalf("expected ErrLoginTimeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout took too long: %s", time.Since(start))
	}
}

func TestCaptureCookieVanishesAfterSettle(t *testing.T) {
	stubBrowser(t, func(call int) []*network.Cookie {
		if call == 1 {
			return []*network.Cookie{{Name: testCookie, Value: "v"}}
		}
		return nil
	})

	_, err := Capture(context.Background(), Options{
		CookieName:   testCookie,
		Timeout:      time.Second,
		PollInterval: time.Millisecond,
	})
	if !errors.Is(err, ErrCookieNotFound) {
		t.Fatalf("expected ErrCookieNotFound, got %v", err)
	}
}

func TestCaptureIgnoresEmptyValue(t *testing.T) {
	stubBrowser(t, func(call int) []*network.Cookie {
		return []*network.Cookie{{Name: testCookie, Value: ""}}
	})

	_, err := Capture(context.Background(), Options{
		CookieName:   testCookie,
		Timeout:      30 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	if !errors.Is(err, ErrLoginTimeout) {
		t.Fatalf("expected ErrLoginTimeout, got %v", err)
	}
}

func TestCaptureHonoursCancellation(t *testing.T) {
	stubBrowser(t, func(call int) []*network.Cookie { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := Capture(ctx, Options{
		CookieName:   testCookie,
		Timeout:      time.Minute,
		PollInterval: 5 * time.Millisecond,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCaptureSkipsNavigation(t *testing.T) {
	_, navigated := stubBrowser(t, func(call int) []*network.Cookie {
		return []*network.Cookie{{Name: testCookie, Value: "v"}}
	})

	c, err := Capture(context.Background(), Options{
		URL:        "https://profile.intra.42.fr/",
		CookieName: testCookie,
		NoNavigate: true,
	})
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if c.Value != "v" {
		t.Fatalf("unexpected value %q", c.Value)
	}
	if *navigated != "" {
		t.Fatalf("navigation should be skipped, got %q", *navigated)
	}
}
