package capture

import (
	"context"
	"time"

	"intracookie/internal/auth"
	"intracookie/internal/store"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const DefaultRemoteURL = "http://localhost:9222"

var remoteContextFn = func(ctx context.Context, remoteURL string) (context.Context, context.CancelFunc) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, remoteURL)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// RunAttached reads the session cookie from a browser that is already
// running with remote debugging enabled. The browser is left running.
func (r *Runner) RunAttached(ctx context.Context, remoteURL string) (err error) {
	cfg := r.Config
	logger := r.logger()
	if remoteURL == "" {
		remoteURL = DefaultRemoteURL
	}
	record := store.RunRecord{StartedAt: time.Now(), OutputPath: cfg.OutputPath, Browser: remoteURL}
	defer func() {
		record.FinishedAt = time.Now()
		record.Success = err == nil
		if err != nil {
			record.Error = err.Error()
		}
		r.saveRecord(record)
	}()

	browserCtx, cancel := remoteContextFn(ctx, remoteURL)
	defer cancel()

	logger.WithField("remote", remoteURL).Info("Extracting cookies from running browser...")
	cookie, err := captureFn(browserCtx, auth.Options{
		URL:          cfg.LoginURL,
		CookieName:   cfg.CookieName,
		NoNavigate:   true,
		Timeout:      cfg.Timeout(),
		PollInterval: cfg.PollInterval(),
		Logger:       logger,
	})
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"remote": remoteURL}).Error("Failed to get cookies")
		return err
	}
	return r.persist(cookie.Value)
}
