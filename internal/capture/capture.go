package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"intracookie/internal/auth"
	"intracookie/internal/config"
	"intracookie/internal/debug"
	"intracookie/internal/intra"
	"intracookie/internal/launcher"
	"intracookie/internal/probe"
	"intracookie/internal/store"

	"github.com/sirupsen/logrus"
)

// browserSession is the part of launcher.Session the pipeline drives.
type browserSession interface {
	Context() context.Context
	BinaryPath() string
	Close()
}

var (
	cpuCountFn       = probe.CPUCount
	defaultBrowserFn = probe.DefaultBrowserBinary
	launchFn         = func(ctx context.Context, candidates []string, opts launcher.Options) (browserSession, error) {
		s, err := launcher.Launch(ctx, candidates, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	captureFn = auth.Capture
	traceFn   = debug.Trace
	writeFn   = store.WriteCookieValue
	whoamiFn  = func(ctx context.Context, logger *logrus.Logger, cookie store.Cookie, loginURL string) (string, error) {
		client := intra.NewClient(nil, logger)
		client.BaseURL = loginURL
		return client.Whoami(ctx, cookie)
	}
)

// Runner performs one capture: probe, launch, wait for login, persist, tear down.
type Runner struct {
	Config config.Config
	Logger *logrus.Logger
	// RecordPath, when set, receives a RunRecord describing the run.
	RecordPath string
}

func (r *Runner) logger() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Run returns nil only if the cookie value was written to the output file.
func (r *Runner) Run(ctx context.Context) (err error) {
	cfg := r.Config
	logger := r.logger()
	record := store.RunRecord{StartedAt: time.Now(), OutputPath: cfg.OutputPath}
	defer func() {
		record.FinishedAt = time.Now()
		record.Success = err == nil
		if err != nil {
			record.Error = err.Error()
		}
		r.saveRecord(record)
	}()

	cpus := cpuCountFn(ctx)
	defaultBrowser := defaultBrowserFn(ctx)
	record.CPUs = cpus
	logger.WithFields(logrus.Fields{
		"cpus":            cpus,
		"default_browser": defaultBrowser,
	}).Info("Environment probed")

	preferred := append([]string(nil), cfg.Browsers...)
	if cfg.PreferDefaultBrowser && defaultBrowser != "" {
		preferred = append([]string{defaultBrowser}, preferred...)
	}
	candidates := launcher.Candidates(cpus, cfg.BraveCPUThreshold, preferred...)
	logger.WithField("candidates", strings.Join(candidates, ",")).Debug("Browser candidates")

	session, err := launchFn(ctx, candidates, launcher.Options{Logger: logger})
	if err != nil {
		logger.WithError(err).Error("Error starting browser")
		return err
	}
	defer func() {
		logger.Info("Closing browser...")
		session.Close()
	}()
	record.Browser = session.BinaryPath()

	if cfg.Trace {
		traceFn(session.Context(), logger, traceHost(cfg.LoginURL))
	}

	logger.Info("Waiting for login...")
	cookie, err := captureFn(session.Context(), auth.Options{
		URL:          cfg.LoginURL,
		CookieName:   cfg.CookieName,
		Timeout:      cfg.Timeout(),
		PollInterval: cfg.PollInterval(),
		Settle:       cfg.Settle(),
		Logger:       logger,
	})
	if err != nil {
		if errors.Is(err, auth.ErrLoginTimeout) {
			logger.WithError(err).Error("Session cookie not found")
		} else {
			logger.WithError(err).Error("Error during capture")
		}
		return err
	}

	if err := r.persist(cookie.Value); err != nil {
		return err
	}

	if cfg.Verify {
		login, err := whoamiFn(ctx, logger, cookie, cfg.LoginURL)
		if err != nil {
			logger.WithError(err).Warn("Captured cookie could not be verified")
		} else {
			record.Login = login
			logger.WithField("login", login).Info("Session verified")
		}
	}
	return nil
}

func (r *Runner) persist(value string) error {
	logger := r.logger()
	path := r.Config.OutputPath
	if value == "" {
		return auth.ErrCookieNotFound
	}
	logger.WithFields(logrus.Fields{
		"path":   path,
		"length": len(value),
	}).Info("Writing session cookie")
	if err := writeFn(path, value); err != nil {
		logger.WithError(err).Error("Failed to write cookie file")
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("File written successfully!")
	return nil
}

func (r *Runner) saveRecord(record store.RunRecord) {
	if r.RecordPath == "" {
		return
	}
	if err := store.SaveRunRecord(r.RecordPath, record); err != nil {
		r.logger().WithError(err).Debug("failed to save run record")
	}
}

// traceHost widens the login host to its parent domain so that redirects
// across intra subdomains are traced too.
func traceHost(loginURL string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if parts := strings.Split(host, "."); len(parts) > 2 {
		return strings.Join(parts[1:], ".")
	}
	return host
}
