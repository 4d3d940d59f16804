package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const defaultGrace = time.Second

// ErrNoBrowser is returned when none of the candidates could be started.
var ErrNoBrowser = errors.New("no browser could be launched")

var (
	statFn  = os.Stat
	startFn = startBrowser
)

type Options struct {
	Headless bool
	// Grace is how long Close waits for the browser to exit on its own
	// before killing what is left.
	Grace  time.Duration
	Logger *logrus.Logger
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Session is a running, remote-controlled browser with a throwaway profile.
type Session struct {
	Binary     string
	ProfileDir string

	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	pid           int
	grace         time.Duration
	logger        *logrus.Logger
	closeOnce     sync.Once
}

// Context carries the chromedp target; actions run against it drive the browser.
func (s *Session) Context() context.Context { return s.ctx }

func (s *Session) BinaryPath() string { return s.Binary }

func (s *Session) PID() int { return s.pid }

// Launch starts the first candidate that exists and comes up.
func Launch(ctx context.Context, candidates []string, opts Options) (*Session, error) {
	logger := opts.logger()
	if opts.Grace <= 0 {
		opts.Grace = defaultGrace
	}

	var lastErr error
	for _, binary := range candidates {
		fi, err := statFn(binary)
		if err != nil || fi.IsDir() {
			logger.WithField("binary", binary).Debug("browser candidate not installed")
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir, err := os.MkdirTemp("", "intracookie-profile-*")
		if err != nil {
			lastErr = err
			continue
		}
		session, err := startFn(ctx, binary, dir, opts)
		if err != nil {
			logger.WithError(err).WithField("binary", binary).Warn("browser failed to start")
			_ = os.RemoveAll(dir)
			lastErr = err
			continue
		}
		logger.WithFields(logrus.Fields{
			"binary": binary,
			"pid":    session.pid,
		}).Info("browser started")
		return session, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoBrowser, lastErr)
	}
	return nil, ErrNoBrowser
}

func startBrowser(ctx context.Context, binary, profileDir string, opts Options) (*Session, error) {
	logger := opts.logger()
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(binary),
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", false),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debugf),
		chromedp.WithErrorf(logger.Debugf),
	)

	// An empty Run allocates the browser and attaches to its first tab.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	s := &Session{
		Binary:        binary,
		ProfileDir:    profileDir,
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		grace:         opts.Grace,
		logger:        logger,
	}
	if c := chromedp.FromContext(browserCtx); c != nil && c.Browser != nil {
		if p := c.Browser.Process(); p != nil {
			s.pid = p.Pid
		}
	}
	return s, nil
}
