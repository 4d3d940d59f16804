package launcher

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Close shuts the browser down and removes its profile. It asks the browser
// to close, gives it Grace to exit, then kills the browser and every
// descendant still alive. Errors are logged at debug level and dropped.
func (s *Session) Close() {
	s.closeOnce.Do(s.close)
}

func (s *Session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := s.logger
	if logger == nil {
		logger = Options{}.logger()
	}

	// Children are re-parented once the root exits, so take the snapshot first.
	tree := processTree(ctx, s.pid)

	if s.cancelBrowser != nil {
		s.cancelBrowser()
	}
	waitExit(ctx, tree, s.grace)
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}

	killed := killRemaining(ctx, tree)
	if killed > 0 {
		logger.WithField("count", killed).Debug("killed leftover browser processes")
	}

	if s.ProfileDir != "" {
		if err := os.RemoveAll(s.ProfileDir); err != nil {
			logger.WithError(err).Debug("failed to remove profile dir")
		}
	}
}

// processTree returns pid and all its descendants, parents before children.
func processTree(ctx context.Context, pid int) []*process.Process {
	if pid <= 0 {
		return nil
	}
	root, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil
	}
	tree := []*process.Process{root}
	for i := 0; i < len(tree); i++ {
		children, err := tree[i].ChildrenWithContext(ctx)
		if err != nil {
			continue
		}
		tree = append(tree, children...)
	}
	return tree
}

func waitExit(ctx context.Context, tree []*process.Process, grace time.Duration) {
	if len(tree) == 0 {
		return
	}
	if grace <= 0 {
		grace = defaultGrace
	}
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !alive(ctx, tree[0]) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// killRemaining kills the processes in tree that are still running,
// deepest first, and reports how many it signalled.
func killRemaining(ctx context.Context, tree []*process.Process) int {
	killed := 0
	for i := len(tree) - 1; i >= 0; i-- {
		p := tree[i]
		if !alive(ctx, p) {
			continue
		}
		if err := p.KillWithContext(ctx); err == nil {
			killed++
		}
	}
	return killed
}

func alive(ctx context.Context, p *process.Process) bool {
	running, err := p.IsRunningWithContext(ctx)
	if err != nil || !running {
		return false
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		return true
	}
	for _, st := range status {
		if st == process.Zombie {
			return false
		}
	}
	return true
}
