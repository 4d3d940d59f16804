package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func stubStart(t *testing.T, fn func(binary, dir string) (*Session, error)) {
	t.Helper()
	old := startFn
	t.Cleanup(func() { startFn = old })
	startFn = func(ctx context.Context, binary, profileDir string, opts Options) (*Session, error) {
		return fn(binary, profileDir)
	}
}

func fakeBinary(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLaunchNoCandidateInstalled(t *testing.T) {
	called := false
	stubStart(t, func(binary, dir string) (*Session, error) {
		called = true
		return nil, errors.New("unexpected start")
	})

	missing := filepath.Join(t.TempDir(), "missing-browser")
	_, err := Launch(context.Background(), []string{missing}, Options{})
	if !errors.Is(err, ErrNoBrowser) {
		t.Fatalf("expected ErrNoBrowser, got %v", err)
	}
	if called {
		t.Fatalf("start must not be attempted for a missing binary")
	}
}

func TestLaunchFallsThroughToNextCandidate(t *testing.T) {
	broken := fakeBinary(t, "brave")
	working := fakeBinary(t, "chromium")

	var attempts []string
	var brokenDir string
	stubStart(t, func(binary, dir string) (*Session, error) {
		attempts = append(attempts, binary)
		if binary == broken {
			brokenDir = dir
			return nil, errors.New("exec format error")
		}
		return &Session{Binary: binary, ProfileDir: dir}, nil
	})

	session, err := Launch(context.Background(), []string{broken, working}, Options{})
	if err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	t.Cleanup(session.Close)

	if session.BinaryPath() != working {
		t.Fatalf("expected %s, got %s", working, session.BinaryPath())
	}
	if len(attempts) != 2 {
		t.Fatalf("expected two attempts, got %v", attempts)
	}
	if _, err := os.Stat(brokenDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("profile dir of failed attempt not removed: %v", err)
	}
}

func TestLaunchAllFailWrapsLastError(t *testing.T) {
	bin := fakeBinary(t, "chrome")
	stubStart(t, func(binary, dir string) (*Session, error) {
		return nil, errors.New("chrome failed to start")
	})

	_, err := Launch(context.Background(), []string{bin}, Options{})
	if !errors.Is(err, ErrNoBrowser) {
		t.Fatalf("expected ErrNoBrowser, got %v", err)
	}
	if !strings.Contains(err.Error(), "chrome failed to start") {
		t.Fatalf("last error not wrapped: %v", err)
	}
}

func TestCloseRemovesProfileDir(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile")
	if err := os.MkdirAll(filepath.Join(profile, "Default"), 0o700); err != nil {
		t.Fatal(err)
	}

	cancelled := 0
	s := &Session{
		ProfileDir:    profile,
		cancelBrowser: func() { cancelled++ },
		cancelAlloc:   func() { cancelled++ },
		grace:         10 * time.Millisecond,
	}
	s.Close()
	s.Close()

	if _, err := os.Stat(profile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("profile dir still present: %v", err)
	}
	if cancelled != 2 {
		t.Fatalf("expected each cancel once, got %d calls", cancelled)
	}
}

func TestCloseKillsProcessTree(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	cmd := exec.Command("sh", "-c", "sleep 30 & sleep 30; wait")
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	ctx := context.Background()
	deadline := time.Now().Add(3 * time.Second)
	var tree []int32
	for time.Now().Before(deadline) {
		procs := processTree(ctx, cmd.Process.Pid)
		if len(procs) >= 3 {
			for _, p := range procs {
				tree = append(tree, p.Pid)
			}
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(tree) < 3 {
		_ = cmd.Process.Kill()
		t.Fatalf("child processes did not appear")
	}

	s := &Session{
		ProfileDir: t.TempDir(),
		pid:        cmd.Process.Pid,
		grace:      50 * time.Millisecond,
	}
	s.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected root process to be killed")
		}
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatalf("root process still running after Close")
	}

	for _, pid := range tree[1:] {
		procs := processTree(ctx, int(pid))
		if len(procs) > 0 && alive(ctx, procs[0]) {
			t.Fatalf("descendant %d still alive", pid)
		}
	}
}
