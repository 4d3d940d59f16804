package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

const desktopEntrySection = "Desktop Entry"

// wellKnownBrowsers are looked up on PATH when the desktop environment does
// not name a default browser.
var wellKnownBrowsers = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"brave-browser",
	"brave",
}

// DefaultBrowserBinary returns the executable of the desktop's default web
// browser, or the first well-known browser on PATH, or "".
func DefaultBrowserBinary(ctx context.Context) string {
	if bin, err := desktopDefaultBrowser(ctx); err == nil && bin != "" {
		return bin
	}
	for _, name := range wellKnownBrowsers {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func desktopDefaultBrowser(ctx context.Context) (string, error) {
	out, _, err := commandOutput(ctx, "xdg-settings", []string{"get", "default-web-browser"})
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(out)
	if id == "" {
		return "", errors.New("no default browser registered")
	}
	entry, err := findDesktopEntry(id, applicationDirs())
	if err != nil {
		return "", err
	}
	return desktopEntryBinary(entry)
}

// applicationDirs lists the XDG application directories in lookup order.
func applicationDirs() []string {
	var dirs []string
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range filepath.SplitList(dataDirs) {
		if d == "" {
			continue
		}
		dirs = append(dirs, filepath.Join(d, "applications"))
	}
	return dirs
}

func findDesktopEntry(id string, dirs []string) (string, error) {
	if filepath.Base(id) != id {
		return "", errors.New("invalid desktop id")
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, id)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

// desktopEntryBinary resolves the program named by the Exec key of a
// freedesktop desktop entry.
func desktopEntryBinary(path string) (string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return "", err
	}
	sec, err := cfg.GetSection(desktopEntrySection)
	if err != nil {
		return "", err
	}
	if !sec.HasKey("Exec") {
		return "", errors.New("desktop entry has no Exec key")
	}
	prog := execProgram(sec.Key("Exec").String())
	if prog == "" {
		return "", errors.New("empty Exec key")
	}
	if filepath.IsAbs(prog) {
		return prog, nil
	}
	return lookPath(prog)
}

// execProgram extracts the program from an Exec value, skipping an env
// wrapper and its VAR=value assignments.
func execProgram(exec string) string {
	fields := splitExec(exec)
	skipAssignments := false
	for _, f := range fields {
		if filepath.Base(f) == "env" {
			skipAssignments = true
			continue
		}
		if skipAssignments && strings.Contains(f, "=") && !strings.HasPrefix(f, "/") {
			continue
		}
		if strings.HasPrefix(f, "%") {
			continue
		}
		return f
	}
	return ""
}

// splitExec splits an Exec value on whitespace, honouring double quotes.
func splitExec(s string) []string {
	var (
		fields  []string
		cur     strings.Builder
		quoted  bool
		escaped bool
		started bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
			started = true
		case (r == ' ' || r == '\t') && !quoted:
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields
}
