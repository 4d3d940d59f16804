package launcher

var (
	braveBinaries = []string{
		"/usr/bin/brave",
		"/usr/bin/brave-browser",
		"/usr/bin/brave-browser-stable",
		"/opt/brave.com/brave/brave",
		"/snap/bin/brave",
	}
	chromeBinaries = []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
	}
)

// Candidates returns browser binaries in launch order. Brave is tried first
// on machines with more than threshold cores, Chrome/Chromium otherwise.
// Preferred paths go in front of both families; duplicates are dropped.
func Candidates(cpus, threshold int, preferred ...string) []string {
	first, second := chromeBinaries, braveBinaries
	if cpus > threshold {
		first, second = braveBinaries, chromeBinaries
	}

	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{preferred, first, second} {
		for _, p := range group {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
