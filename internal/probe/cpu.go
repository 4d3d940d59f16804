package probe

import (
	"context"
	"strconv"
	"strings"
)

// CPUCount reports the number of processing units according to nproc.
// Any failure yields 1.
func CPUCount(ctx context.Context) int {
	out, _, err := commandOutput(ctx, "nproc", nil)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
