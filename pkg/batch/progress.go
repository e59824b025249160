// Package batch implements the headless batch protocol: the BATCH_*
// environment configuration, the machine-readable progress lines exchanged
// over standard output, the sequential process-per-run driver and the
// aggregation of per-run summaries.
package batch

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const progressPrefix = "BATCH_PROGRESS"

// Progress stages.
const (
	StageSweep = "SWEEP"
	StageTc    = "TC"
)

// Progress is one decoded progress line.
type Progress struct {
	Stage       string
	Done        int
	Total       int
	Temperature float64 // sweep lines only
}

// EmitSweepProgress writes a sweep progress line for the batch driver.
func EmitSweepProgress(w io.Writer, done, total int, currentT float64) {
	fmt.Fprintf(w, "%s %s %d %d %.8f\n", progressPrefix, StageSweep, done, total, currentT)
}

// EmitTcProgress writes a Tc scan progress line for the batch driver.
func EmitTcProgress(w io.Writer, done, total int) {
	fmt.Fprintf(w, "%s %s %d %d\n", progressPrefix, StageTc, done, total)
}

// ParseProgressLine decodes a progress line. Any other line, including plain
// interleaved log output, returns ok=false.
func ParseProgressLine(line string) (Progress, bool) {
	rest, found := strings.CutPrefix(line, progressPrefix+" ")
	if !found {
		return Progress{}, false
	}
	parts := strings.Fields(rest)
	if len(parts) < 3 {
		return Progress{}, false
	}
	done, err1 := strconv.Atoi(parts[1])
	total, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return Progress{}, false
	}
	p := Progress{Stage: parts[0], Done: done, Total: total}
	switch parts[0] {
	case StageSweep:
		if len(parts) >= 4 {
			if t, err := strconv.ParseFloat(parts[3], 64); err == nil {
				p.Temperature = t
			}
		}
	case StageTc:
	default:
		return Progress{}, false
	}
	return p, true
}
