package batch

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
)

// Params describes a batch over a grid of disorder probabilities. Every p
// value becomes one full solver run in a child process.
type Params struct {
	L           int
	J           float64
	H           float64
	MCSteps     int
	ThermSteps  int
	Stride      int
	SampleCount int
	TStart      float64
	TEnd        float64
	TStep       float64
	PStart      float64
	PEnd        float64
	PStep       float64

	UseOutlier    bool
	UseAutoWindow bool
	TWinMin       float64
	TWinMax       float64
	TcWinMin      float64
	TcWinMax      float64
}

// Validate applies the same constraints as the single-run parameter layer
// plus the p-grid and window ordering rules.
func (bp Params) Validate() error {
	switch {
	case bp.L < 2:
		return errors.New("Lattice size L must be >= 2")
	case bp.TStart <= 0:
		return errors.New("T start must be > 0")
	case bp.TEnd < bp.TStart:
		return errors.New("T end must be >= T start")
	case bp.TStep <= 0:
		return errors.New("T step must be > 0")
	case bp.MCSteps < 2:
		return errors.New("MC steps must be >= 2")
	case bp.ThermSteps == 0:
		return errors.New("Thermalization steps must be >= 1")
	case bp.Stride == 0:
		return errors.New("Stride must be >= 1")
	case bp.SampleCount == 0:
		return errors.New("Disorder samples must be >= 1")
	case bp.PStep <= 0:
		return errors.New("p step must be > 0")
	case bp.PEnd < bp.PStart:
		return errors.New("p end must be >= p start")
	}
	if !bp.UseAutoWindow {
		if bp.TWinMax < bp.TWinMin {
			return errors.New("T window max must be >= T window min")
		}
		if bp.TcWinMax < bp.TcWinMin {
			return errors.New("Tc window max must be >= Tc window min")
		}
	}
	return nil
}

// PValues expands the disorder-probability grid, inclusive of the end point
// within a small tolerance.
func (bp Params) PValues() []float64 {
	var vals []float64
	for p := bp.PStart; p <= bp.PEnd+1e-12; p += bp.PStep {
		vals = append(vals, p)
	}
	return vals
}

// Driver spawns one solver process per disorder probability, strictly one at
// a time, and relays the child's progress lines.
type Driver struct {
	Bin  string // solver binary path
	Root string // batch output root, passed to children via BATCH_OUTPUT_ROOT
}

func (bp Params) env(pVal float64, root string) []string {
	env := append(os.Environ(),
		ModeVar+"=1",
		"BATCH_L="+strconv.Itoa(bp.L),
		"BATCH_J="+strconv.FormatFloat(bp.J, 'g', -1, 64),
		fmt.Sprintf("BATCH_P=%.8f", pVal),
		"BATCH_T_START="+strconv.FormatFloat(bp.TStart, 'g', -1, 64),
		"BATCH_T_END="+strconv.FormatFloat(bp.TEnd, 'g', -1, 64),
		"BATCH_T_STEP="+strconv.FormatFloat(bp.TStep, 'g', -1, 64),
		"BATCH_MC_STEPS="+strconv.Itoa(bp.MCSteps),
		"BATCH_THERM_STEPS="+strconv.Itoa(bp.ThermSteps),
		"BATCH_STRIDE="+strconv.Itoa(bp.Stride),
		"BATCH_H="+strconv.FormatFloat(bp.H, 'g', -1, 64),
		"BATCH_SAMPLE_COUNT="+strconv.Itoa(bp.SampleCount),
		"BATCH_INIT=Random",
		OutputRootVar+"="+root,
	)
	if bp.UseOutlier {
		env = append(env, "BATCH_OUTLIER_FILTER=1")
	}
	if bp.UseAutoWindow {
		env = append(env, WindowModeVar+"="+WindowAuto)
	} else {
		env = append(env,
			WindowModeVar+"="+WindowFixed,
			"BATCH_T_MIN="+strconv.FormatFloat(bp.TWinMin, 'g', -1, 64),
			"BATCH_T_MAX="+strconv.FormatFloat(bp.TWinMax, 'g', -1, 64),
			"BATCH_TC_MIN="+strconv.FormatFloat(bp.TcWinMin, 'g', -1, 64),
			"BATCH_TC_MAX="+strconv.FormatFloat(bp.TcWinMax, 'g', -1, 64),
		)
	}
	return env
}

// Run executes the whole grid and returns the number of runs that finished
// successfully. Failures of individual runs are logged and skipped; only a
// setup failure aborts the batch.
func (d *Driver) Run(bp Params) (int, error) {
	pVals := bp.PValues()
	if len(pVals) == 0 {
		return 0, errors.New("no p values generated")
	}
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return 0, err
	}

	log.Printf("Planned runs: %d", len(pVals))
	for i, v := range pVals {
		log.Printf("  %d: p = %.6f", i+1, v)
	}

	total := len(pVals)
	completed := 0
	for idx, pVal := range pVals {
		log.Printf("Starting run %d/%d with p = %.6f", idx+1, total, pVal)

		cmd := exec.Command(d.Bin)
		cmd.Env = bp.env(pVal, d.Root)
		cmd.Stderr = os.Stderr
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return completed, err
		}
		if err := cmd.Start(); err != nil {
			log.Printf("Failed to start run %d/%d with p = %.6f: %v", idx+1, total, pVal, err)
			continue
		}

		scanner := bufio.NewScanner(stdout)
		var sweepDone, sweepTotal, tcDone, tcTotal int
		for scanner.Scan() {
			line := scanner.Text()
			pr, ok := ParseProgressLine(line)
			if !ok {
				// plain log line from the child, pass it through
				if line != "" {
					log.Printf("[p=%.6f] %s", pVal, line)
				}
				continue
			}
			switch pr.Stage {
			case StageSweep:
				sweepDone, sweepTotal = pr.Done, pr.Total
			case StageTc:
				tcDone, tcTotal = pr.Done, pr.Total
			}
			log.Printf("Run %d/%d (p = %.6f)  sweep %d/%d  tc %d/%d",
				idx+1, total, pVal, sweepDone, sweepTotal, tcDone, tcTotal)
		}

		if err := cmd.Wait(); err != nil {
			log.Printf("Run %d/%d with p = %.6f failed: %v", idx+1, total, pVal, err)
			continue
		}
		completed++
		log.Printf("Finished run %d/%d (p = %.6f). Overall progress: %.1f%%",
			idx+1, total, pVal, 100*float64(completed)/float64(total))
	}

	log.Printf("Batch runs finished. Completed %d/%d runs.", completed, total)
	return completed, nil
}
