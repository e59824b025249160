// Package report reads and writes the on-disk artifacts of one run: the
// series CSVs, the key=value summary file and the HTML scan table. The
// summary format doubles as the parameter-reuse interface, so the writer and
// loader must stay in lockstep.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kacperjurak/goisingcore"
)

const summaryName = "summary.txt"

// WriteSummary writes dir/summary.txt. best may be nil when the scan found
// no valid critical temperature.
func WriteSummary(dir string, p goisingcore.SimParams, best *goisingcore.TcScanResult, timestamp string) error {
	f, err := os.Create(filepath.Join(dir, summaryName))
	if err != nil {
		return err
	}
	defer f.Close()

	w := func(format string, args ...interface{}) {
		fmt.Fprintf(f, format+"\n", args...)
	}

	w("Simulation summary")
	w("Timestamp: %s", timestamp)
	w("Output directory: %s", dir)
	w("")
	w("Model parameters")
	w("L = %d", p.L)
	w("J = %v", p.J)
	w("p = %v", p.BondP)
	w("H = %v", p.H)
	w("Initial state = %s", p.InitialState.Label())
	w("Total bonds = %d", p.TotalBonds())
	w("-J bonds (rigid) = %d", p.NegatedBonds())
	w("")
	w("MC parameters")
	w("MC steps   = %d", p.MCSteps)
	w("Therm steps = %d", p.ThermSteps)
	w("Stride      = %d", p.Stride)
	w("Disorder samples = %d", p.SampleCount)
	w("")
	w("Scan parameters")
	w("T_start = %v", p.TStart)
	w("T_end   = %v", p.TEnd)
	w("T_step  = %v", p.TStep)
	w("Tc_step = %v", p.TcStep)
	w("")
	w("Auto analysis windows")
	w("T window (envelope) = [%.6f, %.6f]", p.TAnalysisMin, p.TAnalysisMax)
	w("Tc window (overlap)  = [%.6f, %.6f]", p.TcMin, p.TcMax)
	w("")
	w("Best Tc from log-log fit")
	if best != nil {
		w("Tc_best    = %.8f", best.Tc)
		w("beta       = %.8f", best.Beta)
		w("R_squared  = %.8f", best.RSquared)
		w("fit_points = %d", best.FitPoints)
	} else {
		w("No valid Tc found (no positive-slope fits with R^2>0).")
	}
	return nil
}

// LoadSummary reloads run parameters from dir/summary.txt. All numeric keys
// must be present and parseable; "Disorder samples" defaults to 1 when
// absent or below 1. The analysis and Tc windows are reset to the sweep
// range and the outlier filter is off: neither is persisted.
func LoadSummary(dir string) (goisingcore.SimParams, error) {
	var zero goisingcore.SimParams
	path := filepath.Join(dir, summaryName)
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}

	kv := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if _, seen := kv[key]; !seen {
			kv[key] = val
		}
	}

	reqInt := func(key string) (int, error) {
		raw, ok := kv[key]
		if !ok {
			return 0, fmt.Errorf("missing %s in %s", key, path)
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s value in %s: '%s'", key, path, raw)
		}
		return v, nil
	}
	reqFloat := func(key string) (float64, error) {
		raw, ok := kv[key]
		if !ok {
			return 0, fmt.Errorf("missing %s in %s", key, path)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value in %s: '%s'", key, path, raw)
		}
		return v, nil
	}

	l, err := reqInt("L")
	if err != nil {
		return zero, err
	}
	j, err := reqFloat("J")
	if err != nil {
		return zero, err
	}
	bondP, err := reqFloat("p")
	if err != nil {
		return zero, err
	}
	h, err := reqFloat("H")
	if err != nil {
		return zero, err
	}
	rawInit, ok := kv["Initial state"]
	if !ok {
		return zero, fmt.Errorf("missing Initial state in %s", path)
	}
	init, ok := goisingcore.ParseInitialState(rawInit)
	if !ok {
		return zero, fmt.Errorf("invalid Initial state value in %s: '%s'", path, rawInit)
	}
	mcSteps, err := reqInt("MC steps")
	if err != nil {
		return zero, err
	}
	thermSteps, err := reqInt("Therm steps")
	if err != nil {
		return zero, err
	}
	stride, err := reqInt("Stride")
	if err != nil {
		return zero, err
	}
	tStart, err := reqFloat("T_start")
	if err != nil {
		return zero, err
	}
	tEnd, err := reqFloat("T_end")
	if err != nil {
		return zero, err
	}
	tStep, err := reqFloat("T_step")
	if err != nil {
		return zero, err
	}
	tcStep, err := reqFloat("Tc_step")
	if err != nil {
		return zero, err
	}

	sampleCount := 1
	if raw, ok := kv["Disorder samples"]; ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			sampleCount = v
		}
	}

	return goisingcore.SimParams{
		L:            l,
		J:            j,
		BondP:        bondP,
		SampleCount:  sampleCount,
		InitialState: init,
		TStart:       tStart,
		TEnd:         tEnd,
		TStep:        tStep,
		TAnalysisMin: tStart,
		TAnalysisMax: tEnd,
		TcMin:        tStart,
		TcMax:        tEnd,
		TcStep:       tcStep,
		MCSteps:      mcSteps,
		ThermSteps:   thermSteps,
		Stride:       stride,
		H:            h,
	}, nil
}
