package processing_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ising "github.com/kacperjurak/goisingcore"
	"github.com/kacperjurak/goisingcore/internal/processing"
	"github.com/kacperjurak/goisingcore/pkg/report"
)

func syntheticResults() []ising.SimResult {
	// noiseless power law M = 1.1*(2.3-T)^0.35 below Tc, zero above
	var results []ising.SimResult
	for i := 0; ; i++ {
		t := 1.0 + float64(i)*0.05
		if t > 3.0+1e-9 {
			break
		}
		m := 0.0
		if t < 2.3 {
			m = 1.1 * math.Pow(2.3-t, 0.35)
		}
		results = append(results, ising.SimResult{Temperature: t, MeanM: m})
	}
	return results
}

func analysisParams() ising.SimParams {
	p := ising.DefaultParams()
	p.TStart = 1.0
	p.TEnd = 3.0
	p.TStep = 0.05
	p.TAnalysisMin = 1.0
	p.TAnalysisMax = 3.0
	p.TcMin = 2.0
	p.TcMax = 2.6
	p.TcStep = 0.01
	return p
}

func TestRunAnalysis(t *testing.T) {
	root := t.TempDir()
	results := syntheticResults()
	p := analysisParams()

	calls := 0
	out, err := processing.RunAnalysis(p, results, root, func(done, total int) {
		calls++
	})
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
	assert.Len(t, out.Scan, 61)

	require.NotNil(t, out.Best)
	assert.InDelta(t, 2.3, out.Best.Tc, 0.011)
	assert.InDelta(t, 0.35, out.Best.Beta, 1e-3)
	require.NotNil(t, out.Refined)
	assert.InDelta(t, 1.1, out.Refined.Amplitude, 1e-3)
	assert.InDelta(t, 0.35, out.Refined.Beta, 1e-3)

	// every artifact of the run lands in one directory
	base := filepath.Base(out.Dir)
	assert.True(t, strings.HasPrefix(base, "loglog_singleProfile_"))
	for _, name := range []string{
		"loglog_singleProfile_scan.csv",
		"loglog_singleProfile_tc_scan.csv",
		"loglog_singleProfile_loglog_detailed.html",
		"summary.txt",
	} {
		_, err := os.Stat(filepath.Join(out.Dir, name))
		assert.NoError(t, err, "expected artifact %s", name)
	}

	// the summary round-trips through the loader
	loaded, err := report.LoadSummary(out.Dir)
	require.NoError(t, err)
	assert.Equal(t, p.L, loaded.L)
	assert.InDelta(t, p.TStep, loaded.TStep, 1e-12)

	// the run is discoverable for the saved-run browser
	runs := report.FindSavedRuns(root)
	require.Len(t, runs, 1)
	assert.Equal(t, base, runs[0].Name)
}

func TestRunAnalysisEmptyInput(t *testing.T) {
	_, err := processing.RunAnalysis(analysisParams(), nil, t.TempDir(), nil)
	assert.ErrorIs(t, err, ising.ErrNoAnalysisData)
}

func TestRunAnalysisLeavesInputUntouched(t *testing.T) {
	// Outlier marking must operate on a copy of the caller's records.
	results := []ising.SimResult{
		{Temperature: 1.0, MeanM: 0.9, HeatCap: 100, Susceptibility: 100},
		{Temperature: 2.0, MeanM: 0.7, HeatCap: 1, Susceptibility: 1},
		{Temperature: 2.1, MeanM: 0.6, HeatCap: 1, Susceptibility: 1},
		{Temperature: 2.2, MeanM: 0.5, HeatCap: 1, Susceptibility: 1},
		{Temperature: 3.0, MeanM: 0.1, HeatCap: 1, Susceptibility: 1},
	}
	p := analysisParams()
	p.TAnalysisMin = 2.0
	p.TAnalysisMax = 2.5
	p.UseOutlierFilter = true

	_, err := processing.RunAnalysis(p, results, t.TempDir(), nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.IsOutlier)
	}
}

func TestRunAnalysisNoValidTc(t *testing.T) {
	// Two points cannot support a four-point fit anywhere in the window.
	results := []ising.SimResult{
		{Temperature: 2.0, MeanM: 0.5},
		{Temperature: 2.1, MeanM: 0.4},
	}
	out, err := processing.RunAnalysis(analysisParams(), results, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Nil(t, out.Best)
	assert.Nil(t, out.Refined)

	data, err := os.ReadFile(filepath.Join(out.Dir, "summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "No valid Tc found")
}
