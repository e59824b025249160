// Package processing orchestrates the analysis stage of one run: outlier
// marking, the critical-temperature scan and the on-disk report artifacts.
package processing

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kacperjurak/goisingcore"
	"github.com/kacperjurak/goisingcore/internal/utils"
	"github.com/kacperjurak/goisingcore/pkg/report"
)

const runDirPrefix = "loglog_singleProfile"

// Output collects everything the analysis stage produced for one run.
type Output struct {
	Dir     string
	Scan    []goisingcore.TcScanResult
	Best    *goisingcore.TcScanResult
	Refined *goisingcore.RefinedFit
}

// newRunDir creates a timestamped run directory under root. On a same-second
// collision a random suffix keeps the runs apart.
func newRunDir(root string) (string, error) {
	ts := time.Now().Format("20060102_150405")
	dir := filepath.Join(root, runDirPrefix+"_"+ts)
	if _, err := os.Stat(dir); err == nil {
		dir = dir + "_" + utils.GenerateID()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// RunAnalysis writes the series CSV, runs the Tc scan over the configured
// window and writes the scan CSV, HTML table and summary. The estimator
// sequence is copied before outlier marking so the caller's records stay
// untouched. progress may be nil. An empty input is analysis degeneracy, not
// a failure.
func RunAnalysis(p goisingcore.SimParams, results []goisingcore.SimResult, outputRoot string, progress goisingcore.ScanProgressFunc) (*Output, error) {
	if len(results) == 0 {
		return nil, goisingcore.ErrNoAnalysisData
	}

	dir, err := newRunDir(outputRoot)
	if err != nil {
		return nil, err
	}
	prefix := filepath.Join(dir, runDirPrefix)

	if err := report.WriteScanCSV(prefix+"_scan.csv", results); err != nil {
		return nil, err
	}

	marked := make([]goisingcore.SimResult, len(results))
	copy(marked, results)
	if p.UseOutlierFilter {
		goisingcore.MarkOutliers(marked, p.TAnalysisMin, p.TAnalysisMax)
	}

	scan := goisingcore.RunScan(p, marked, progress)
	if err := report.WriteTcScanCSV(prefix+"_tc_scan.csv", scan); err != nil {
		return nil, err
	}

	out := &Output{Dir: dir, Scan: scan}
	if best, ok := goisingcore.BestScanResult(scan); ok {
		out.Best = &best
		if rf, err := goisingcore.RefinePowerLaw(p, marked, best); err == nil {
			out.Refined = &rf
		} else {
			log.Printf("Power-law refinement skipped: %v", err)
		}
	}

	if err := report.WriteHTMLReport(prefix+"_loglog_detailed.html", p, scan, out.Best); err != nil {
		return nil, err
	}
	ts := filepath.Base(dir)[len(runDirPrefix)+1:]
	if err := report.WriteSummary(dir, p, out.Best, ts); err != nil {
		return nil, err
	}
	return out, nil
}
