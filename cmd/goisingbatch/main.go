package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/kacperjurak/goisingcore/pkg/batch"
)

func main() {
	var bp batch.Params
	flag.IntVar(&bp.L, "l", 32, "Lattice size L")
	flag.Float64Var(&bp.J, "j", 1.0, "Interaction J")
	flag.Float64Var(&bp.H, "hfield", 0.0, "External field H")
	flag.IntVar(&bp.MCSteps, "mc", 10000, "Monte Carlo steps per temperature")
	flag.IntVar(&bp.ThermSteps, "therm", 5000, "Thermalization passes")
	flag.IntVar(&bp.Stride, "stride", 10, "Sampling stride")
	flag.IntVar(&bp.SampleCount, "samples", 1, "Disorder realizations per temperature")
	flag.Float64Var(&bp.TStart, "tstart", 1.0, "Sweep start temperature")
	flag.Float64Var(&bp.TEnd, "tend", 4.0, "Sweep end temperature")
	flag.Float64Var(&bp.TStep, "tstep", 0.1, "Sweep temperature step")
	flag.Float64Var(&bp.PStart, "pstart", 0.0, "Disorder probability grid start")
	flag.Float64Var(&bp.PEnd, "pend", 0.1, "Disorder probability grid end")
	flag.Float64Var(&bp.PStep, "pstep", 0.01, "Disorder probability grid step")
	flag.BoolVar(&bp.UseOutlier, "outlier", false, "Enable the boundary outlier filter")
	flag.BoolVar(&bp.UseAutoWindow, "auto", false, "Let each run derive its windows from peak structure")
	flag.Float64Var(&bp.TWinMin, "twinmin", 2.0, "Fixed analysis window minimum")
	flag.Float64Var(&bp.TWinMax, "twinmax", 2.45, "Fixed analysis window maximum")
	flag.Float64Var(&bp.TcWinMin, "tcwinmin", 2.25, "Fixed Tc search minimum")
	flag.Float64Var(&bp.TcWinMax, "tcwinmax", 2.45, "Fixed Tc search maximum")

	bin := flag.String("bin", "goisingsolver", "Path to the solver binary")
	outRoot := flag.String("out", "data_batch", "Batch output root")
	limit := flag.Int("limit", 0, "Aggregate at most this many recent runs (0 = all)")
	flag.Parse()

	if err := bp.Validate(); err != nil {
		log.Fatal(err)
	}

	root := filepath.Join(*outRoot, "batch_"+time.Now().Format("20060102_150405"))
	driver := &batch.Driver{Bin: *bin, Root: root}

	completed, err := driver.Run(bp)
	if err != nil {
		log.Fatal(err)
	}
	if completed == 0 {
		log.Fatal("no runs completed, nothing to aggregate")
	}

	samples := batch.CollectSamples(root, *limit)
	if len(samples) == 0 {
		log.Printf("No summaries with a valid Tc found under %s", root)
		return
	}
	aggPath := filepath.Join(root, "tc_vs_p.csv")
	if err := batch.WriteAggregateCSV(aggPath, samples); err != nil {
		log.Fatal(err)
	}
	log.Printf("Aggregated %d runs into %s", len(samples), aggPath)
}
