package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/kacperjurak/goisingcore"
	"github.com/kacperjurak/goisingcore/internal/processing"
	"github.com/kacperjurak/goisingcore/pkg/batch"
	"github.com/kacperjurak/goisingcore/pkg/config"
	"github.com/kacperjurak/goisingcore/pkg/report"
)

func main() {
	defaults := config.FromParams(goisingcore.DefaultParams())

	raw := defaults
	var initLabel string
	flag.StringVar(&raw.L, "l", defaults.L, "Lattice size L")
	flag.StringVar(&raw.J, "j", defaults.J, "Interaction J")
	flag.StringVar(&raw.P, "p", defaults.P, "Bond disorder probability")
	flag.StringVar(&raw.H, "hfield", defaults.H, "External field H")
	flag.StringVar(&initLabel, "init", "Random", "Initial state (Random, AllUp, AllDown)")
	flag.StringVar(&raw.TStart, "tstart", defaults.TStart, "Sweep start temperature")
	flag.StringVar(&raw.TEnd, "tend", defaults.TEnd, "Sweep end temperature")
	flag.StringVar(&raw.TStep, "tstep", defaults.TStep, "Sweep temperature step")
	flag.StringVar(&raw.TcStep, "tcstep", defaults.TcStep, "Tc scan step")
	flag.StringVar(&raw.MCSteps, "mc", defaults.MCSteps, "Monte Carlo steps per temperature")
	flag.StringVar(&raw.ThermSteps, "therm", defaults.ThermSteps, "Thermalization passes")
	flag.StringVar(&raw.Stride, "stride", defaults.Stride, "Sampling stride")
	flag.StringVar(&raw.SampleCount, "samples", defaults.SampleCount, "Independent disorder realizations per temperature")
	flag.BoolVar(&raw.OutlierFilter, "outlier", false, "Mark boundary outliers before the Tc scan")

	auto := flag.Bool("auto", false, "Derive the analysis windows from peak structure")
	tMin := flag.Float64("tmin", math.NaN(), "Analysis window minimum (default: T start)")
	tMax := flag.Float64("tmax", math.NaN(), "Analysis window maximum (default: T end)")
	tcMin := flag.Float64("tcmin", math.NaN(), "Tc search minimum (default: T start)")
	tcMax := flag.Float64("tcmax", math.NaN(), "Tc search maximum (default: T end)")

	out := flag.String("out", "data", "Output root directory")
	load := flag.String("load", "", "Load parameters from a prior run directory")
	reanalyze := flag.String("reanalyze", "", "Re-run the analysis on an existing scan CSV instead of sweeping")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time based)")
	quiet := flag.Bool("q", false, "Quiet mode")
	flag.Parse()

	if batch.Enabled() {
		if err := runBatchMode(); err != nil {
			log.Fatal(err)
		}
		return
	}

	var params goisingcore.SimParams
	if *load != "" {
		p, err := report.LoadSummary(*load)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Loaded parameters from %s", *load)
		params = p
	} else {
		switch initLabel {
		case "AllUp":
			raw.InitialState = goisingcore.AllUp
		case "AllDown":
			raw.InitialState = goisingcore.AllDown
		case "Random":
			raw.InitialState = goisingcore.Random
		default:
			log.Fatalf("init must be one of Random, AllUp, AllDown, got '%s'", initLabel)
		}
		p, err := raw.Parse()
		if err != nil {
			log.Fatal(err)
		}
		params = p
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	var results []goisingcore.SimResult
	if *reanalyze != "" {
		r, err := report.ReadScanCSV(*reanalyze)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Loaded %d samples from %s", len(r), *reanalyze)
		results = r
	} else {
		results = goisingcore.RunSweep(params, rng, func(currentT float64, done, total int) {
			if !*quiet {
				log.Printf("Sweep %d/%d  T = %.4f", done, total, currentT)
			}
		})
	}

	if *auto {
		if err := applyAutoWindow(&params, results); err != nil {
			log.Fatal(err)
		}
	} else {
		applyFlagWindow(&params, *tMin, *tMax, *tcMin, *tcMax)
	}

	output, err := processing.RunAnalysis(params, results, *out, func(done, total int) {
		if !*quiet && done%1000 == 0 {
			log.Printf("Tc scan %d/%d", done, total)
		}
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Results written to %s", output.Dir)
	if output.Best != nil {
		log.Printf("Best Tc = %.8f  beta = %.8f  R^2 = %.8f  fit points = %d",
			output.Best.Tc, output.Best.Beta, output.Best.RSquared, output.Best.FitPoints)
		if output.Refined != nil {
			log.Printf("Refined power law: A = %.8f  beta = %.8f  residual = %.3e",
				output.Refined.Amplitude, output.Refined.Beta, output.Refined.Residual)
		}
	} else {
		log.Printf("No critical temperature found (no positive-slope fits with R^2>0).")
	}
}

// applyAutoWindow narrows the analysis and Tc windows to the primary
// candidate derived from the peak structure of the sampled curves.
func applyAutoWindow(params *goisingcore.SimParams, results []goisingcore.SimResult) error {
	temps := make([]float64, len(results))
	mags := make([]float64, len(results))
	cVals := make([]float64, len(results))
	chiVals := make([]float64, len(results))
	for i, r := range results {
		temps[i] = r.Temperature
		mags[i] = r.MeanM
		cVals[i] = r.HeatCap
		chiVals[i] = r.Susceptibility
	}
	intervals, err := goisingcore.ComputeIntervals(temps, cVals, chiVals, mags)
	if err != nil {
		return err
	}
	primary := intervals.Primary
	params.TAnalysisMin = primary.TEnvelopeMin
	params.TAnalysisMax = primary.TEnvelopeMax
	params.TcMin = primary.TcOverlapMin
	params.TcMax = primary.TcOverlapMax
	log.Printf("Auto window: T [%.6f, %.6f]  Tc [%.6f, %.6f]",
		params.TAnalysisMin, params.TAnalysisMax, params.TcMin, params.TcMax)
	if intervals.Secondary != nil {
		s := intervals.Secondary
		log.Printf("Secondary candidate: T [%.6f, %.6f]  Tc [%.6f, %.6f]",
			s.TEnvelopeMin, s.TEnvelopeMax, s.TcOverlapMin, s.TcOverlapMax)
	}
	return nil
}

func applyFlagWindow(params *goisingcore.SimParams, tMin, tMax, tcMin, tcMax float64) {
	if !math.IsNaN(tMin) {
		params.TAnalysisMin = tMin
	}
	if !math.IsNaN(tMax) {
		params.TAnalysisMax = tMax
	}
	if !math.IsNaN(tcMin) {
		params.TcMin = tcMin
	}
	if !math.IsNaN(tcMax) {
		params.TcMax = tcMax
	}
}

// runBatchMode is the headless child-process mode driven entirely by BATCH_*
// environment variables. It emits machine-readable progress lines on stdout
// for the batch driver.
func runBatchMode() error {
	params, err := batch.ParamsFromEnv()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	lastSweepDone := -1
	results := goisingcore.RunSweep(params, rng, func(currentT float64, done, total int) {
		if total > 0 && done != lastSweepDone {
			lastSweepDone = done
			batch.EmitSweepProgress(os.Stdout, done, total, currentT)
		}
	})

	if batch.WindowModeFromEnv() == batch.WindowAuto {
		if err := applyAutoWindow(&params, results); err != nil {
			return err
		}
	} else {
		batch.ApplyFixedWindowFromEnv(&params)
	}

	lastTcDone := -1
	output, err := processing.RunAnalysis(params, results, batch.OutputRootFromEnv(), func(done, total int) {
		if total > 0 && done != lastTcDone {
			lastTcDone = done
			batch.EmitTcProgress(os.Stdout, done, total)
		}
	})
	if err != nil {
		return err
	}
	if output.Best != nil {
		log.Printf("Best Tc = %.8f (R^2 = %.8f)", output.Best.Tc, output.Best.RSquared)
	} else {
		log.Printf("No critical temperature found.")
	}
	return nil
}
