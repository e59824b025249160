package goisingcore

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// tolerance for deciding whether a grid point overshoots the end of the
// temperature range.
const gridTolerance = 1e-9

// SimParams is the immutable configuration of one full run.
type SimParams struct {
	L            int
	J            float64
	BondP        float64
	SampleCount  int
	InitialState InitialState
	TStart       float64
	TEnd         float64
	TStep        float64
	TAnalysisMin float64
	TAnalysisMax float64
	TcMin        float64
	TcMax        float64
	TcStep       float64
	MCSteps      int
	ThermSteps   int
	Stride       int
	H            float64

	UseOutlierFilter bool
}

// DefaultParams mirrors the interactive defaults: a 32×32 clean ferromagnet
// swept from T=1 to T=4.
func DefaultParams() SimParams {
	mcSteps := 10000
	return SimParams{
		L:            32,
		J:            1.0,
		BondP:        0.0,
		SampleCount:  1,
		InitialState: Random,
		TStart:       1.0,
		TEnd:         4.0,
		TStep:        0.1,
		TAnalysisMin: 2.0,
		TAnalysisMax: 2.3,
		TcMin:        2.20,
		TcMax:        2.40,
		TcStep:       0.0001,
		MCSteps:      mcSteps,
		ThermSteps:   mcSteps / 2,
		Stride:       10,
		H:            0.0,
	}
}

// TotalBonds is the number of nearest-neighbor bonds of an L×L torus.
func (p SimParams) TotalBonds() int {
	return 2 * p.L * p.L
}

// NegatedBonds is the number of bonds flipped to -J for the disorder
// probability, capped at the total bond count.
func (p SimParams) NegatedBonds() int {
	pr := p.BondP
	if pr < 0 {
		pr = 0
	}
	if pr > 1 {
		pr = 1
	}
	n := int(math.Round(pr * float64(p.TotalBonds())))
	if n > p.TotalBonds() {
		n = p.TotalBonds()
	}
	return n
}

// SimResult is one sampled temperature. IsOutlier is set post-hoc by the
// outlier filter, never during sampling.
type SimResult struct {
	Temperature    float64
	MeanE          float64 // <E>/N
	MeanM          float64 // <|M|>/N
	HeatCap        float64 // Var(E)/(T²·N)
	Susceptibility float64 // Var(M)/(T·N)
	IsOutlier      bool
}

// SweepProgressFunc is invoked synchronously before each temperature is
// measured, with done counts that never decrease.
type SweepProgressFunc func(currentT float64, done, total int)

func popVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	// MomentAbout with moment 2 divides by n, the uncorrected estimator.
	return stat.MomentAbout(2, xs, stat.Mean(xs, nil), nil)
}

// NewLatticeFor constructs a fresh disorder realization for params at the
// given temperature.
func NewLatticeFor(p SimParams, temperature float64, rng *rand.Rand) *Lattice {
	return NewLattice(p.L, p.J, p.BondP, p.H, temperature, p.InitialState, rng)
}

// MeasureAtTemperature thermalizes and samples SampleCount independent
// disorder realizations at one temperature and averages their estimators.
// One thermalization pass is L² Metropolis steps; measurement records every
// Stride-th step to decimate serial correlation.
func MeasureAtTemperature(p SimParams, temperature float64, rng *rand.Rand) SimResult {
	n := float64(p.L * p.L)
	var meanEAcc, meanMAcc, heatCapAcc, chiAcc float64

	samples := p.SampleCount
	if samples < 1 {
		samples = 1
	}

	for s := 0; s < samples; s++ {
		model := NewLatticeFor(p, temperature, rng)

		for t := 0; t < p.ThermSteps; t++ {
			for k := 0; k < p.L*p.L; k++ {
				model.MetropolisStep(rng)
			}
		}

		var eSamples, mSamples, mAbsSamples []float64
		for step := 0; step < p.MCSteps; step++ {
			for k := 0; k < p.L*p.L; k++ {
				model.MetropolisStep(rng)
			}
			if step%p.Stride == 0 {
				eSamples = append(eSamples, model.TotalEnergy())
				m := float64(model.TotalMagnetization())
				mSamples = append(mSamples, m)
				mAbsSamples = append(mAbsSamples, math.Abs(m))
			}
		}

		meanEAcc += stat.Mean(eSamples, nil) / n
		meanMAcc += stat.Mean(mAbsSamples, nil) / n
		heatCapAcc += popVariance(eSamples) / (temperature * temperature * n)
		// susceptibility uses the signed magnetization samples
		chiAcc += popVariance(mSamples) / (temperature * n)
	}

	invSamples := 1.0 / float64(samples)
	return SimResult{
		Temperature:    temperature,
		MeanE:          meanEAcc * invSamples,
		MeanM:          meanMAcc * invSamples,
		HeatCap:        heatCapAcc * invSamples,
		Susceptibility: chiAcc * invSamples,
	}
}

// RunSweep measures every temperature of the grid from TStart to TEnd in
// TStep increments (inclusive, with a small tolerance) and returns the
// results in increasing temperature order. progress may be nil.
func RunSweep(p SimParams, rng *rand.Rand, progress SweepProgressFunc) []SimResult {
	total := int(math.Ceil((p.TEnd-p.TStart)/p.TStep)) + 1
	results := make([]SimResult, 0, total)
	for i := 0; i < total; i++ {
		t := p.TStart + float64(i)*p.TStep
		if t > p.TEnd+gridTolerance {
			break
		}
		if progress != nil {
			progress(t, i, total)
		}
		results = append(results, MeasureAtTemperature(p, t, rng))
	}
	return results
}
