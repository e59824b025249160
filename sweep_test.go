package goisingcore_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ising "github.com/kacperjurak/goisingcore"
)

func smallParams() ising.SimParams {
	p := ising.DefaultParams()
	p.L = 4
	p.MCSteps = 40
	p.ThermSteps = 5
	p.Stride = 5
	return p
}

func TestDefaultParams(t *testing.T) {
	p := ising.DefaultParams()
	assert.Equal(t, 32, p.L)
	assert.Equal(t, 10000, p.MCSteps)
	assert.Equal(t, 5000, p.ThermSteps)
	assert.Equal(t, 10, p.Stride)
	assert.Equal(t, 1, p.SampleCount)
	assert.Equal(t, ising.Random, p.InitialState)
	assert.InDelta(t, 0.0001, p.TcStep, 1e-15)
}

func TestNegatedBonds(t *testing.T) {
	p := ising.DefaultParams()
	p.L = 8
	assert.Equal(t, 128, p.TotalBonds())

	p.BondP = 0.5
	assert.Equal(t, 64, p.NegatedBonds())

	p.BondP = 1.0
	assert.Equal(t, 128, p.NegatedBonds())

	p.BondP = 0.0
	assert.Equal(t, 0, p.NegatedBonds())
}

func TestMeasureAtTemperatureEstimatorsNonNegative(t *testing.T) {
	p := smallParams()
	p.BondP = 0.3
	p.SampleCount = 2
	rng := rand.New(rand.NewSource(17))

	r := ising.MeasureAtTemperature(p, 2.0, rng)
	assert.Equal(t, 2.0, r.Temperature)
	assert.GreaterOrEqual(t, r.MeanM, 0.0, "mean |M| per spin is non-negative")
	assert.GreaterOrEqual(t, r.HeatCap, 0.0, "variance-based estimator is non-negative")
	assert.GreaterOrEqual(t, r.Susceptibility, 0.0, "variance-based estimator is non-negative")
	assert.False(t, math.IsNaN(r.MeanE))
	assert.False(t, r.IsOutlier)
}

func TestMeasureAtTemperatureColdFerromagnet(t *testing.T) {
	// A clean ferromagnet well below Tc stays near full magnetization: the
	// ground state has E/N = -2J and |M|/N = 1, and at T=0.5 flips are
	// vanishingly rare.
	p := smallParams()
	p.InitialState = ising.AllUp
	p.MCSteps = 100
	p.ThermSteps = 10
	p.Stride = 1
	rng := rand.New(rand.NewSource(99))

	r := ising.MeasureAtTemperature(p, 0.5, rng)
	assert.InDelta(t, 1.0, r.MeanM, 0.05)
	assert.InDelta(t, -2.0, r.MeanE, 0.1)
}

func TestRunSweepGrid(t *testing.T) {
	p := smallParams()
	p.TStart = 1.0
	p.TEnd = 2.0
	p.TStep = 0.25
	rng := rand.New(rand.NewSource(1))

	var doneSeen []int
	var totalSeen int
	results := ising.RunSweep(p, rng, func(currentT float64, done, total int) {
		doneSeen = append(doneSeen, done)
		totalSeen = total
	})

	require.Len(t, results, 5)
	assert.Equal(t, 5, totalSeen)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, doneSeen)
	assert.InDelta(t, 1.0, results[0].Temperature, 1e-12)
	assert.InDelta(t, 2.0, results[4].Temperature, 1e-12)
	for i := 1; i < len(results); i++ {
		assert.Greater(t, results[i].Temperature, results[i-1].Temperature)
	}
}

func TestRunSweepDropsOvershootingPoint(t *testing.T) {
	// ceil((1.9-1.0)/0.5)+1 = 3 nominal points, but 2.0 overshoots T end and
	// must be dropped.
	p := smallParams()
	p.TStart = 1.0
	p.TEnd = 1.9
	p.TStep = 0.5
	rng := rand.New(rand.NewSource(2))

	calls := 0
	results := ising.RunSweep(p, rng, func(currentT float64, done, total int) {
		calls++
	})
	require.Len(t, results, 2)
	assert.Equal(t, 2, calls)
	assert.InDelta(t, 1.5, results[1].Temperature, 1e-12)
}

func TestRunSweepNilProgress(t *testing.T) {
	p := smallParams()
	p.TStart = 1.0
	p.TEnd = 1.0
	p.TStep = 0.1
	rng := rand.New(rand.NewSource(3))

	results := ising.RunSweep(p, rng, nil)
	require.Len(t, results, 1)
}
