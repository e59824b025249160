package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ising "github.com/kacperjurak/goisingcore"
	"github.com/kacperjurak/goisingcore/pkg/config"
)

func validRaw() config.RawParams {
	return config.RawParams{
		L:            "16",
		J:            "1.5",
		P:            "0.1",
		H:            "0.2",
		InitialState: ising.AllUp,
		TStart:       "1.0",
		TEnd:         "3.0",
		TStep:        "0.1",
		TcStep:       "0.001",
		MCSteps:      "500",
		ThermSteps:   "100",
		Stride:       "5",
		SampleCount:  "3",
	}
}

func TestParseValid(t *testing.T) {
	p, err := validRaw().Parse()
	require.NoError(t, err)

	assert.Equal(t, 16, p.L)
	assert.InDelta(t, 1.5, p.J, 1e-12)
	assert.InDelta(t, 0.1, p.BondP, 1e-12)
	assert.InDelta(t, 0.2, p.H, 1e-12)
	assert.Equal(t, ising.AllUp, p.InitialState)
	assert.Equal(t, 500, p.MCSteps)
	assert.Equal(t, 100, p.ThermSteps)
	assert.Equal(t, 5, p.Stride)
	assert.Equal(t, 3, p.SampleCount)
	assert.False(t, p.UseOutlierFilter)

	// the windows start as the full sweep range
	assert.InDelta(t, 1.0, p.TAnalysisMin, 1e-12)
	assert.InDelta(t, 3.0, p.TAnalysisMax, 1e-12)
	assert.InDelta(t, 1.0, p.TcMin, 1e-12)
	assert.InDelta(t, 3.0, p.TcMax, 1e-12)
}

func TestParseTrimsWhitespace(t *testing.T) {
	raw := validRaw()
	raw.L = " 16 "
	raw.J = "\t1.5"
	p, err := raw.Parse()
	require.NoError(t, err)
	assert.Equal(t, 16, p.L)
	assert.InDelta(t, 1.5, p.J, 1e-12)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.RawParams)
		want   string
	}{
		{"non-numeric L", func(r *config.RawParams) { r.L = "abc" }, "L must be a positive integer, got 'abc'"},
		{"negative L", func(r *config.RawParams) { r.L = "-4" }, "L must be a positive integer, got '-4'"},
		{"too small L", func(r *config.RawParams) { r.L = "1" }, "Lattice size L must be >= 2"},
		{"non-numeric J", func(r *config.RawParams) { r.J = "x" }, "J must be a number, got 'x'"},
		{"p above one", func(r *config.RawParams) { r.P = "1.5" }, "p must be in [0, 1]"},
		{"p below zero", func(r *config.RawParams) { r.P = "-0.1" }, "p must be in [0, 1]"},
		{"zero T start", func(r *config.RawParams) { r.TStart = "0" }, "T start must be > 0"},
		{"T end before start", func(r *config.RawParams) { r.TEnd = "0.5" }, "T end must be >= T start"},
		{"zero T step", func(r *config.RawParams) { r.TStep = "0" }, "T step must be > 0"},
		{"zero Tc step", func(r *config.RawParams) { r.TcStep = "0" }, "Tc step must be > 0"},
		{"too few MC steps", func(r *config.RawParams) { r.MCSteps = "1" }, "MC Steps must be >= 2"},
		{"zero therm steps", func(r *config.RawParams) { r.ThermSteps = "0" }, "Therm Steps must be >= 1"},
		{"zero stride", func(r *config.RawParams) { r.Stride = "0" }, "Stride must be >= 1"},
		{"non-numeric H", func(r *config.RawParams) { r.H = "oops" }, "H must be a number, got 'oops'"},
		{"zero samples", func(r *config.RawParams) { r.SampleCount = "0" }, "Disorder samples must be >= 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validRaw()
			tc.mutate(&raw)
			_, err := raw.Parse()
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestFromParamsRoundTrip(t *testing.T) {
	orig := ising.DefaultParams()
	orig.BondP = 0.05
	orig.SampleCount = 4
	orig.InitialState = ising.AllDown
	orig.UseOutlierFilter = true

	p, err := config.FromParams(orig).Parse()
	require.NoError(t, err)

	assert.Equal(t, orig.L, p.L)
	assert.InDelta(t, orig.J, p.J, 1e-12)
	assert.InDelta(t, orig.BondP, p.BondP, 1e-12)
	assert.Equal(t, orig.SampleCount, p.SampleCount)
	assert.Equal(t, orig.InitialState, p.InitialState)
	assert.InDelta(t, orig.TStart, p.TStart, 1e-12)
	assert.InDelta(t, orig.TEnd, p.TEnd, 1e-12)
	assert.InDelta(t, orig.TStep, p.TStep, 1e-12)
	assert.InDelta(t, orig.TcStep, p.TcStep, 1e-12)
	assert.Equal(t, orig.MCSteps, p.MCSteps)
	assert.Equal(t, orig.ThermSteps, p.ThermSteps)
	assert.Equal(t, orig.Stride, p.Stride)
	assert.True(t, p.UseOutlierFilter)
}
