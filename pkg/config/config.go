// Package config validates raw run parameters into goisingcore.SimParams.
// Every field is parsed independently so errors can name the offending field
// and the raw value that was supplied.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kacperjurak/goisingcore"
)

// RawParams carries parameter fields as entered (CLI flags, UI buffers,
// environment). Parse turns them into validated SimParams.
type RawParams struct {
	L            string
	J            string
	P            string
	H            string
	InitialState goisingcore.InitialState
	TStart       string
	TEnd         string
	TStep        string
	TcStep       string
	MCSteps      string
	ThermSteps   string
	Stride       string
	SampleCount  string

	OutlierFilter bool
}

// FromParams fills raw buffers from existing parameters, for editing or
// round-tripping through a flag set.
func FromParams(p goisingcore.SimParams) RawParams {
	return RawParams{
		L:             strconv.Itoa(p.L),
		J:             formatFloat(p.J),
		P:             formatFloat(p.BondP),
		H:             formatFloat(p.H),
		InitialState:  p.InitialState,
		TStart:        formatFloat(p.TStart),
		TEnd:          formatFloat(p.TEnd),
		TStep:         formatFloat(p.TStep),
		TcStep:        formatFloat(p.TcStep),
		MCSteps:       strconv.Itoa(p.MCSteps),
		ThermSteps:    strconv.Itoa(p.ThermSteps),
		Stride:        strconv.Itoa(p.Stride),
		SampleCount:   strconv.Itoa(p.SampleCount),
		OutlierFilter: p.UseOutlierFilter,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseUint(field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got '%s'", field, raw)
	}
	return v, nil
}

func parseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got '%s'", field, raw)
	}
	return v, nil
}

// Parse validates every field and assembles SimParams. The analysis and Tc
// windows are initialized to the full sweep range; auto analysis or explicit
// window flags narrow them later.
func (r RawParams) Parse() (goisingcore.SimParams, error) {
	var zero goisingcore.SimParams

	l, err := parseUint("L", r.L)
	if err != nil {
		return zero, err
	}
	if l < 2 {
		return zero, errors.New("Lattice size L must be >= 2")
	}

	j, err := parseFloat("J", r.J)
	if err != nil {
		return zero, err
	}

	bondP, err := parseFloat("p", r.P)
	if err != nil {
		return zero, err
	}
	if bondP < 0 || bondP > 1 {
		return zero, errors.New("p must be in [0, 1]")
	}

	tStart, err := parseFloat("T start", r.TStart)
	if err != nil {
		return zero, err
	}
	if tStart <= 0 {
		return zero, errors.New("T start must be > 0")
	}

	tEnd, err := parseFloat("T end", r.TEnd)
	if err != nil {
		return zero, err
	}
	if tEnd < tStart {
		return zero, errors.New("T end must be >= T start")
	}

	tStep, err := parseFloat("T step", r.TStep)
	if err != nil {
		return zero, err
	}
	if tStep <= 0 {
		return zero, errors.New("T step must be > 0")
	}

	tcStep, err := parseFloat("Tc step", r.TcStep)
	if err != nil {
		return zero, err
	}
	if tcStep <= 0 {
		return zero, errors.New("Tc step must be > 0")
	}

	mcSteps, err := parseUint("MC Steps", r.MCSteps)
	if err != nil {
		return zero, err
	}
	if mcSteps < 2 {
		return zero, errors.New("MC Steps must be >= 2")
	}

	thermSteps, err := parseUint("Therm Steps", r.ThermSteps)
	if err != nil {
		return zero, err
	}
	if thermSteps == 0 {
		return zero, errors.New("Therm Steps must be >= 1")
	}

	stride, err := parseUint("Stride", r.Stride)
	if err != nil {
		return zero, err
	}
	if stride == 0 {
		return zero, errors.New("Stride must be >= 1")
	}

	h, err := parseFloat("H", r.H)
	if err != nil {
		return zero, err
	}

	sampleCount, err := parseUint("Disorder samples", r.SampleCount)
	if err != nil {
		return zero, err
	}
	if sampleCount == 0 {
		return zero, errors.New("Disorder samples must be >= 1")
	}

	return goisingcore.SimParams{
		L:                l,
		J:                j,
		BondP:            bondP,
		SampleCount:      sampleCount,
		InitialState:     r.InitialState,
		TStart:           tStart,
		TEnd:             tEnd,
		TStep:            tStep,
		TAnalysisMin:     tStart,
		TAnalysisMax:     tEnd,
		TcMin:            tStart,
		TcMax:            tEnd,
		TcStep:           tcStep,
		MCSteps:          mcSteps,
		ThermSteps:       thermSteps,
		Stride:           stride,
		H:                h,
		UseOutlierFilter: r.OutlierFilter,
	}, nil
}
