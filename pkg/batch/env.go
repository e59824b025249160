package batch

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kacperjurak/goisingcore"
	"github.com/kacperjurak/goisingcore/pkg/config"
)

// Environment variables of the batch protocol.
const (
	ModeVar       = "BATCH_MODE"
	OutputRootVar = "BATCH_OUTPUT_ROOT"
	WindowModeVar = "BATCH_WINDOW_MODE"
)

// Window selection modes.
const (
	WindowAuto  = "auto"
	WindowFixed = "fixed"
)

var requiredVars = []string{
	"BATCH_L",
	"BATCH_J",
	"BATCH_P",
	"BATCH_T_START",
	"BATCH_T_END",
	"BATCH_T_STEP",
	"BATCH_MC_STEPS",
	"BATCH_THERM_STEPS",
	"BATCH_STRIDE",
	"BATCH_H",
}

// Enabled reports whether the process was started in headless batch mode.
func Enabled() bool {
	return os.Getenv(ModeVar) != ""
}

// ParamsFromEnv assembles run parameters from the BATCH_* variables. Missing
// required variables and out-of-constraint values are fatal startup errors;
// the returned message names the variable or field and the raw value.
func ParamsFromEnv() (goisingcore.SimParams, error) {
	for _, name := range requiredVars {
		if _, ok := os.LookupEnv(name); !ok {
			return goisingcore.SimParams{}, fmt.Errorf("required environment variable %s is not set", name)
		}
	}

	init := goisingcore.Random
	switch os.Getenv("BATCH_INIT") {
	case "AllUp":
		init = goisingcore.AllUp
	case "AllDown":
		init = goisingcore.AllDown
	}

	sampleCount := "1"
	if raw, ok := os.LookupEnv("BATCH_SAMPLE_COUNT"); ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			sampleCount = raw
		}
	}

	tcStep := "0.0001"
	if raw, ok := os.LookupEnv("BATCH_TC_STEP"); ok {
		tcStep = raw
	}

	raw := config.RawParams{
		L:             os.Getenv("BATCH_L"),
		J:             os.Getenv("BATCH_J"),
		P:             os.Getenv("BATCH_P"),
		H:             os.Getenv("BATCH_H"),
		InitialState:  init,
		TStart:        os.Getenv("BATCH_T_START"),
		TEnd:          os.Getenv("BATCH_T_END"),
		TStep:         os.Getenv("BATCH_T_STEP"),
		TcStep:        tcStep,
		MCSteps:       os.Getenv("BATCH_MC_STEPS"),
		ThermSteps:    os.Getenv("BATCH_THERM_STEPS"),
		Stride:        os.Getenv("BATCH_STRIDE"),
		SampleCount:   sampleCount,
		OutlierFilter: os.Getenv("BATCH_OUTLIER_FILTER") == "1",
	}
	return raw.Parse()
}

// WindowModeFromEnv returns the window selection mode, defaulting to fixed.
func WindowModeFromEnv() string {
	if os.Getenv(WindowModeVar) == WindowAuto {
		return WindowAuto
	}
	return WindowFixed
}

// ApplyFixedWindowFromEnv sets the analysis and Tc windows from the fixed
// window variables, falling back to the historical defaults for any that are
// absent or unparseable.
func ApplyFixedWindowFromEnv(p *goisingcore.SimParams) {
	p.TAnalysisMin = envFloat("BATCH_T_MIN", 2.0)
	p.TAnalysisMax = envFloat("BATCH_T_MAX", 2.45)
	p.TcMin = envFloat("BATCH_TC_MIN", 2.25)
	p.TcMax = envFloat("BATCH_TC_MAX", 2.45)
}

// OutputRootFromEnv returns the batch output root directory.
func OutputRootFromEnv() string {
	if root := os.Getenv(OutputRootVar); root != "" {
		return root
	}
	return "data_batch"
}

func envFloat(name string, fallback float64) float64 {
	if raw, ok := os.LookupEnv(name); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}
