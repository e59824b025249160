package goisingcore

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/floats"
)

// ErrNoCriticalTemperature is returned when no scan trial produced a valid
// fit. Analysis degeneracy, not a run failure.
var ErrNoCriticalTemperature = errors.New("no critical temperature found")

// TcScanResult is one trial critical temperature of the log-log scan. Beta
// is the fitted slope interpreted as the critical exponent.
type TcScanResult struct {
	Tc        float64
	Beta      float64
	RSquared  float64
	Slope     float64
	Intercept float64
	FitPoints int
	IsValid   bool
}

// ScanProgressFunc is invoked synchronously after each fitted trial.
type ScanProgressFunc func(done, total int)

// MarkOutliers flags every result outside [tMin,tMax] whose heat capacity or
// susceptibility exceeds the respective maximum observed inside the window.
// A heuristic against boundary artifacts; the flagged points stay in the
// result sequence for reporting.
func MarkOutliers(results []SimResult, tMin, tMax float64) {
	maxC := math.Inf(-1)
	maxChi := math.Inf(-1)
	for _, r := range results {
		if r.Temperature >= tMin && r.Temperature <= tMax {
			if r.HeatCap > maxC {
				maxC = r.HeatCap
			}
			if r.Susceptibility > maxChi {
				maxChi = r.Susceptibility
			}
		}
	}
	if math.IsInf(maxC, 0) || math.IsInf(maxChi, 0) {
		return
	}
	for i := range results {
		r := &results[i]
		if (r.Temperature < tMin || r.Temperature > tMax) &&
			(r.HeatCap > maxC || r.Susceptibility > maxChi) {
			r.IsOutlier = true
		}
	}
}

// fitPoints collects (ln(tc-T), ln(M)) from every non-outlier sample below
// tc inside the analysis window with positive magnetization.
func fitPoints(results []SimResult, tc, tMin, tMax float64) (xs, ys []float64) {
	for _, r := range results {
		if r.IsOutlier {
			continue
		}
		if r.Temperature < tc && r.Temperature >= tMin && r.Temperature <= tMax && r.MeanM > 0 {
			xs = append(xs, math.Log(tc-r.Temperature))
			ys = append(ys, math.Log(r.MeanM))
		}
	}
	return xs, ys
}

// RunScan fits log(M) against log(Tc-T) for every trial Tc from TcMin to
// TcMax in TcStep increments and scores each trial by R². Trials with fewer
// than four points or a degenerate normal equation are recorded as invalid
// with R² = -Inf. progress may be nil; it fires only for fitted trials.
func RunScan(p SimParams, results []SimResult, progress ScanProgressFunc) []TcScanResult {
	tMin := p.TAnalysisMin
	tMax := p.TAnalysisMax

	nSteps := int(math.Round((p.TcMax - p.TcMin) / p.TcStep))
	total := nSteps + 1
	scan := make([]TcScanResult, 0, total)

	for i := 0; i <= nSteps; i++ {
		tc := p.TcMin + float64(i)*p.TcStep
		if tc < p.TcMin || tc > p.TcMax {
			continue
		}

		xs, ys := fitPoints(results, tc, tMin, tMax)
		if len(xs) < 4 {
			scan = append(scan, TcScanResult{
				Tc:        tc,
				RSquared:  math.Inf(-1),
				FitPoints: len(xs),
			})
			continue
		}

		n := float64(len(xs))
		sumX := floats.Sum(xs)
		sumY := floats.Sum(ys)
		sumX2 := floats.Dot(xs, xs)
		sumXY := floats.Dot(xs, ys)

		denominator := n*sumX2 - sumX*sumX
		if denominator == 0 {
			scan = append(scan, TcScanResult{
				Tc:        tc,
				RSquared:  math.Inf(-1),
				FitPoints: len(xs),
			})
			continue
		}

		slope := (n*sumXY - sumX*sumY) / denominator
		intercept := (sumY - slope*sumX) / n

		meanY := sumY / n
		ssTot := 0.0
		ssRes := 0.0
		for k := range ys {
			d := ys[k] - meanY
			ssTot += d * d
			e := ys[k] - (slope*xs[k] + intercept)
			ssRes += e * e
		}
		rSquared := 1.0
		if ssTot != 0 {
			rSquared = 1.0 - ssRes/ssTot
		}

		scan = append(scan, TcScanResult{
			Tc:        tc,
			Beta:      slope,
			RSquared:  rSquared,
			Slope:     slope,
			Intercept: intercept,
			FitPoints: len(xs),
			IsValid:   slope > 0 && rSquared > 0 && rSquared <= 1,
		})
		if progress != nil {
			progress(i+1, total)
		}
	}
	return scan
}

// BestScanResult selects the valid trial with the highest R². Ties keep the
// first-encountered (lowest Tc) trial.
func BestScanResult(scan []TcScanResult) (TcScanResult, bool) {
	best := TcScanResult{RSquared: math.Inf(-1)}
	found := false
	for _, r := range scan {
		if !r.IsValid || math.IsInf(r.RSquared, 0) || r.RSquared <= 0 {
			continue
		}
		if r.RSquared > best.RSquared {
			best = r
			found = true
		}
	}
	return best, found
}

// RefinedFit is the nonlinear refinement of M = A·(Tc-T)^β at a fixed Tc.
type RefinedFit struct {
	Amplitude float64
	Beta      float64
	Residual  float64
}

// RefinePowerLaw polishes the best grid trial with a Levenberg-Marquardt fit
// of the power law in direct (non-log) space, seeded from the OLS line. The
// grid result stays authoritative; this is a diagnostic companion value.
func RefinePowerLaw(p SimParams, results []SimResult, best TcScanResult) (rf RefinedFit, err error) {
	var temps, mags []float64
	for _, r := range results {
		if r.IsOutlier {
			continue
		}
		if r.Temperature < best.Tc && r.Temperature >= p.TAnalysisMin &&
			r.Temperature <= p.TAnalysisMax && r.MeanM > 0 {
			temps = append(temps, r.Temperature)
			mags = append(mags, r.MeanM)
		}
	}
	if len(temps) < 4 {
		return RefinedFit{}, fmt.Errorf("refine: need at least 4 points, got %d", len(temps))
	}

	fnc := func(dst, x []float64) {
		for i, t := range temps {
			dst[i] = mags[i] - x[0]*math.Pow(best.Tc-t, x[1])
		}
	}
	jac := lm.NumJac{Func: fnc}

	problem := lm.LMProblem{
		Dim:        2,
		Size:       len(temps),
		Func:       fnc,
		Jac:        jac.Jac,
		InitParams: []float64{math.Exp(best.Intercept), best.Slope},
		Tau:        1e-13,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	// Recover from LM panics (e.g., singular matrix)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refine: LM panicked: %v", r)
		}
	}()

	res, err := lm.LM(problem, &lm.Settings{Iterations: 1000, ObjectiveTol: 1e-16})
	if err != nil {
		return RefinedFit{}, fmt.Errorf("refine: LM failed: %w", err)
	}

	residual := 0.0
	dst := make([]float64, len(temps))
	fnc(dst, res.X)
	for _, d := range dst {
		residual += d * d
	}
	return RefinedFit{
		Amplitude: res.X[0],
		Beta:      res.X[1],
		Residual:  residual / float64(len(temps)),
	}, nil
}
