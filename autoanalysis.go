package goisingcore

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrNoAnalysisData is returned when the estimator sequence is empty.
	ErrNoAnalysisData = errors.New("no data points for auto analysis")
	// ErrLengthMismatch is returned when the estimator arrays disagree in length.
	ErrLengthMismatch = errors.New("input arrays must have the same length")
	// ErrNoWindow is returned when no half-maximum interval is available for
	// a peak rank.
	ErrNoWindow = errors.New("failed to determine window from intervals")
)

// AutoWindow is a derived temperature envelope (union of the half-maximum
// intervals) and critical-temperature overlap range (their intersection,
// falling back to the envelope when the intersection is empty).
type AutoWindow struct {
	TEnvelopeMin float64
	TEnvelopeMax float64
	TcOverlapMin float64
	TcOverlapMax float64
}

// AutoAnalysisIntervals is the full auto-analysis output: a primary window
// from the tallest heat-capacity/susceptibility peaks, an optional secondary
// window from the second-tallest ones, and three diagnostic peak locations
// (NaN when no peak exists).
type AutoAnalysisIntervals struct {
	Primary     AutoWindow
	Secondary   *AutoWindow
	CPeakT      float64
	ChiPeakT    float64
	MSlopePeakT float64
}

// HalfInterval is the temperature range around a peak where the curve stays
// at or above half the peak value.
type HalfInterval struct {
	Left  float64
	Right float64
}

// ComputeIntervals derives the candidate analysis windows from the sampled
// heat capacity, susceptibility and magnetization curves.
func ComputeIntervals(temps, heatCaps, suscepts, mags []float64) (AutoAnalysisIntervals, error) {
	n := len(temps)
	if n == 0 {
		return AutoAnalysisIntervals{}, ErrNoAnalysisData
	}
	if len(heatCaps) != n || len(suscepts) != n || len(mags) != n {
		return AutoAnalysisIntervals{}, ErrLengthMismatch
	}

	cIntervals := TwoPeakHalfIntervals(heatCaps, temps)
	chiIntervals := TwoPeakHalfIntervals(suscepts, temps)

	out := AutoAnalysisIntervals{
		CPeakT:      math.NaN(),
		ChiPeakT:    math.NaN(),
		MSlopePeakT: math.NaN(),
	}
	if t, ok := PeakLocation(heatCaps, temps); ok {
		out.CPeakT = t
	}
	if t, ok := PeakLocation(suscepts, temps); ok {
		out.ChiPeakT = t
	}
	if t, ok := SlopePeakLocation(mags, temps); ok {
		out.MSlopePeakT = t
	}

	primary, err := BuildWindow(cIntervals[0], chiIntervals[0])
	if err != nil {
		return AutoAnalysisIntervals{}, err
	}
	out.Primary = primary

	if cIntervals[1] != nil || chiIntervals[1] != nil {
		if secondary, err := BuildWindow(cIntervals[1], chiIntervals[1]); err == nil {
			out.Secondary = &secondary
		}
	}
	return out, nil
}

// TwoPeakHalfIntervals finds up to two dominant local maxima of a curve and
// their half-maximum intervals, ranked by peak value. A candidate qualifies
// when it is a non-strict local maximum, strictly positive, at index >= 5
// (the low-temperature boundary is never a transition), and strong: the few
// points walking down from the peak must all exceed the mean of everything
// to the peak's left, which rejects shallow shoulders.
func TwoPeakHalfIntervals(values, temps []float64) [2]*HalfInterval {
	var result [2]*HalfInterval
	if len(values) == 0 {
		return result
	}
	var peaks []int
	n := len(values)
	if n == 1 {
		peaks = append(peaks, 0)
	} else {
		for i := 0; i < n; i++ {
			v := values[i]
			leftOK := i == 0 || v >= values[i-1]
			rightOK := i == n-1 || v >= values[i+1]
			if !leftOK || !rightOK || v <= 0 {
				continue
			}
			if i < 5 {
				continue
			}
			meanLeft := 0.0
			for _, lv := range values[:i] {
				meanLeft += lv
			}
			meanLeft /= float64(i)
			strongEnough := true
			maxK := 3
			if i < maxK {
				maxK = i
			}
			for k := 0; k < maxK; k++ {
				if values[i-k] <= meanLeft {
					strongEnough = false
					break
				}
			}
			if strongEnough {
				peaks = append(peaks, i)
			}
		}
	}
	sort.SliceStable(peaks, func(a, b int) bool {
		return values[peaks[a]] > values[peaks[b]]
	})
	if len(peaks) > 2 {
		peaks = peaks[:2]
	}

	for slot, idx := range peaks {
		peakVal := values[idx]
		if peakVal <= 0 {
			continue
		}
		half := peakVal / 2

		leftIdx := idx
		for leftIdx > 0 && values[leftIdx-1] >= half {
			leftIdx--
		}
		rightIdx := idx
		last := len(values) - 1
		for rightIdx < last && values[rightIdx+1] >= half {
			rightIdx++
		}
		result[slot] = &HalfInterval{Left: temps[leftIdx], Right: temps[rightIdx]}
	}
	return result
}

// BuildWindow combines the same-rank intervals from both curves: the
// envelope spans all of them, the overlap is their common sub-range.
func BuildWindow(intervals ...*HalfInterval) (AutoWindow, error) {
	var lefts, rights []float64
	for _, it := range intervals {
		if it != nil {
			lefts = append(lefts, it.Left)
			rights = append(rights, it.Right)
		}
	}
	if len(lefts) == 0 {
		return AutoWindow{}, ErrNoWindow
	}

	w := AutoWindow{
		TEnvelopeMin: math.Inf(1),
		TEnvelopeMax: math.Inf(-1),
		TcOverlapMin: math.Inf(-1),
		TcOverlapMax: math.Inf(1),
	}
	for _, l := range lefts {
		if l < w.TEnvelopeMin {
			w.TEnvelopeMin = l
		}
		if l > w.TcOverlapMin {
			w.TcOverlapMin = l
		}
	}
	for _, r := range rights {
		if r > w.TEnvelopeMax {
			w.TEnvelopeMax = r
		}
		if r < w.TcOverlapMax {
			w.TcOverlapMax = r
		}
	}
	if !(w.TcOverlapMin <= w.TcOverlapMax) {
		w.TcOverlapMin = w.TEnvelopeMin
		w.TcOverlapMax = w.TEnvelopeMax
	}
	return w, nil
}

// PeakLocation is the temperature of the curve's argmax, requiring a
// strictly positive peak.
func PeakLocation(values, temps []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	idx := 0
	peak := values[0]
	for i, v := range values {
		if v > peak {
			peak = v
			idx = i
		}
	}
	if peak <= 0 {
		return 0, false
	}
	return temps[idx], true
}

// SlopePeakLocation is the temperature where the central-difference slope of
// the magnetization curve has the largest magnitude.
func SlopePeakLocation(mags, temps []float64) (float64, bool) {
	n := len(mags)
	if n < 3 {
		return 0, false
	}
	slopes := make([]float64, n)
	for i := 1; i < n-1; i++ {
		dt := temps[i+1] - temps[i-1]
		if dt != 0 {
			slopes[i] = (mags[i+1] - mags[i-1]) / dt
		}
	}
	idx := 1
	peakAbs := math.Abs(slopes[1])
	for i := 2; i < n-1; i++ {
		v := math.Abs(slopes[i])
		if v > peakAbs {
			peakAbs = v
			idx = i
		}
	}
	if peakAbs <= 0 {
		return 0, false
	}
	return temps[idx], true
}
