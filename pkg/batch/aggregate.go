package batch

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kacperjurak/goisingcore/pkg/report"
)

// Sample is one run's (disorder probability, best Tc) pair.
type Sample struct {
	P   float64
	Tc  float64
	Dir string
}

// parseSummaryPTc leniently pulls p and Tc_best out of a summary file.
// Runs without a valid Tc are skipped by the caller.
func parseSummaryPTc(path string) (pVal, tc float64, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, false
	}
	var haveP, haveTc bool
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "p =") {
			if v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "p =")), 64); err == nil {
				pVal, haveP = v, true
			}
		} else if strings.HasPrefix(line, "Tc_best") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				if v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
					tc, haveTc = v, true
				}
			}
		}
	}
	return pVal, tc, haveP && haveTc
}

// CollectSamples gathers the (p, Tc_best) samples of the most recent runs
// under root. limit <= 0 means no limit.
func CollectSamples(root string, limit int) []Sample {
	runs := report.FindSavedRuns(root)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	var samples []Sample
	for _, run := range runs {
		if p, tc, ok := parseSummaryPTc(filepath.Join(run.Dir, "summary.txt")); ok {
			samples = append(samples, Sample{P: p, Tc: tc, Dir: run.Name})
		}
	}
	return samples
}

// GroupByP buckets samples by disorder probability, keyed at 1e-6 resolution
// so float formatting noise does not split a group.
func GroupByP(samples []Sample) map[int64][]Sample {
	groups := make(map[int64][]Sample)
	for _, s := range samples {
		key := int64(math.Round(s.P * 1e6))
		groups[key] = append(groups[key], s)
	}
	return groups
}

// WriteAggregateCSV writes one row per disorder probability with the mean
// and sample standard deviation of the best Tc across runs.
func WriteAggregateCSV(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "p,runs,tc_mean,tc_std"); err != nil {
		return err
	}

	groups := GroupByP(samples)
	keys := make([]int64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	for _, k := range keys {
		group := groups[k]
		mean := 0.0
		for _, s := range group {
			mean += s.Tc
		}
		mean /= float64(len(group))

		std := 0.0
		if len(group) >= 2 {
			variance := 0.0
			for _, s := range group {
				d := s.Tc - mean
				variance += d * d
			}
			variance /= float64(len(group) - 1)
			std = math.Sqrt(variance)
		}

		_, err := fmt.Fprintf(f, "%.6f,%d,%.8f,%.8f\n",
			float64(k)/1e6, len(group), mean, std)
		if err != nil {
			return err
		}
	}
	return nil
}
