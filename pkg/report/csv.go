package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/kacperjurak/goisingcore"
)

// ScanCSVHeader is the column layout of the per-temperature series file.
const ScanCSVHeader = "temperature,e_per_spin,m_abs_per_spin,c_per_spin,susceptibility"

// TcScanCSVHeader is the column layout of the trial-by-trial Tc scan file.
const TcScanCSVHeader = "tc,beta,r_squared,slope,intercept,fit_points,is_valid"

// WriteScanCSV writes one row per sampled temperature, 8-decimal fixed
// formatting throughout.
func WriteScanCSV(path string, results []goisingcore.SimResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, ScanCSVHeader); err != nil {
		return err
	}
	for _, r := range results {
		_, err := fmt.Fprintf(f, "%.8f,%.8f,%.8f,%.8f,%.8f\n",
			r.Temperature, r.MeanE, r.MeanM, r.HeatCap, r.Susceptibility)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadScanCSV loads a previously written series file for re-analysis. Rows
// that are short or unparseable are skipped, matching the tolerant readers
// used downstream of this format.
func ReadScanCSV(path string) ([]goisingcore.SimResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var results []goisingcore.SimResult
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for k := 0; k < 5; k++ {
			v, err := strconv.ParseFloat(row[k], 64)
			if err != nil {
				ok = false
				break
			}
			vals[k] = v
		}
		if !ok {
			continue
		}
		results = append(results, goisingcore.SimResult{
			Temperature:    vals[0],
			MeanE:          vals[1],
			MeanM:          vals[2],
			HeatCap:        vals[3],
			Susceptibility: vals[4],
		})
	}
	return results, nil
}

// WriteTcScanCSV enumerates every scan trial in increasing Tc order.
func WriteTcScanCSV(path string, scan []goisingcore.TcScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, TcScanCSVHeader); err != nil {
		return err
	}
	for _, r := range scan {
		_, err := fmt.Fprintf(f, "%.8f,%.8f,%.8f,%.8f,%.8f,%d,%t\n",
			r.Tc, r.Beta, r.RSquared, r.Slope, r.Intercept, r.FitPoints, r.IsValid)
		if err != nil {
			return err
		}
	}
	return nil
}
