package report

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/kacperjurak/goisingcore"
)

// WriteHTMLReport writes the detailed scan table with the best trial
// highlighted. best may be nil.
func WriteHTMLReport(path string, p goisingcore.SimParams, scan []goisingcore.TcScanResult, best *goisingcore.TcScanResult) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Tc log-log analysis</title></head>\n<body>\n")
	b.WriteString("<h1>Tc log-log analysis</h1>\n")
	fmt.Fprintf(&b, "<p>T analysis window: [%.6f, %.6f]</p>\n", p.TAnalysisMin, p.TAnalysisMax)
	fmt.Fprintf(&b, "<p>Tc scan range: [%.6f, %.6f] step %.6f</p>\n", p.TcMin, p.TcMax, p.TcStep)
	if best != nil {
		fmt.Fprintf(&b, "<p>Best Tc: %.8f, beta: %.8f, R²: %.8f, fit points: %d</p>\n",
			best.Tc, best.Beta, best.RSquared, best.FitPoints)
	} else {
		b.WriteString("<p>No valid Tc found (no positive-slope fits with R²>0).</p>\n")
	}
	b.WriteString("<table border=\"1\" cellspacing=\"0\" cellpadding=\"4\">\n")
	b.WriteString("<tr><th>Tc</th><th>beta</th><th>R²</th><th>slope</th><th>intercept</th><th>fit_points</th><th>valid</th></tr>\n")
	for _, r := range scan {
		highlight := ""
		if best != nil && math.Abs(best.Tc-r.Tc) < 1e-10 {
			highlight = " style=\"background-color:#ffffcc;\""
		}
		fmt.Fprintf(&b, "<tr%s><td>%.8f</td><td>%.8f</td><td>%.8f</td><td>%.8f</td><td>%.8f</td><td>%d</td><td>%t</td></tr>\n",
			highlight, r.Tc, r.Beta, r.RSquared, r.Slope, r.Intercept, r.FitPoints, r.IsValid)
	}
	b.WriteString("</table>\n</body>\n</html>\n")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
