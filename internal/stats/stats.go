package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

const (
	sparkChars  = " .:-=+*#%@"
	trendWindow = 3
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatDuration renders a millisecond count as a compact duration.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %02ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// RenderSummary prints the aggregate reading summary.
func RenderSummary(w io.Writer, sum model.ReadingSummary) error {
	if sum.TotalDocuments == 0 {
		_, err := fmt.Fprintln(w, "No documents imported yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Reading summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Documents: %d (%d finished)\n", sum.TotalDocuments, sum.DocumentsCompleted); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Words read: %d\n", sum.TotalWordsRead); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time reading: %s\n", FormatDuration(sum.TotalTimeMs)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Average speed: %.0f wpm\n", sum.AverageWPM); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSpeedTrend prints a sparkline and plot of recent session
// speeds, oldest first.
func RenderSpeedTrend(w io.Writer, speeds []int, width int) error {
	if len(speeds) == 0 {
		return nil
	}
	values := make([]float64, len(speeds))
	minWPM, maxWPM := speeds[0], speeds[0]
	for i, s := range speeds {
		values[i] = float64(s)
		if s < minWPM {
			minWPM = s
		}
		if s > maxWPM {
			maxWPM = s
		}
	}
	if _, err := fmt.Fprintf(w, "Speed trend (%d sessions)\n", len(speeds)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s  %d-%d wpm\n", Sparkline(values), minWPM, maxWPM); err != nil {
		return err
	}
	if len(speeds) >= 2 {
		if err := plotSpeeds(w, MovingAverage(values, trendWindow), width, 0); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDocTable prints the per-document progress breakdown.
func RenderDocTable(w io.Writer, progress []model.DocumentProgress) error {
	if len(progress) == 0 {
		return nil
	}
	headers := []string{"Document", "Words", "Read", "Speed", "Time", "Status"}
	rows := make([][]string, 0, len(progress))
	for _, p := range progress {
		rows = append(rows, []string{
			p.Document.Title,
			fmt.Sprintf("%d", p.Document.WordCount),
			fmt.Sprintf("%d%%", progressPercent(p)),
			speedCell(p.SpeedWPM),
			timeCell(p.TimeMs),
			statusCell(p),
		})
	}
	lines := formatTable(headers, rows, []bool{false, true, true, true, true, false})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// Render prints the full report: summary, speed trend, and the
// per-document table.
func Render(w io.Writer, report Report, width int) error {
	if err := RenderSummary(w, report.Summary); err != nil {
		return err
	}
	if report.Summary.TotalDocuments == 0 {
		return nil
	}
	if err := RenderSpeedTrend(w, report.RecentSpeeds, width); err != nil {
		return err
	}
	return RenderDocTable(w, report.Progress)
}

func progressPercent(p model.DocumentProgress) int {
	total := p.Document.WordCount
	if total < 1 {
		return 0
	}
	if p.Completed {
		return 100
	}
	if p.TimeMs == 0 && p.Position == 0 {
		return 0
	}
	return (p.Position + 1) * 100 / total
}

func speedCell(wpm int) string {
	if wpm <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d wpm", wpm)
}

func timeCell(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return FormatDuration(ms)
}

func statusCell(p model.DocumentProgress) string {
	switch {
	case p.Completed:
		return "finished"
	case p.TimeMs > 0 || p.Position > 0:
		return "reading"
	default:
		return "new"
	}
}
