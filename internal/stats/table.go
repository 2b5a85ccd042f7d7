package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// formatTable lays out rows as space-separated aligned columns.
// alignRight marks numeric columns; missing cells render empty.
func formatTable(headers []string, rows [][]string, alignRight []bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	measure := func(row []string) {
		for i := 0; i < colCount && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, layoutRow(headers, widths, alignRight))
	for _, row := range rows {
		lines = append(lines, layoutRow(row, widths, alignRight))
	}
	return lines
}

func layoutRow(row []string, widths []int, alignRight []bool) string {
	var b strings.Builder
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		right := i < len(alignRight) && alignRight[i]
		b.WriteString(padCell(cell, width, right))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, alignRight bool) string {
	gap := width - runewidth.StringWidth(value)
	if gap <= 0 {
		return value
	}
	if alignRight {
		return strings.Repeat(" ", gap) + value
	}
	return value + strings.Repeat(" ", gap)
}
