package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	defaultPlotHeight = 6
	minPlotWidth      = 10
	axisSeparator     = " │ "
)

// plotSpeeds renders a braille line chart of the speed series. The
// vertical axis is labeled with the actual wpm range.
func plotSpeeds(w io.Writer, values []float64, width, height int) error {
	if len(values) < 2 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	minVal, maxVal := seriesRange(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}
	points := resample(values, width)

	// Each cell carries a 2x4 braille dot grid.
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	prevX, prevY := -1, -1
	for x, v := range points {
		px := x * 2
		py := valueToRow(v, minVal, maxVal, height*4)
		if prevX >= 0 {
			drawLine(prevX, prevY, px, py, func(dx, dy int) {
				setBrailleDot(cells, dx, dy)
			})
		} else {
			setBrailleDot(cells, px, py)
		}
		prevX, prevY = px, py
	}

	labels := axisLabels(minVal, maxVal, height)
	labelWidth := 0
	for _, label := range labels {
		if n := len(label); n > labelWidth {
			labelWidth = n
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", labelWidth, labels[y], axisSeparator)
		for x := 0; x < width; x++ {
			row.WriteRune(rune(0x2800 + int(cells[y][x])))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(row.String(), string(rune(0x2800)))); err != nil {
			return err
		}
	}
	return nil
}

func axisLabels(minVal, maxVal float64, height int) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = strconv.Itoa(int(math.Round(maxVal)))
	if height > 1 {
		labels[height-1] = strconv.Itoa(int(math.Round(minVal)))
	}
	return labels
}

func seriesRange(values []float64) (float64, float64) {
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// resample stretches or averages values onto exactly width points.
func resample(values []float64, width int) []float64 {
	if len(values) == width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	if len(values) > width {
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			if end > len(values) {
				end = len(values)
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func valueToRow(v, minVal, maxVal float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return row
}

// drawLine walks the Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	masks := [2][4]uint8{
		{0x01, 0x02, 0x04, 0x40},
		{0x08, 0x10, 0x20, 0x80},
	}
	return masks[x][y]
}
