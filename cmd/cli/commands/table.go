package commands

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/export"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

const (
	minDateColWidth  = 16
	minShiftColWidth = 12
	emptyCell        = "—"
)

// columnWidths returns the display width of each grid column
func columnWidths(grid export.Grid) []int {
	widths := make([]int, len(grid.Header))
	for i, h := range grid.Header {
		widths[i] = minShiftColWidth
		if i == 0 {
			widths[i] = minDateColWidth
		}
		if n := utf8.RuneCountInString(h); n > widths[i] {
			widths[i] = n
		}
	}
	for _, row := range grid.Rows {
		for i, cell := range row {
			if i == 0 {
				continue
			}
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// pad right-pads s to width runes
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// dateLabel formats a grid date as "2006-01-02 Mon"
func dateLabel(s string) string {
	d, err := model.ParseDate(s)
	if err != nil {
		return s
	}
	return d.Format("2006-01-02 Mon")
}

// printGrid writes a schedule grid as a fixed-width table. Empty cells are highlighted
// and weekend dates are dimmed.
func printGrid(w io.Writer, grid export.Grid) {
	widths := columnWidths(grid)

	// Print header
	fmt.Fprint(w, colorBold)
	for i, h := range grid.Header {
		fmt.Fprintf(w, "%s  ", pad(h, widths[i]))
	}
	fmt.Fprintln(w, colorReset)

	// Print separator
	for _, width := range widths {
		fmt.Fprint(w, strings.Repeat("-", width))
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintln(w)

	for _, row := range grid.Rows {
		label := dateLabel(row[0])
		if d, err := model.ParseDate(row[0]); err == nil && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			fmt.Fprintf(w, "%s%s%s  ", colorDim, pad(label, widths[0]), colorReset)
		} else {
			fmt.Fprintf(w, "%s  ", pad(label, widths[0]))
		}

		for i := 1; i < len(row); i++ {
			if row[i] == "" {
				fmt.Fprintf(w, "%s%s%s  ", colorYellow, pad(emptyCell, widths[i]), colorReset)
				continue
			}
			fmt.Fprintf(w, "%s  ", pad(row[i], widths[i]))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// printConflicts lists unfilled and forced slots
func printConflicts(w io.Writer, conflicts []model.ConflictEntry) {
	if len(conflicts) == 0 {
		return
	}

	fmt.Fprintf(w, "⚠️  Conflicts (%d):\n", len(conflicts))
	for _, c := range conflicts {
		if c.Forced() {
			fmt.Fprintf(w, "  • %s %s - %sforced %s%s: %s\n",
				model.FormatDate(c.Date), c.ShiftName, colorYellow, c.WorkerName, colorReset, c.Reason)
			continue
		}

		fmt.Fprintf(w, "  • %s %s - %sunfilled%s\n", model.FormatDate(c.Date), c.ShiftName, colorRed, colorReset)
		for _, f := range c.Failures {
			fmt.Fprintf(w, "      %s: %s\n", f.WorkerName, f.Reason)
		}
	}
	fmt.Fprintln(w)
}
