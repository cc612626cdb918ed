package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const tablePadding = 2

// maxCellWidth keeps long message bodies from pushing columns off screen.
const maxCellWidth = 72

// writeTable prints rows under headers in aligned columns. The last column
// is not padded. Cells wider than maxCellWidth are truncated with an
// ellipsis.
func writeTable(out io.Writer, headers []string, rows [][]string) error {
	cols := len(headers)
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}

	fit := func(row []string) []string {
		cells := make([]string, cols)
		for i := range cells {
			if i < len(row) {
				cells[i] = runewidth.Truncate(strings.TrimSpace(row[i]), maxCellWidth, "…")
			}
		}
		return cells
	}

	table := make([][]string, 0, len(rows)+1)
	if len(headers) > 0 {
		table = append(table, fit(headers))
	}
	for _, row := range rows {
		table = append(table, fit(row))
	}

	widths := make([]int, cols)
	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	w := bufio.NewWriter(out)
	for _, row := range table {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(cell)
			if i < cols-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+tablePadding))
			}
		}
		if _, err := w.WriteString(strings.TrimRight(line.String(), " ") + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
