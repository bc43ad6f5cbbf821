package database

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Print consumes the reader and renders the rows as an aligned ASCII
// table, one column per field, headed by the column indexes. Intended
// for debugging tools and tests.
func Print(ctx context.Context, w io.Writer, reader *Reader) error {
	count := reader.FieldsCount()

	headers := make([]string, count)
	widths := make([]int, count)
	for i := 0; i < count; i++ {
		headers[i] = strconv.Itoa(i)
		widths[i] = len(headers[i])
	}

	var rows [][]string
	for !reader.IsDone() {
		row := make([]string, count)
		for i := 0; i < count; i++ {
			field, err := reader.Field(i)
			if err != nil {
				return err
			}
			row[i] = field.Format()
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
		rows = append(rows, row)

		if err := reader.Next(ctx); err != nil {
			return err
		}
	}

	if err := printRow(w, headers, widths); err != nil {
		return err
	}
	if err := printSeparator(w, widths); err != nil {
		return err
	}
	for _, row := range rows {
		if err := printRow(w, row, widths); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return err
}

func printRow(w io.Writer, cells []string, widths []int) error {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
	}
	_, err := fmt.Fprintf(w, "| %s |\n", strings.Join(parts, " | "))
	return err
}

func printSeparator(w io.Writer, widths []int) error {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width)
	}
	_, err := fmt.Fprintf(w, "|-%s-|\n", strings.Join(parts, "-|-"))
	return err
}
