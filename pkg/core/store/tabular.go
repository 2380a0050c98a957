package store

import (
	"context"
	"fmt"

	"ppm_extraction/pkg/core/section"
)

// TabularStore persists the fixed-width section tables produced for each
// deal. Implementations are keyed by sheet name, one sheet per section.
type TabularStore interface {
	// AppendRows appends rows to the bottom of the named sheet, creating
	// the sheet if the backend supports it.
	AppendRows(ctx context.Context, sheet string, rows [][]string) error

	// DeleteLastRow removes the bottom row of the named sheet. Deleting
	// from an empty sheet is a no-op.
	DeleteLastRow(ctx context.Context, sheet string) error

	// DeleteRow removes the row at the given zero-based index, header
	// included in the count. An out-of-range index is a no-op.
	DeleteRow(ctx context.Context, sheet string, index int) error

	// Rows returns every row of the named sheet, header included.
	Rows(ctx context.Context, sheet string) ([][]string, error)

	// SheetNames lists the sheets currently present in the store.
	SheetNames(ctx context.Context) ([]string, error)
}

// EnsureHeader appends the header row to an empty sheet. Sheets that
// already have content are left alone, even if their first row differs,
// so that manually curated spreadsheets are not rewritten.
func EnsureHeader(ctx context.Context, st TabularStore, sheet string, header []string) error {
	rows, err := st.Rows(ctx, sheet)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	return st.AppendRows(ctx, sheet, [][]string{header})
}

// ErrorPrefix marks a row recording a processing failure. Rows carrying
// it are transient markers, replaced when the deal is retried.
const ErrorPrefix = "Processing error: "

// ErrorRow builds a placeholder row recording a processing failure for a
// deal. The first cell carries the deal ID, the second the failure, and
// the remainder is padded so the row matches the sheet width.
func ErrorRow(dealID, msg string, width int) []string {
	if width < 2 {
		width = 2
	}
	row := make([]string, width)
	row[0] = dealID
	row[1] = ErrorPrefix + msg
	for i := 2; i < width; i++ {
		row[i] = section.NotAvailable
	}
	return row
}

// DealData collects every row matching the given deal ID across all
// sheets that carry a Deal_ID column, returned as one field map per row.
func DealData(ctx context.Context, st TabularStore, dealID string) (map[string][]map[string]string, error) {
	names, err := st.SheetNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]map[string]string)
	for _, name := range names {
		rows, err := st.Rows(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", name, err)
		}
		if len(rows) < 2 {
			continue
		}

		header := rows[0]
		idCol := columnIndex(header, section.DealIDField)
		if idCol < 0 {
			continue
		}

		var matches []map[string]string
		for _, row := range rows[1:] {
			if idCol >= len(row) || row[idCol] != dealID {
				continue
			}
			fields := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(row) {
					fields[col] = row[i]
				} else {
					fields[col] = ""
				}
			}
			matches = append(matches, fields)
		}
		if len(matches) > 0 {
			out[name] = matches
		}
	}
	return out, nil
}

// AllDealIDs returns the distinct deal IDs present across all sheets.
func AllDealIDs(ctx context.Context, st TabularStore) ([]string, error) {
	names, err := st.SheetNames(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, name := range names {
		rows, err := st.Rows(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", name, err)
		}
		if len(rows) < 2 {
			continue
		}
		idCol := columnIndex(rows[0], section.DealIDField)
		if idCol < 0 {
			continue
		}
		for _, row := range rows[1:] {
			if idCol >= len(row) || row[idCol] == "" {
				continue
			}
			if _, ok := seen[row[idCol]]; ok {
				continue
			}
			seen[row[idCol]] = struct{}{}
			ids = append(ids, row[idCol])
		}
	}
	return ids, nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
