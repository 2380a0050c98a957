// Package project flattens variable-shape section records into fixed-width
// rows ready for the tabular store. Header and rows always have identical
// length, so downstream append calls never see a ragged table.
package project

import (
	"fmt"
	"sort"

	"ppm_extraction/pkg/core/section"
)

// Table is the projection result: one header and zero-or-more value rows,
// all of equal width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Project maps a section's records onto its fixed column set. For sections
// with year columns the header is extended by the Year_N keys discovered
// across all records, ascending numerically, five sub-field columns per
// year. Missing fields project as "N/A".
func Project(name section.Name, records []section.Record) Table {
	header := section.BaseHeaders(name)

	var years []int
	if section.HasYearColumns(name) {
		years = discoverYears(records)
		for _, y := range years {
			for _, sub := range section.YearSubFields {
				header = append(header, fmt.Sprintf("Year_%d_%s", y, sub))
			}
		}
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, projectRecord(rec, name, years, len(header)))
	}
	return Table{Header: header, Rows: rows}
}

// discoverYears collects the distinct Year_N numbers present across the
// records, sorted ascending. Gaps are allowed; the column set reflects only
// what was actually extracted.
func discoverYears(records []section.Record) []int {
	seen := map[int]bool{}
	for _, rec := range records {
		for key := range rec {
			if n, ok := section.YearNumber(key); ok {
				seen[n] = true
			}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func projectRecord(rec section.Record, name section.Name, years []int, width int) []string {
	row := make([]string, 0, width)
	for _, field := range section.BaseHeaders(name) {
		row = append(row, fieldValue(rec, field))
	}
	for _, y := range years {
		row = append(row, yearValues(rec, y)...)
	}
	return row
}

func fieldValue(rec section.Record, field string) string {
	v, ok := rec[field]
	if !ok || v == nil {
		return section.NotAvailable
	}
	if s, isStr := v.(string); isStr {
		if s == "" {
			return section.NotAvailable
		}
		return s
	}
	return fmt.Sprintf("%v", v)
}

// yearValues projects one Year_N sub-object to its five columns. A year the
// record does not carry, or carries as a non-object, pads with "N/A".
func yearValues(rec section.Record, year int) []string {
	out := make([]string, 0, len(section.YearSubFields))
	sub, _ := rec[fmt.Sprintf("Year_%d", year)].(map[string]interface{})
	for _, field := range section.YearSubFields {
		out = append(out, fieldValue(section.Record(sub), field))
	}
	return out
}
