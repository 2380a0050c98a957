// Package reconcile merges per-section extracted records into the canonical
// Final Data Table row for each deal. Use of Proceeds and Projected Results
// are extracted in isolation because the model handles them better that way;
// reconciliation recombines them without re-querying the model.
package reconcile

import (
	"ppm_extraction/pkg/core/section"
)

// Merge enriches Final Data Table records in place from the matching
// Use of Proceeds and Projected Results records, keyed by Deal_ID. Only the
// Final Data Table records are mutated; the other two lists are read-only
// inputs. No new records are created: a deal with no Final Data Table record
// gets nothing, and a Final Data Table record with no match in a source list
// is left untouched for that step. The (possibly mutated) Final Data Table
// list is returned for convenience.
func Merge(finalTable, useOfProceeds, projectedResults []section.Record) []section.Record {
	uopByDeal := indexByDeal(useOfProceeds)
	prByDeal := indexByDeal(projectedResults)

	for _, rec := range finalTable {
		id := rec.DealID()
		if uop, ok := uopByDeal[id]; ok {
			mergeUseOfProceeds(rec, uop)
		}
		if pr, ok := prByDeal[id]; ok {
			mergeProjectedResults(rec, pr)
		}
	}
	return finalTable
}

// indexByDeal keeps the first record seen per Deal_ID; the model is expected
// to emit at most one record per deal for these sections.
func indexByDeal(records []section.Record) map[string]section.Record {
	idx := make(map[string]section.Record, len(records))
	for _, r := range records {
		id := r.DealID()
		if id == "" {
			continue
		}
		if _, seen := idx[id]; !seen {
			idx[id] = r
		}
	}
	return idx
}

// mergeUseOfProceeds applies the Use of Proceeds record to the final row.
// Use of Proceeds is authoritative for its whole field set once a deal
// matches: a present non-"N/A" value overwrites, and an absent or "N/A"
// value explicitly resets the field to "N/A" so stale prior values cannot
// survive the merge.
func mergeUseOfProceeds(dst, src section.Record) {
	for field := range src {
		if field == section.DealIDField {
			continue
		}
		applyFieldPrecedence(dst, src, field)
	}
	for _, field := range section.BaseHeaders(section.UseOfProceeds) {
		if field == section.DealIDField {
			continue
		}
		if _, present := src[field]; !present {
			dst[field] = section.NotAvailable
		}
	}
}

// mergeProjectedResults folds Year_N sub-objects into the final row.
// When both sides hold a sub-object for the same year the union is shallow
// and Projected Results wins conflicts; when either side is not a sub-object
// the Projected Results value replaces wholesale. Non-year keys follow the
// same not-"N/A"-wins rule as the Use of Proceeds merge.
func mergeProjectedResults(dst, src section.Record) {
	for key, srcVal := range src {
		if key == section.DealIDField {
			continue
		}
		if _, isYear := section.YearNumber(key); !isYear {
			applyFieldPrecedence(dst, src, key)
			continue
		}
		srcYear, srcIsMap := srcVal.(map[string]interface{})
		dstYear, dstIsMap := dst[key].(map[string]interface{})
		if !srcIsMap || !dstIsMap {
			dst[key] = srcVal
			continue
		}
		merged := make(map[string]interface{}, len(dstYear)+len(srcYear))
		for k, v := range dstYear {
			merged[k] = v
		}
		for k, v := range srcYear {
			merged[k] = v
		}
		dst[key] = merged
	}
}

// applyFieldPrecedence writes src's value for field into dst unless the
// value is missing, nil, or the "N/A" placeholder, in which case the field
// is reset to "N/A".
func applyFieldPrecedence(dst, src section.Record, field string) {
	v, ok := src[field]
	if !ok || v == nil {
		dst[field] = section.NotAvailable
		return
	}
	if s, isStr := v.(string); isStr && s == section.NotAvailable {
		dst[field] = section.NotAvailable
		return
	}
	dst[field] = v
}
