// Package section defines the six fixed PPM data sections and their record
// shapes. Section schemas are data, not code: the extractor, reconciler and
// row projector all drive off the tables in this package.
package section

import (
	"regexp"
	"strconv"
)

// Name identifies one of the six logical sections of a PPM document.
// The string value doubles as the JSON payload key the model is asked to
// emit and as the target sheet name in the tabular store.
type Name string

const (
	Leadership       Name = "Leadership"
	Compensation     Name = "Compensation"
	TrackRecord      Name = "Track Record"
	ProjectedResults Name = "Projected Results"
	UseOfProceeds    Name = "Use of Proceeds"
	FinalDataTable   Name = "Final Data Table"
)

// NotAvailable is the canonical placeholder for a missing field value.
// Records reaching the row projector never omit a field; they carry this
// literal instead.
const NotAvailable = "N/A"

// DealIDField is the field every record carries to tie it to its Deal.
const DealIDField = "Deal_ID"

// MaxYears is the projection horizon of the document schema (Year_1..Year_11).
const MaxYears = 11

// YearSubFields lists the five metrics of a Year_N sub-object, in the
// column order used by the row projector.
var YearSubFields = []string{
	"Cash_on_Cash",
	"Ending_Balance",
	"Gross_Revenue",
	"Total_Expenses",
	"NOI",
}

// All returns the six sections in pipeline processing order.
func All() []Name {
	return []Name{
		Leadership,
		Compensation,
		TrackRecord,
		ProjectedResults,
		UseOfProceeds,
		FinalDataTable,
	}
}

var useOfProceedsFields = []string{
	"Loan_Proceeds",
	"Loan_Proceeds_%",
	"Equity_Proceeds",
	"Equity_Proceeds_%",
	"Selling_Commissions",
	"Selling_Commissions_%",
	"Property_Purchase_Price",
	"Property_Purchase_Price_%",
	"Trust_Held_Reserve",
	"Trust_Held_Reserve_%",
	"Acquisition_Fees",
	"Acquisition_Fees_%",
	"Bridge_Costs",
	"Bridge_Costs_%",
	"Total",
	"LTV_%",
	"Syndication_Load_%",
}

// baseHeaders holds the fixed column list per section. ProjectedResults and
// FinalDataTable are extended at projection time with discovered year columns.
var baseHeaders = map[Name][]string{
	Leadership: {
		DealIDField,
		"Name",
		"Title",
		"Description",
		"Years_in_Industry",
		"Sponsor_Name_Rank",
	},
	Compensation: {
		DealIDField,
		"Type_of_Payment",
		"Determination_of_Amount",
		"Estimated_Amount",
		"Sponsor_Compensation_Rank",
	},
	TrackRecord: {
		"Program_Name",
		"PPM_Projected_Cash_on_Cash_Return_2023",
		"Avg_Cash_on_Cash_Return_from_Inception_through_12/31/2023",
		"Property_Type",
		DealIDField,
		"Sponsor_Record_Rank",
	},
	ProjectedResults: {
		DealIDField,
	},
	UseOfProceeds:  append([]string{DealIDField}, useOfProceedsFields...),
	FinalDataTable: nil, // built below
}

func init() {
	fdt := []string{
		DealIDField,
		"Sponsor",
		"Deal_Title",
		"Disposition_Fee",
		"Expected_Hold_Years",
		"Lender_Type",
		"Diversified",
		"721_Upreit",
		"Distribution_Timing",
	}
	fdt = append(fdt, useOfProceedsFields...)
	baseHeaders[FinalDataTable] = fdt
}

// BaseHeaders returns the fixed (non-year) column list for a section.
// The returned slice is a copy and safe to append to.
func BaseHeaders(n Name) []string {
	src := baseHeaders[n]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// HasYearColumns reports whether the section's schema is extended by
// dynamically discovered Year_N columns.
func HasYearColumns(n Name) bool {
	return n == ProjectedResults || n == FinalDataTable
}

var yearKeyRe = regexp.MustCompile(`^Year_(\d+)$`)

// YearNumber parses a Year_N key. It returns the year number and true for
// keys of exactly that shape; anything else is untyped and reported false.
func YearNumber(key string) (int, bool) {
	m := yearKeyRe.FindStringSubmatch(key)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
