package highlight

import (
	"strings"
	"testing"
)

func wordsFrom(text string, y float64) []Word {
	var words []Word
	x := 10.0
	for _, tok := range strings.Fields(text) {
		w := float64(len(tok)) * 5
		words = append(words, Word{
			Text: tok,
			Box:  BoundingBox{X0: x, Y0: y, X1: x + w, Y1: y + 10},
		})
		x += w + 5
	}
	return words
}

func testPage(text string) Page {
	return Page{Number: 1, Words: wordsFrom(text, 700)}
}

// =============================================================================
// NORMALIZATION TESTS
// =============================================================================

func TestIsUninformative(t *testing.T) {
	for _, v := range []string{"no", "Yes", " N/A ", "0"} {
		if !IsUninformative(v) {
			t.Errorf("IsUninformative(%q) = false", v)
		}
	}
	for _, v := range []string{"$100", "Monthly", "1031 CF", ""} {
		if v != "" && IsUninformative(v) {
			t.Errorf("IsUninformative(%q) = true", v)
		}
	}
}

func TestFoldASCII(t *testing.T) {
	if got := FoldASCII("Société Générale"); got != "Societe Generale" {
		t.Errorf("FoldASCII = %q", got)
	}
}

func TestNormalizeAggressive(t *testing.T) {
	in := "pro-\nceeds   of the    offering total"
	got := NormalizeAggressive(in)
	if got != "proceeds of the offering total" {
		t.Errorf("NormalizeAggressive = %q", got)
	}
}

// =============================================================================
// LOCATOR TESTS
// =============================================================================

func TestExactLocatorFindsPhrase(t *testing.T) {
	page := testPage("The Sponsor is Acme Capital Partners LLC of Delaware")

	boxes := ExactLocator{}.Locate(page, "Acme Capital Partners")
	if len(boxes) != 1 {
		t.Fatalf("boxes = %v", boxes)
	}
	// Box must span from "Acme" through "Partners".
	if boxes[0].X0 != page.Words[3].Box.X0 || boxes[0].X1 != page.Words[5].Box.X1 {
		t.Errorf("span box = %+v", boxes[0])
	}
}

func TestExactLocatorNoMatch(t *testing.T) {
	page := testPage("completely unrelated page content")
	if boxes := (ExactLocator{}).Locate(page, "Acme Capital"); boxes != nil {
		t.Errorf("boxes = %v, want none", boxes)
	}
}

func TestExactLocatorAccentFolded(t *testing.T) {
	page := testPage("Societe Generale provided the loan")
	if boxes := (ExactLocator{}).Locate(page, "Société Générale"); len(boxes) != 1 {
		t.Errorf("accented needle should match folded page text, got %v", boxes)
	}
}

func TestFuzzyLocatorLongestRun(t *testing.T) {
	page := testPage("intro words then loan proceeds of the offering will be used and trailing junk")
	// Passage differs at the edges but shares a long middle run.
	passage := "The loan proceeds of the offering will be applied toward the purchase"

	boxes := FuzzyLocator{}.Locate(page, passage)
	if len(boxes) != 1 {
		t.Fatalf("boxes = %v", boxes)
	}
	// The run "loan proceeds of the offering will be" starts at word 3.
	if boxes[0].X0 != page.Words[3].Box.X0 {
		t.Errorf("run box = %+v", boxes[0])
	}
}

func TestFuzzyLocatorRejectsShortRuns(t *testing.T) {
	page := testPage("alpha beta gamma delta")
	if boxes := (FuzzyLocator{}).Locate(page, "beta unrelated text entirely"); boxes != nil {
		t.Errorf("single-word coincidence should not match: %v", boxes)
	}
}

func TestChainLocatorFallsBack(t *testing.T) {
	page := testPage("loan proceeds of the offering will fund the acquisition")

	chain := DefaultLocator()
	// Exact fails (word inserted), fuzzy should still find the shared run.
	boxes := chain.Locate(page, "loan proceeds of the offering shall fund")
	if len(boxes) == 0 {
		t.Error("chain locator found nothing")
	}
}

// =============================================================================
// BOX TESTS
// =============================================================================

func TestBoundingBoxUnion(t *testing.T) {
	a := BoundingBox{X0: 10, Y0: 10, X1: 20, Y1: 20}
	b := BoundingBox{X0: 5, Y0: 15, X1: 25, Y1: 30}
	got := a.Union(b)
	want := BoundingBox{X0: 5, Y0: 10, X1: 25, Y1: 30}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

func TestSpanBox(t *testing.T) {
	page := testPage("one two three")
	box := page.SpanBox(0, 3)
	if box.X0 != page.Words[0].Box.X0 || box.X1 != page.Words[2].Box.X1 {
		t.Errorf("SpanBox = %+v", box)
	}
}
