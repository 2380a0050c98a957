package highlight

import "log"

// PassageRef is one retrieved source chunk to mark: the page it came from
// and its text.
type PassageRef struct {
	Page int
	Text string
}

// Highlighter marks evidence on a PDF. The two locator strategies are
// pluggable; zero values get exact matching for field values and
// exact-with-fuzzy-fallback for source passages.
type Highlighter struct {
	ValueLocator   Locator
	PassageLocator Locator
}

func New() *Highlighter {
	return &Highlighter{
		ValueLocator:   ExactLocator{},
		PassageLocator: DefaultLocator(),
	}
}

// HighlightValues searches every page for each extracted field value and
// writes the marked copy. Stoplisted and unmatched values are skipped; the
// output is written regardless of how many values matched, and the document
// index is closed on every exit path.
func (h *Highlighter) HighlightValues(inPath, outPath string, values []string) error {
	doc, err := OpenDocument(inPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	marks := make(map[int][]BoundingBox)
	for _, v := range values {
		if IsUninformative(v) {
			continue
		}
		found := false
		for _, page := range doc.Pages {
			if boxes := h.valueLocator().Locate(page, v); len(boxes) > 0 {
				marks[page.Number] = append(marks[page.Number], boxes...)
				found = true
			}
		}
		if !found {
			log.Printf("[Highlight] value not found in %s: %q", inPath, truncate(v, 60))
		}
	}

	return WriteMarked(inPath, outPath, marks)
}

// HighlightPassages marks the retrieved source chunks on the pages they came
// from, falling back to fuzzy matching when the exact passage text is not
// present verbatim.
func (h *Highlighter) HighlightPassages(inPath, outPath string, passages []PassageRef) error {
	doc, err := OpenDocument(inPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	marks := make(map[int][]BoundingBox)
	for _, p := range passages {
		page, ok := doc.PageByNumber(p.Page)
		if !ok {
			log.Printf("[Highlight] passage references page %d outside %s", p.Page, inPath)
			continue
		}
		boxes := h.passageLocator().Locate(page, p.Text)
		if len(boxes) == 0 {
			log.Printf("[Highlight] passage not located on page %d of %s: %q", p.Page, inPath, truncate(p.Text, 60))
			continue
		}
		marks[page.Number] = append(marks[page.Number], boxes...)
	}

	return WriteMarked(inPath, outPath, marks)
}

func (h *Highlighter) valueLocator() Locator {
	if h.ValueLocator != nil {
		return h.ValueLocator
	}
	return ExactLocator{}
}

func (h *Highlighter) passageLocator() Locator {
	if h.PassageLocator != nil {
		return h.PassageLocator
	}
	return DefaultLocator()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
