package highlight

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// BoundingBox is an axis-aligned rectangle in PDF user space.
type BoundingBox struct {
	X0, Y0, X1, Y1 float64
}

// Union grows the box to cover other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if other.X0 < b.X0 {
		b.X0 = other.X0
	}
	if other.Y0 < b.Y0 {
		b.Y0 = other.Y0
	}
	if other.X1 > b.X1 {
		b.X1 = other.X1
	}
	if other.Y1 > b.Y1 {
		b.Y1 = other.Y1
	}
	return b
}

// Word is one positioned token of page text.
type Word struct {
	Text string
	Box  BoundingBox
}

// Page is the word-position index of one document page.
type Page struct {
	Number int // 1-based
	Words  []Word
}

// Text returns the page's words joined by single spaces.
func (p Page) Text() string {
	parts := make([]string, len(p.Words))
	for i, w := range p.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// SpanBox returns the bounding box covering words [start, end).
func (p Page) SpanBox(start, end int) BoundingBox {
	box := p.Words[start].Box
	for i := start + 1; i < end; i++ {
		box = box.Union(p.Words[i].Box)
	}
	return box
}

// Document is a word-position index over a whole PDF, built with the
// position-aware reader. Close releases the underlying file handle.
type Document struct {
	Pages []Page
	file  *os.File
}

// OpenDocument builds the word index for a PDF file.
func OpenDocument(path string) (*Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf for indexing: %w", err)
	}

	doc := &Document{file: f}
	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, Page{Number: pageNr})
			continue
		}
		doc.Pages = append(doc.Pages, Page{
			Number: pageNr,
			Words:  groupWords(page.Content().Text),
		})
	}
	return doc, nil
}

// PageByNumber returns the index for a 1-based page number, or false when
// out of range.
func (d *Document) PageByNumber(n int) (Page, bool) {
	if n < 1 || n > len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[n-1], true
}

// Close releases the document's file handle. Safe to call more than once.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// groupWords merges the reader's per-fragment text runs into words. A new
// word starts on whitespace, on a line change, or on a horizontal gap wider
// than half the font size. The box height is approximated by font size, as
// the reader exposes no glyph height.
func groupWords(texts []pdf.Text) []Word {
	var words []Word
	var cur strings.Builder
	var curBox BoundingBox
	var lastX, lastY, lastW, lastSize float64

	flush := func() {
		if cur.Len() > 0 {
			if trimmed := strings.TrimSpace(cur.String()); trimmed != "" {
				words = append(words, Word{Text: trimmed, Box: curBox})
			}
		}
		cur.Reset()
	}

	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			flush()
			lastX, lastY, lastW, lastSize = t.X, t.Y, t.W, t.FontSize
			continue
		}

		box := BoundingBox{X0: t.X, Y0: t.Y, X1: t.X + t.W, Y1: t.Y + t.FontSize}
		newLine := cur.Len() > 0 && t.Y != lastY
		gap := cur.Len() > 0 && t.X-(lastX+lastW) > lastSize/2
		if newLine || gap {
			flush()
		}

		if cur.Len() == 0 {
			curBox = box
		} else {
			curBox = curBox.Union(box)
		}
		cur.WriteString(t.S)

		lastX, lastY, lastW, lastSize = t.X, t.Y, t.W, t.FontSize
	}
	flush()
	return words
}
