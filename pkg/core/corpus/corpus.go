// Package corpus turns a source PDF into a searchable retrieval corpus:
// a linear page sequence plus a vector index over overlapping text chunks.
// A corpus is owned by exactly one pipeline run and must be released at the
// end of that run, on every exit path.
package corpus

import (
	"context"
	"fmt"
	"strings"

	"ppm_extraction/pkg/core/llm"
)

// Corpus is the searchable form of one document.
type Corpus struct {
	Pages    []string // page texts in document order, element 0 is page 1
	index    *Index
	embedder llm.Embedder
}

// Build extracts the PDF's text, chunks it, embeds every chunk and indexes
// the result. A PDF that cannot be parsed or contains no text fails the
// build; no partial corpus is returned.
func Build(ctx context.Context, path string, embedder llm.Embedder) (*Corpus, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return nil, err
	}
	return BuildFromPages(ctx, pages, embedder)
}

// BuildFromPages builds a corpus from already-extracted page texts. Split out
// from Build so callers with non-PDF text sources (and tests) can index
// directly.
func BuildFromPages(ctx context.Context, pages []string, embedder llm.Embedder) (*Corpus, error) {
	type located struct {
		page int
		text string
	}
	var pending []located
	for i, pageText := range pages {
		for _, chunk := range SplitText(pageText, DefaultChunkSize, DefaultChunkOverlap) {
			pending = append(pending, located{page: i + 1, text: chunk})
		}
	}
	if len(pending) == 0 {
		return nil, ErrNoText
	}

	texts := make([]string, len(pending))
	for i, p := range pending {
		texts[i] = p.text
	}
	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(pending) {
		return nil, fmt.Errorf("embed corpus: %d vectors for %d chunks", len(vectors), len(pending))
	}

	index := NewIndex()
	for i, p := range pending {
		c := NewChunk(p.page, p.text)
		c.Embedding = vectors[i]
		index.Add(c)
	}

	return &Corpus{Pages: pages, index: index, embedder: embedder}, nil
}

// Search embeds the query and returns the k most similar chunks, best first.
func (c *Corpus) Search(ctx context.Context, query string, k int) ([]Chunk, error) {
	if c.index == nil {
		return nil, fmt.Errorf("corpus already released")
	}
	vectors, err := c.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return c.index.Search(vectors[0], k), nil
}

// FirstPages returns the text of the first n pages joined by blank lines.
func (c *Corpus) FirstPages(n int) string {
	if n > len(c.Pages) {
		n = len(c.Pages)
	}
	return joinPages(c.Pages[:n])
}

// LastPages returns the text of the last n pages joined by blank lines.
func (c *Corpus) LastPages(n int) string {
	start := len(c.Pages) - n
	if start < 0 {
		start = 0
	}
	return joinPages(c.Pages[start:])
}

// Release destroys the vector index. Idempotent; a released corpus rejects
// further searches but keeps its page texts readable.
func (c *Corpus) Release() {
	if c.index != nil {
		c.index.Clear()
		c.index = nil
	}
}

func joinPages(pages []string) string {
	nonEmpty := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
