package corpus

import "strings"

const (
	// DefaultChunkSize and DefaultChunkOverlap are the splitter settings the
	// extraction prompts were tuned against.
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
)

// SplitText splits a document into overlapping chunks of at most size runes,
// with overlap runes carried between consecutive chunks. Chunk boundaries
// prefer whitespace near the cut point so words are not split mid-token.
// size must be positive; overlap is clamped below size.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakNearWhitespace(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// breakNearWhitespace walks backwards from end looking for a whitespace rune
// to cut at, but never gives back more than a quarter of the chunk.
func breakNearWhitespace(runes []rune, start, end int) int {
	limit := end - (end-start)/4
	for i := end; i > limit; i-- {
		switch runes[i-1] {
		case ' ', '\n', '\t':
			return i
		}
	}
	return end
}
