package corpus

import (
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Chunk is one indexed passage of the source document.
type Chunk struct {
	ID        string    `json:"id"`
	Page      int       `json:"page"` // 1-based source page
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// NewChunk assigns a fresh ID to a passage.
func NewChunk(page int, text string) Chunk {
	return Chunk{
		ID:   uuid.New().String(),
		Page: page,
		Text: text,
	}
}

// Index is an in-memory vector index over document chunks. It is safe for
// concurrent queries; writes happen only during corpus construction.
type Index struct {
	mu     sync.RWMutex
	chunks []Chunk
}

func NewIndex() *Index {
	return &Index{}
}

// Add stores an embedded chunk.
func (ix *Index) Add(c Chunk) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = append(ix.chunks, c)
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Search returns the k chunks most similar to the query embedding, best
// first. Ties and chunks with degenerate (zero) embeddings sort last.
func (ix *Index) Search(query []float32, k int) []Chunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if k <= 0 || len(ix.chunks) == 0 {
		return nil
	}

	type scored struct {
		chunk Chunk
		score float64
	}
	results := make([]scored, 0, len(ix.chunks))
	for _, c := range ix.chunks {
		results = append(results, scored{chunk: c, score: cosineSimilarity(query, c.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}
	out := make([]Chunk, 0, k)
	for _, r := range results[:k] {
		out = append(out, r.chunk)
	}
	return out
}

// Clear drops all indexed chunks. The corpus calls this on release so the
// per-document index never outlives its pipeline run.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
