package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ppm_extraction/pkg/core/corpus"
	"ppm_extraction/pkg/core/section"
)

// =============================================================================
// STUBS
// =============================================================================

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, 4)
		for j, b := range []byte(t) {
			vec[j%4] += float32(b)
		}
		out[i] = vec
	}
	return out, nil
}

// stubProvider replays canned answers keyed by a substring of the prompt.
type stubProvider struct {
	answers map[string]string // section header fragment -> raw answer
	err     error
	calls   int
}

func (p *stubProvider) GenerateResponse(_ context.Context, prompt, _ string, _ map[string]interface{}) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	for frag, ans := range p.answers {
		if strings.Contains(prompt, frag) {
			return ans, nil
		}
	}
	return "{}", nil
}

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	pages := []string{
		"1031CF Portfolio 4 DST. Sponsor: 1031 CF.",
		"Leadership: Edward E. Fernandez, Chief Executive Officer.",
		"Use of proceeds: Loan Proceeds $14,960,000.",
	}
	c, err := corpus.BuildFromPages(context.Background(), pages, stubEmbedder{})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// =============================================================================
// TESTS
// =============================================================================

func TestExtractSectionStampsDealID(t *testing.T) {
	c := testCorpus(t)
	defer c.Release()

	provider := &stubProvider{answers: map[string]string{
		"Leadership Section": `{"Leadership": [{"Deal_ID": "9999", "Name": "Jane Doe"}]}`,
	}}
	e := NewExtractor(provider)

	res, err := e.ExtractSection(context.Background(), c, section.Leadership, "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %v", res.Records)
	}
	if res.Records[0].DealID() != "ABC123" {
		t.Errorf("Deal_ID = %q, want ABC123 (model value must be overwritten)", res.Records[0].DealID())
	}
}

func TestExtractSectionModelFailureDegrades(t *testing.T) {
	c := testCorpus(t)
	defer c.Release()

	e := NewExtractor(&stubProvider{err: errors.New("transport timeout")})

	res, err := e.ExtractSection(context.Background(), c, section.Compensation, "1")
	if err != nil {
		t.Fatalf("model failure must not propagate: %v", err)
	}
	if res.Raw != NoDataFound {
		t.Errorf("Raw = %q, want sentinel", res.Raw)
	}
	if len(res.Records) != 0 {
		t.Errorf("records = %v, want none", res.Records)
	}
}

func TestExtractSectionCancellation(t *testing.T) {
	c := testCorpus(t)
	defer c.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExtractor(&stubProvider{err: errors.New("canceled")})
	if _, err := e.ExtractSection(ctx, c, section.Leadership, "1"); err == nil {
		t.Error("expected context cancellation to propagate")
	}
}

func TestExtractAllCoversAllSections(t *testing.T) {
	c := testCorpus(t)
	defer c.Release()

	provider := &stubProvider{answers: map[string]string{}}
	e := NewExtractor(provider)

	res, err := e.ExtractAll(context.Background(), c, "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Sections) != 6 {
		t.Errorf("sections = %d, want 6", len(res.Sections))
	}
	if provider.calls != 6 {
		t.Errorf("model calls = %d, want 6", provider.calls)
	}
	for _, name := range section.All() {
		if _, ok := res.Sections[name]; !ok {
			t.Errorf("missing section %s", name)
		}
	}
}

func TestExtractAllDeterministic(t *testing.T) {
	c := testCorpus(t)
	defer c.Release()

	provider := &stubProvider{answers: map[string]string{
		"Use of Proceeds Section": `{"Use of Proceeds": [{"Loan_Proceeds": "$10"}]}`,
	}}
	e := NewExtractor(provider)

	first, err := e.ExtractAll(context.Background(), c, "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.ExtractAll(context.Background(), c, "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range section.All() {
		if first.Sections[name].Raw != second.Sections[name].Raw {
			t.Errorf("section %s raw answers differ between runs", name)
		}
	}
}

func TestExtractSectionFencedAnswerParsed(t *testing.T) {
	c := testCorpus(t)
	defer c.Release()

	provider := &stubProvider{answers: map[string]string{
		"Use of Proceeds Section": "```json\n{\"Use of Proceeds\": [{\"Total\": \"$45,460,000\"}]}\n```",
	}}
	e := NewExtractor(provider)

	res, err := e.ExtractSection(context.Background(), c, section.UseOfProceeds, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].StringField("Total") != "$45,460,000" {
		t.Errorf("records = %v", res.Records)
	}
}
