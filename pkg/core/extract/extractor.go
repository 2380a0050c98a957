// Package extract runs the per-section retrieval-augmented extraction. Each
// of the six sections is one independent model call over the same immutable
// corpus; the per-section differences (instruction, trailing-page context)
// are configuration, not separate code paths.
package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ppm_extraction/pkg/core/corpus"
	"ppm_extraction/pkg/core/llm"
	"ppm_extraction/pkg/core/prompt"
	"ppm_extraction/pkg/core/sanitize"
	"ppm_extraction/pkg/core/section"
)

// NoDataFound is the sentinel raw answer recorded when the model call fails.
// The sanitizer turns it into an empty object, so a failed section degrades
// to "nothing extracted" instead of aborting the deal.
const NoDataFound = "No relevant data found."

const (
	// DefaultTopK is the retrieval depth per section query.
	DefaultTopK = 15
	// DefaultFirstPages is how many opening pages are always injected as
	// literal context; deal identity lives there.
	DefaultFirstPages = 5
	// DefaultLastPages is how many trailing pages are injected for the
	// sections whose data empirically sits at the end of the document.
	DefaultLastPages = 10
)

// sectionConfig is the per-section wiring: which instruction prompt to use
// and whether the document's trailing pages get injected as extra context.
type sectionConfig struct {
	promptID      string
	wantLastPages bool
}

var sectionConfigs = map[section.Name]sectionConfig{
	section.Leadership:       {promptID: prompt.PromptIDs.ExtractionLeadership},
	section.Compensation:     {promptID: prompt.PromptIDs.ExtractionCompensation},
	section.TrackRecord:      {promptID: prompt.PromptIDs.ExtractionTrackRecord, wantLastPages: true},
	section.ProjectedResults: {promptID: prompt.PromptIDs.ExtractionProjectedResults, wantLastPages: true},
	section.UseOfProceeds:    {promptID: prompt.PromptIDs.ExtractionUseOfProceeds},
	section.FinalDataTable:   {promptID: prompt.PromptIDs.ExtractionFinalDataTable},
}

// SectionResult is the outcome of one section's extraction.
type SectionResult struct {
	Raw     string           // unparsed model answer (or NoDataFound)
	Records []section.Record // parsed records, Deal_ID already stamped
	Sources []corpus.Chunk   // retrieved passages used to answer
}

// Result holds all six section results for one deal.
type Result struct {
	DealID   string
	Sections map[section.Name]SectionResult
}

// Extractor issues the six section queries against a corpus.
type Extractor struct {
	Provider   llm.Provider
	TopK       int
	FirstPages int
	LastPages  int
}

// NewExtractor builds an extractor with the default retrieval settings.
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{
		Provider:   provider,
		TopK:       DefaultTopK,
		FirstPages: DefaultFirstPages,
		LastPages:  DefaultLastPages,
	}
}

// ExtractAll runs every section against the corpus. Section failures are
// contained per section; the returned Result always carries all six entries.
// Every parsed record is stamped with dealID regardless of what the model
// answered.
func (e *Extractor) ExtractAll(ctx context.Context, c *corpus.Corpus, dealID string) (*Result, error) {
	result := &Result{
		DealID:   dealID,
		Sections: make(map[section.Name]SectionResult, len(sectionConfigs)),
	}
	for _, name := range section.All() {
		res, err := e.ExtractSection(ctx, c, name, dealID)
		if err != nil {
			return nil, err
		}
		result.Sections[name] = res
	}
	return result, nil
}

// ExtractSection retrieves context for one section, queries the model and
// parses the answer. Only context cancellation is returned as an error;
// model transport failures degrade to the NoDataFound sentinel.
func (e *Extractor) ExtractSection(ctx context.Context, c *corpus.Corpus, name section.Name, dealID string) (SectionResult, error) {
	cfg, ok := sectionConfigs[name]
	if !ok {
		return SectionResult{}, fmt.Errorf("unknown section: %s", name)
	}

	userPrompt, err := e.buildUserPrompt(c, cfg)
	if err != nil {
		return SectionResult{}, err
	}

	sources, err := c.Search(ctx, userPrompt, e.TopK)
	if err != nil {
		if ctx.Err() != nil {
			return SectionResult{}, ctx.Err()
		}
		log.Printf("[Extractor] retrieval failed for %s (%s): %v", name, dealID, err)
		sources = nil
	}

	systemPrompt, err := e.buildSystemPrompt(c, dealID)
	if err != nil {
		return SectionResult{}, err
	}

	raw, err := e.Provider.GenerateResponse(ctx, withSources(userPrompt, sources), systemPrompt, nil)
	if err != nil {
		if ctx.Err() != nil {
			return SectionResult{}, ctx.Err()
		}
		log.Printf("[Extractor] model call failed for %s (%s): %v", name, dealID, err)
		raw = NoDataFound
	}

	records := section.ParseRecords(name, sanitize.ParseObject(raw))
	for _, r := range records {
		r.SetDealID(dealID)
	}

	return SectionResult{Raw: raw, Records: records, Sources: sources}, nil
}

func (e *Extractor) buildSystemPrompt(c *corpus.Corpus, dealID string) (string, error) {
	pt, err := prompt.Get().GetPrompt(prompt.PromptIDs.SystemExtraction)
	if err != nil {
		return "", err
	}
	pctx := prompt.NewContext().
		Set("DealID", dealID).
		Set("FirstPages", c.FirstPages(e.FirstPages))
	return prompt.RenderSystemPrompt(pt, pctx)
}

func (e *Extractor) buildUserPrompt(c *corpus.Corpus, cfg sectionConfig) (string, error) {
	pt, err := prompt.Get().GetPrompt(cfg.promptID)
	if err != nil {
		return "", err
	}
	pctx := prompt.NewContext().Set("LastPages", "")
	if cfg.wantLastPages {
		pctx.Set("LastPages", c.LastPages(e.LastPages))
	}
	return prompt.RenderUserPrompt(pt, pctx)
}

// withSources appends the retrieved passages to the section instruction.
func withSources(userPrompt string, sources []corpus.Chunk) string {
	if len(sources) == 0 {
		return userPrompt
	}
	var sb strings.Builder
	sb.WriteString(userPrompt)
	sb.WriteString("\n\n### Retrieved Passages:\n")
	for _, s := range sources {
		sb.WriteString(fmt.Sprintf("\n[page %d]\n%s\n", s.Page, s.Text))
	}
	return sb.String()
}
