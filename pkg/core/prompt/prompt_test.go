package prompt

import (
	"strings"
	"testing"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := Get()
	ids := []string{
		PromptIDs.SystemExtraction,
		PromptIDs.ExtractionLeadership,
		PromptIDs.ExtractionCompensation,
		PromptIDs.ExtractionTrackRecord,
		PromptIDs.ExtractionProjectedResults,
		PromptIDs.ExtractionUseOfProceeds,
		PromptIDs.ExtractionFinalDataTable,
	}
	for _, id := range ids {
		if _, err := r.GetPrompt(id); err != nil {
			t.Errorf("builtin %s not registered: %v", id, err)
		}
	}
}

func TestRenderSystemPromptInjectsDealContext(t *testing.T) {
	r := Get()
	pt, err := r.GetPrompt(PromptIDs.SystemExtraction)
	if err != nil {
		t.Fatal(err)
	}

	ctx := NewContext().
		Set("DealID", "ABC123").
		Set("FirstPages", "Opening page text here.")

	out, err := RenderSystemPrompt(pt, ctx)
	if err != nil {
		t.Fatalf("RenderSystemPrompt: %v", err)
	}
	if !strings.Contains(out, "ABC123") {
		t.Error("rendered system prompt missing deal id")
	}
	if !strings.Contains(out, "Opening page text here.") {
		t.Error("rendered system prompt missing first-pages context")
	}
}

func TestRenderUserPromptLastPagesConditional(t *testing.T) {
	r := Get()
	pt, err := r.GetPrompt(PromptIDs.ExtractionProjectedResults)
	if err != nil {
		t.Fatal(err)
	}

	withPages, err := RenderUserPrompt(pt, NewContext().Set("LastPages", "trailing pages"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(withPages, "trailing pages") {
		t.Error("LastPages context not injected")
	}

	withoutPages, err := RenderUserPrompt(pt, NewContext().Set("LastPages", ""))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(withoutPages, "last pages of the PPM") {
		t.Error("empty LastPages should omit the trailing-pages block")
	}
}

func TestRegisterOverridesBuiltin(t *testing.T) {
	r := Get()
	defer r.Reset()

	err := r.Register(&PromptTemplate{
		ID:             PromptIDs.ExtractionLeadership,
		UserPromptTmpl: "custom override",
	})
	if err != nil {
		t.Fatal(err)
	}

	pt, _ := r.GetPrompt(PromptIDs.ExtractionLeadership)
	if pt.UserPromptTmpl != "custom override" {
		t.Error("override did not replace builtin")
	}
}

func TestRegisterRejectsEmptyID(t *testing.T) {
	if err := Get().Register(&PromptTemplate{}); err == nil {
		t.Error("expected error for empty prompt ID")
	}
}
