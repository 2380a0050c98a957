package sanitize

import "testing"

// =============================================================================
// CLEAN TESTS
// =============================================================================

func TestCleanFencedAnswer(t *testing.T) {
	raw := "```json\n{\"Leadership\": []}\n```"
	if got := Clean(raw); got != `{"Leadership": []}` {
		t.Errorf("Clean = %q", got)
	}
}

func TestCleanBareFence(t *testing.T) {
	raw := "```\n{\"a\": 1}\n```"
	if got := Clean(raw); got != `{"a": 1}` {
		t.Errorf("Clean = %q", got)
	}
}

func TestCleanSurroundingProse(t *testing.T) {
	raw := "Sure, here is the data you asked for: {\"a\": {\"b\": 2}} Hope that helps!"
	if got := Clean(raw); got != `{"a": {"b": 2}}` {
		t.Errorf("Clean = %q", got)
	}
}

func TestCleanNoBraces(t *testing.T) {
	if got := Clean("No relevant data found."); got != EmptyObject {
		t.Errorf("Clean = %q, want %q", got, EmptyObject)
	}
}

func TestCleanEmptyInput(t *testing.T) {
	if got := Clean("   \n  "); got != EmptyObject {
		t.Errorf("Clean = %q, want %q", got, EmptyObject)
	}
}

func TestCleanReversedBraces(t *testing.T) {
	if got := Clean("} nothing here {"); got != EmptyObject {
		t.Errorf("Clean = %q, want %q", got, EmptyObject)
	}
}

func TestCleanIdempotent(t *testing.T) {
	raw := "```json\n{\"x\": \"y\"}\n```"
	once := Clean(raw)
	if twice := Clean(once); twice != once {
		t.Errorf("Clean not idempotent: %q vs %q", once, twice)
	}
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParseObjectValid(t *testing.T) {
	obj := ParseObject(`{"Use of Proceeds": [{"Total": "$100"}]}`)
	if _, ok := obj["Use of Proceeds"]; !ok {
		t.Errorf("missing payload key: %v", obj)
	}
}

func TestParseObjectGarbageCollapsesToEmpty(t *testing.T) {
	obj := ParseObject("the model refused to answer")
	if len(obj) != 0 {
		t.Errorf("expected empty object, got %v", obj)
	}
}

func TestParseObjectRepairsTrailingComma(t *testing.T) {
	obj := ParseObject(`{"a": "b",}`)
	if obj["a"] != "b" {
		t.Errorf("repair path failed: %v", obj)
	}
}

func TestParseObjectNeverNil(t *testing.T) {
	for _, raw := range []string{"", "{", "null", "[1,2]"} {
		if obj := ParseObject(raw); obj == nil {
			t.Errorf("ParseObject(%q) returned nil", raw)
		}
	}
}
