package highlight

// Locator finds the bounding boxes of a piece of text on a page. Exact and
// fuzzy strategies are interchangeable behind this interface so the
// highlighter's control flow never changes when matching does.
type Locator interface {
	Locate(page Page, text string) []BoundingBox
}

// ExactLocator matches the needle's word sequence against the page's word
// sequence, token for token, and reports every occurrence.
type ExactLocator struct{}

func (ExactLocator) Locate(page Page, text string) []BoundingBox {
	needle := tokenize(NormalizeValue(text))
	if len(needle) == 0 || len(page.Words) < len(needle) {
		return nil
	}

	pageTokens := make([]string, len(page.Words))
	for i, w := range page.Words {
		pageTokens[i] = normToken(NormalizeValue(w.Text))
	}

	var boxes []BoundingBox
	for i := 0; i+len(needle) <= len(pageTokens); i++ {
		match := true
		for j, tok := range needle {
			if pageTokens[i+j] != tok {
				match = false
				break
			}
		}
		if match {
			boxes = append(boxes, page.SpanBox(i, i+len(needle)))
		}
	}
	return boxes
}

// minFuzzyRun is the shortest common word run the fuzzy locator accepts.
// Below this, a "match" is likely coincidental filler words.
const minFuzzyRun = 3

// FuzzyLocator finds the longest common contiguous word run between the
// aggressively normalized passage and the page's word index, and marks the
// box spanning the page-side run.
type FuzzyLocator struct{}

func (FuzzyLocator) Locate(page Page, text string) []BoundingBox {
	needle := tokenize(NormalizeAggressive(text))
	if len(needle) < minFuzzyRun || len(page.Words) == 0 {
		return nil
	}

	pageTokens := make([]string, len(page.Words))
	for i, w := range page.Words {
		pageTokens[i] = normToken(NormalizeAggressive(w.Text))
	}

	start, length := longestCommonRun(pageTokens, needle)
	if length < minFuzzyRun {
		return nil
	}
	return []BoundingBox{page.SpanBox(start, start+length)}
}

// longestCommonRun returns the start (in a) and length of the longest
// contiguous run of tokens common to a and b. Classic longest-common-
// substring dynamic program over word positions.
func longestCommonRun(a, b []string) (start, length int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > length {
					length = cur[j]
					start = i - cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return start, length
}

// ChainLocator tries each strategy in order and returns the first hit.
type ChainLocator []Locator

func (c ChainLocator) Locate(page Page, text string) []BoundingBox {
	for _, l := range c {
		if boxes := l.Locate(page, text); len(boxes) > 0 {
			return boxes
		}
	}
	return nil
}

// DefaultLocator is exact search with LCS fallback, the pipeline's standard
// passage-matching strategy.
func DefaultLocator() Locator {
	return ChainLocator{ExactLocator{}, FuzzyLocator{}}
}
