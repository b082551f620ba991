package annotate

import (
	"context"
	"sort"
	"strings"

	"github.com/metrodocs/kiroku/pkg/utils"
)

const summaryMaxLen = 400

// RuleAnnotator detects compliance flags by keyword vocabulary and summarizes
// by taking the head of the text. It stands in for a real AI annotation
// service and is deterministic for a given vocabulary and input.
type RuleAnnotator struct {
	vocabulary map[string][]string
}

// DefaultVocabulary maps compliance flags to trigger keywords observed in the
// portal's document corpus.
func DefaultVocabulary() map[string][]string {
	return map[string][]string{
		"safety-compliance":        {"safety", "hazard", "emergency", "evacuation"},
		"technical-specifications": {"specification", "signal", "voltage", "technical"},
		"financial-audit":          {"budget", "audit", "invoice", "expenditure"},
		"annual-review":            {"annual review", "yearly review"},
	}
}

// NewRuleAnnotator creates an annotator with the given flag vocabulary.
// A nil vocabulary uses DefaultVocabulary.
func NewRuleAnnotator(vocabulary map[string][]string) *RuleAnnotator {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary()
	}
	return &RuleAnnotator{vocabulary: vocabulary}
}

// Annotate scans the text for vocabulary keywords and returns the detected
// flags (sorted for determinism) plus a head-of-text summary. Empty text
// yields an empty annotation, not an error.
func (a *RuleAnnotator) Annotate(ctx context.Context, text string) (Annotation, error) {
	if err := ctx.Err(); err != nil {
		return Annotation{}, err
	}
	lower := strings.ToLower(text)
	var flags []string
	for flag, keywords := range a.vocabulary {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				flags = append(flags, flag)
				break
			}
		}
	}
	sort.Strings(flags)
	return Annotation{
		Summary:         summarize(text),
		ComplianceFlags: flags,
	}, nil
}

// summarize returns the text head, cut at a sentence boundary when one falls
// inside the window.
func summarize(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= summaryMaxLen {
		return text
	}
	head := text[:summaryMaxLen]
	if i := strings.LastIndex(head, ". "); i > summaryMaxLen/2 {
		return head[:i+1]
	}
	return utils.Truncate(text, summaryMaxLen)
}
