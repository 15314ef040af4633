package agent

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator scores how complete a section draft looks from length and
// structure alone. The score is a self-reported heuristic, not a
// semantic check; the system has no ground truth to compare against.
type Estimator struct {
	enc *tiktoken.Tiktoken
}

// NewEstimator creates an estimator. Token counts use the cl100k_base
// encoding when available and fall back to whitespace word counts when
// the encoding cannot be loaded (e.g. offline environments).
func NewEstimator() *Estimator {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &Estimator{enc: enc}
}

// Count returns the token count of text.
func (e *Estimator) Count(text string) int {
	if e.enc != nil {
		return len(e.enc.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}

// Score returns a completeness score in [0, 1]. Length contributes up
// to 0.6 (relative to half the generation budget), multi-paragraph
// structure up to 0.2, and sentence-final punctuation the last 0.2.
func (e *Estimator) Score(text string, maxTokens int) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	target := float64(maxTokens) / 2
	length := float64(e.Count(text)) / target
	if length > 1 {
		length = 1
	}
	score := 0.6 * length

	paragraphs := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	switch {
	case paragraphs >= 3:
		score += 0.2
	case paragraphs == 2:
		score += 0.1
	}

	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "?") || strings.HasSuffix(text, "!") {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	return score
}
