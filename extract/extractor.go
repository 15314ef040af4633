// Package extract converts raw researcher-supplied material into the
// structured facts that seed a session's context store. It is the data
// processor boundary: heading-aware sectioning of text blocks plus
// flattening of tables, image descriptions, and citations.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/avelkey/paperflow/types"
)

var citationPattern = regexp.MustCompile(`\[\d+\]|\([A-Z][A-Za-z-]+(?: et al\.)?,? \d{4}\)`)

// keyword sets used to classify free-text lines into fact kinds.
var (
	methodologyHints = []string{"method", "approach", "procedure", "protocol", "design", "collected", "measured", "sampled"}
	findingHints     = []string{"found", "show", "shows", "showed", "demonstrate", "significant", "increase", "decrease", "effect", "correlat"}
)

// Extractor is the data processor. It is stateless; one instance may be
// shared across sessions.
type Extractor struct {
	logger *zap.Logger
}

// New creates an extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger.With(zap.String("component", "extract"))}
}

// Extract builds StructuredFacts from material. Empty or unusable input
// fails with an EXTRACTION_ERROR, which is fatal for the session: no
// meaningful seed context can be built.
func (e *Extractor) Extract(material *types.ResearchMaterial) (*types.StructuredFacts, error) {
	if material.Empty() {
		return nil, types.NewError(types.ErrExtraction, "research material is empty")
	}

	facts := &types.StructuredFacts{Topic: strings.TrimSpace(material.Topic)}

	for _, block := range material.TextBlocks {
		e.extractFromText(block, facts)
	}
	for i, table := range material.Tables {
		facts.Facts = append(facts.Facts, types.Fact{
			Kind:  types.FactTable,
			Key:   fmt.Sprintf("table_%d", i+1),
			Value: renderTable(table),
		})
	}
	for i, img := range material.Images {
		if strings.TrimSpace(img.Description) == "" {
			continue
		}
		facts.Facts = append(facts.Facts, types.Fact{
			Kind:  types.FactImage,
			Key:   fmt.Sprintf("image_%d", i+1),
			Value: img.Description,
		})
	}
	for _, cite := range material.Citations {
		facts.Facts = append(facts.Facts, types.Fact{Kind: types.FactCitation, Value: cite})
	}

	if len(facts.Facts) == 0 {
		return nil, types.NewError(types.ErrExtraction, "no facts could be extracted from material")
	}
	e.logger.Debug("extracted facts",
		zap.String("topic", facts.Topic),
		zap.Int("count", len(facts.Facts)),
	)
	return facts, nil
}

// extractFromText classifies each sentence-bearing line of a text block
// and collects inline citations.
func (e *Extractor) extractFromText(block string, facts *types.StructuredFacts) {
	section := ""
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isHeading(line) {
			section = strings.ToLower(strings.TrimRight(line, ":"))
			continue
		}

		for _, cite := range citationPattern.FindAllString(line, -1) {
			facts.Facts = append(facts.Facts, types.Fact{Kind: types.FactCitation, Value: cite})
		}

		kind := classifyLine(section, line)
		facts.Facts = append(facts.Facts, types.Fact{Kind: kind, Key: section, Value: line})
	}
}

// isHeading treats short lines without terminal punctuation as headings,
// the way section titles appear in extracted PDF text.
func isHeading(line string) bool {
	if len(line) > 60 {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
		return false
	}
	return len(strings.Fields(line)) <= 8
}

func classifyLine(section, line string) types.FactKind {
	lower := strings.ToLower(section + " " + line)
	for _, hint := range methodologyHints {
		if strings.Contains(lower, hint) {
			return types.FactMethodology
		}
	}
	for _, hint := range findingHints {
		if strings.Contains(lower, hint) {
			return types.FactFinding
		}
	}
	return types.FactDataSummary
}

func renderTable(t types.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "table with %d rows and %d columns", len(t.Rows), len(t.Columns))
	if t.Description != "" {
		b.WriteString(": ")
		b.WriteString(t.Description)
	}
	if len(t.Columns) > 0 {
		b.WriteString("\ncolumns: ")
		b.WriteString(strings.Join(t.Columns, ", "))
	}
	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(strings.Join(row, " | "))
	}
	return b.String()
}
