package types

import "strings"

// FactKind classifies a structured fact extracted from research material.
type FactKind string

const (
	FactMethodology FactKind = "methodology"
	FactDataSummary FactKind = "data_summary"
	FactFinding     FactKind = "finding"
	FactCitation    FactKind = "citation"
	FactTable       FactKind = "table"
	FactImage       FactKind = "image"
)

// Fact is a single key-value extraction from the raw material.
type Fact struct {
	Kind  FactKind `json:"kind"`
	Key   string   `json:"key"`
	Value string   `json:"value"`
}

// StructuredFacts is the seed context for a session, produced once by the
// data processor and owned by the context store after ingestion.
type StructuredFacts struct {
	Topic string `json:"topic"`
	Facts []Fact `json:"facts"`
}

// ByKind returns all facts of the given kind, in extraction order.
func (s *StructuredFacts) ByKind(kind FactKind) []Fact {
	var out []Fact
	for _, f := range s.Facts {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Render formats the facts as prompt-ready text, one fact per line
// grouped by kind.
func (s *StructuredFacts) Render() string {
	var b strings.Builder
	for _, kind := range []FactKind{
		FactMethodology, FactDataSummary, FactFinding,
		FactTable, FactImage, FactCitation,
	} {
		facts := s.ByKind(kind)
		if len(facts) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(string(kind)))
		b.WriteString(":\n")
		for _, f := range facts {
			b.WriteString("- ")
			if f.Key != "" {
				b.WriteString(f.Key)
				b.WriteString(": ")
			}
			b.WriteString(f.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Table is tabular data supplied alongside the raw text.
type Table struct {
	Description string     `json:"description,omitempty"`
	Columns     []string   `json:"columns,omitempty"`
	Rows        [][]string `json:"rows,omitempty"`
}

// Image is an image reference; only the description is usable by agents.
type Image struct {
	Description string `json:"description"`
}

// ResearchMaterial is the raw caller-supplied input. It is immutable once
// ingested and referenced read-only by the coordinator.
type ResearchMaterial struct {
	Topic      string   `json:"topic"`
	TextBlocks []string `json:"text_blocks,omitempty"`
	Tables     []Table  `json:"tables,omitempty"`
	Images     []Image  `json:"images,omitempty"`
	Citations  []string `json:"citations,omitempty"`
}

// Empty reports whether the material carries no usable content.
func (m *ResearchMaterial) Empty() bool {
	if m == nil {
		return true
	}
	for _, b := range m.TextBlocks {
		if strings.TrimSpace(b) != "" {
			return false
		}
	}
	return len(m.Tables) == 0 && len(m.Images) == 0 && len(m.Citations) == 0
}
