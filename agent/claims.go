package agent

import "strings"

// minClaimLen filters out fragments too short to be meaningful claims.
const minClaimLen = 40

// ExtractClaims splits a draft into sentence-level claims used by the
// consistency checker. The split is purely lexical: sentences long
// enough to carry a statement, trimmed and with terminal punctuation
// removed.
func ExtractClaims(text string) []string {
	var claims []string
	for _, para := range strings.Split(text, "\n") {
		for _, sentence := range splitSentences(para) {
			s := strings.TrimSpace(sentence)
			if len(s) >= minClaimLen {
				claims = append(claims, s)
			}
		}
	}
	return claims
}

func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
