package filter

import (
	"log/slog"
	"strings"
)

// Matcher scores arbitrary text for AI relevance against a taxonomy.
type Matcher struct {
	taxonomy *Taxonomy
	logger   *slog.Logger
}

// NewMatcher binds a compiled taxonomy; a nil taxonomy falls back to the
// built-in one.
func NewMatcher(taxonomy *Taxonomy, log *slog.Logger) *Matcher {
	if taxonomy == nil {
		taxonomy = MustDefaultTaxonomy()
	}
	return &Matcher{taxonomy: taxonomy, logger: log}
}

// Score computes the relevance score for a title/URL pair and returns the
// matched keyword labels in taxonomy order. Each keyword contributes its
// tier weight; a URL containing a known-relevant domain adds a single
// DomainBonus and a synthetic "domain:<host>" label appended last.
// Absence of any match yields (0, nil), which is not an error.
func (m *Matcher) Score(title, url string) (int, []string) {
	var matched []string
	score := 0

	for _, rule := range m.taxonomy.rules {
		if rule.pattern.MatchString(title) {
			matched = append(matched, rule.Keyword)
			score += rule.Weight
		}
	}

	urlLower := strings.ToLower(url)
	for _, domain := range m.taxonomy.domains {
		if strings.Contains(urlLower, domain) {
			score += DomainBonus
			matched = append(matched, "domain:"+domain)
			break
		}
	}

	if score > 0 && m.logger != nil {
		m.logger.Debug("relevant text", "title", truncate(title, 50), "score", score, "keywords", matched)
	}

	return score, matched
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
