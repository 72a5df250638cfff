package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Weight tiers: specific product/brand names rank above core concepts,
// which rank above general AI vocabulary.
const (
	WeightCore    = 3
	WeightProduct = 4
	WeightGeneral = 2
)

// DomainBonus is added at most once per story when its URL contains a
// known-relevant host.
const DomainBonus = 2

// KeywordRule is one taxonomy entry with its compiled matching pattern.
type KeywordRule struct {
	Keyword string
	Weight  int
	pattern *regexp.Regexp
}

// Taxonomy is immutable process-wide relevance configuration, built once
// and injected into the matcher.
type Taxonomy struct {
	rules   []KeywordRule
	domains []string
}

var coreKeywords = map[string]bool{
	"ai":                      true,
	"artificial intelligence": true,
	"machine learning":        true,
	"ml":                      true,
}

var productKeywords = map[string]bool{
	"gpt":       true,
	"llm":       true,
	"openai":    true,
	"anthropic": true,
	"claude":    true,
	"chatgpt":   true,
}

var defaultKeywords = []string{
	"ai", "artificial intelligence", "machine learning", "ml", "neural",
	"deep learning", "gpt", "llm", "large language model", "openai",
	"anthropic", "claude", "chatgpt", "transformer", "bert", "nlp",
	"natural language processing", "computer vision", "reinforcement learning",
	"supervised learning", "unsupervised learning", "automation", "robot",
	"algorithm", "data science", "tensorflow", "pytorch", "keras",
	"generative", "diffusion", "stable diffusion", "midjourney", "dall-e",
}

var defaultDomains = []string{
	"openai.com", "anthropic.com", "deepmind.com", "research.google", "arxiv.org",
}

// DefaultTaxonomy compiles the built-in AI keyword set and known-relevant
// domain list.
func DefaultTaxonomy() (*Taxonomy, error) {
	return NewTaxonomy(defaultKeywords, defaultDomains)
}

// MustDefaultTaxonomy is DefaultTaxonomy for callers that treat a broken
// built-in keyword set as a programming error.
func MustDefaultTaxonomy() *Taxonomy {
	taxonomy, err := DefaultTaxonomy()
	if err != nil {
		panic(fmt.Sprintf("filter: built-in taxonomy does not compile: %v", err))
	}
	return taxonomy
}

// NewTaxonomy compiles keywords into matching rules. Keyword order is
// preserved; matched-label order follows it.
func NewTaxonomy(keywords, domains []string) (*Taxonomy, error) {
	rules := make([]KeywordRule, 0, len(keywords))
	for _, keyword := range keywords {
		pattern, err := compileKeyword(keyword)
		if err != nil {
			return nil, fmt.Errorf("compile keyword %q: %w", keyword, err)
		}
		rules = append(rules, KeywordRule{
			Keyword: keyword,
			Weight:  keywordWeight(keyword),
			pattern: pattern,
		})
	}
	return &Taxonomy{rules: rules, domains: domains}, nil
}

// compileKeyword derives a case-insensitive word-bounded pattern that
// tolerates hyphen/underscore/joined spellings of multi-word keywords.
// "ai" additionally matches abbreviation stylizations like "A.I." or "A I".
func compileKeyword(keyword string) (*regexp.Regexp, error) {
	switch keyword {
	case "ai":
		return regexp.Compile(`(?i)\b(?:ai|a\.?i\.?|a\s+i)\b`)
	case "machine learning":
		return regexp.Compile(`(?i)\bmachine[\s\-_]?learning\b`)
	default:
		escaped := strings.ReplaceAll(regexp.QuoteMeta(keyword), " ", `[\s\-_]?`)
		return regexp.Compile(`(?i)\b` + escaped + `\b`)
	}
}

func keywordWeight(keyword string) int {
	switch {
	case productKeywords[keyword]:
		return WeightProduct
	case coreKeywords[keyword]:
		return WeightCore
	default:
		return WeightGeneral
	}
}
