package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"tippleai/models"
)

// Classifier maps a raw message to a QueryIntent. Classification is
// rule-ordered: each intent has a prioritized set of trigger patterns, and
// the first matching pattern wins. The rule order is data, so ambiguity
// between overlapping intents resolves the same way every time:
// Recommendation > SimilarTo > PreferenceQuery > CocktailLookup >
// IngredientLookup > Unclassified.
type Classifier struct {
	rules []rule
}

type rule struct {
	intent   models.IntentType
	patterns []*regexp.Regexp
	build    func(message string, match []string) models.QueryIntent
}

// similarRefRe pulls the reference cocktail out of a recommendation message,
// e.g. "recommend something similar to a daiquiri".
var similarRefRe = regexp.MustCompile(`(?i)\bsimilar to\s+(?:a |an |the )?['"]?(.+?)['"]?[?.!]*$`)

// likeRefRe handles the "like X" form. On its own "like" is ambiguous with
// the verb ("people like to drink"), so the span only counts as a reference
// when an article precedes it or it is capitalized like a name.
var likeRefRe = regexp.MustCompile(`(?i)\blike\s+(a |an |the )?['"]?(.+?)['"]?[?.!]*$`)

var countRe = regexp.MustCompile(`\b(\d{1,3})\b`)

var listSplitRe = regexp.MustCompile(`,|\s+and\s+`)

var nonAlcoholicRe = regexp.MustCompile(`(?i)non[- ]alcoholic|without alcohol|alcohol[- ]free|\bvirgin\b`)

var alcoholicRe = regexp.MustCompile(`(?i)\balcoholic\b`)

func NewClassifier() *Classifier {
	compile := func(exprs ...string) []*regexp.Regexp {
		patterns := make([]*regexp.Regexp, len(exprs))
		for i, expr := range exprs {
			patterns[i] = regexp.MustCompile(expr)
		}
		return patterns
	}

	return &Classifier{rules: []rule{
		{
			intent: models.IntentRecommendation,
			patterns: compile(
				`(?i)\brecommend\b`,
				`(?i)\bsuggest\b`,
				`(?i)\bgive me (?:a|some) (?:cocktails?|drinks?)\b`,
				`(?i)\bwhat (?:cocktail|drink) should i\b`,
			),
			build: buildRecommendation,
		},
		{
			intent: models.IntentSimilarTo,
			patterns: compile(
				`(?i)\bsimilar to\s+(?:a |an |the )?['"]?(.+?)['"]?[?.!]*$`,
				`(?i)\b(?:something|anything|cocktails?|drinks?) like\s+(?:a |an |the )?['"]?(.+?)['"]?[?.!]*$`,
			),
			build: func(message string, match []string) models.QueryIntent {
				return models.QueryIntent{
					Type:      models.IntentSimilarTo,
					Reference: cleanSpan(match[1]),
					Count:     extractCount(message),
					Alcohol:   detectAlcoholFilter(message),
				}
			},
		},
		{
			intent: models.IntentPreferenceQuery,
			patterns: compile(
				`(?i)\bwhat are my\b`,
				`(?i)\btell me my\b`,
				`(?i)\bmy favou?rites?\b`,
				`(?i)\bmy favou?rite (?:ingredients?|cocktails?|drinks?)\b`,
				`(?i)\bi (?:really |just )?(?:like|love|prefer|enjoy)\b`,
				`(?i)\bi have\b`,
				`(?i)\b(?:remember|save|store)\b.*\bpreference`,
			),
			build: func(message string, match []string) models.QueryIntent {
				return models.QueryIntent{Type: models.IntentPreferenceQuery}
			},
		},
		{
			intent: models.IntentCocktailLookup,
			patterns: compile(
				`(?i)\bhow (?:do i|to) make (?:a |an |the )?['"]?(.+?)['"]?[?.!]*$`,
				`(?i)\bwhat(?:'s| is) (?:a |an |the )['"]?(.+?)['"]?[?.!]*$`,
				`(?i)\b(?:recipe|ingredients) for (?:a |an |the )?['"]?(.+?)['"]?[?.!]*$`,
				`(?i)\btell me about (?:a |an |the )?['"]?(.+?)['"]?[?.!]*$`,
			),
			build: func(message string, match []string) models.QueryIntent {
				return models.QueryIntent{
					Type:      models.IntentCocktailLookup,
					Reference: cleanSpan(match[1]),
				}
			},
		},
		{
			intent: models.IntentIngredientLookup,
			patterns: compile(
				`(?i)\bcocktails? (?:with|containing|that (?:has|have|contains?)|using)\s+(.+?)[?.!]*$`,
				`(?i)\bdrinks? (?:with|containing|using)\s+(.+?)[?.!]*$`,
				`(?i)\bcan i make (?:with|using)\s+(.+?)[?.!]*$`,
			),
			build: func(message string, match []string) models.QueryIntent {
				return models.QueryIntent{
					Type:    models.IntentIngredientLookup,
					Tokens:  splitList(match[1]),
					Count:   extractCount(message),
					Alcohol: detectAlcoholFilter(message),
				}
			},
		},
	}}
}

// Classify runs the rule table against the message in priority order.
// Unclassified is the terminal fallback and carries no slots.
func (c *Classifier) Classify(message string) models.QueryIntent {
	for _, r := range c.rules {
		for _, pattern := range r.patterns {
			if match := pattern.FindStringSubmatch(message); match != nil {
				return r.build(message, match)
			}
		}
	}
	return models.QueryIntent{Type: models.IntentUnclassified}
}

// buildRecommendation decides between a plain recommendation and a
// similarity recommendation: a recommendation verb plus a "similar to X" or
// "like X" phrase resolves to SimilarTo with X as the reference.
func buildRecommendation(message string, match []string) models.QueryIntent {
	if reference := recommendationReference(message); reference != "" {
		return models.QueryIntent{
			Type:      models.IntentSimilarTo,
			Reference: reference,
			Count:     extractCount(message),
			Alcohol:   detectAlcoholFilter(message),
		}
	}
	return models.QueryIntent{
		Type:    models.IntentRecommendation,
		Count:   extractCount(message),
		Alcohol: detectAlcoholFilter(message),
	}
}

// recommendationReference extracts the comparison cocktail, if any. "similar
// to" is unambiguous; "like" promotes only with an article or a name-shaped
// span, so verb uses stay a plain recommendation.
func recommendationReference(message string) string {
	if m := similarRefRe.FindStringSubmatch(message); m != nil {
		return cleanSpan(m[1])
	}
	if m := likeRefRe.FindStringSubmatch(message); m != nil {
		reference := cleanSpan(m[2])
		if m[1] != "" || startsUpper(reference) {
			return reference
		}
	}
	return ""
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// cleanSpan trims an extracted slot down to the bare mention, keeping the
// original casing.
func cleanSpan(span string) string {
	span = strings.TrimSpace(span)
	span = strings.Trim(span, `'".,!?;:`)
	return strings.Join(strings.Fields(span), " ")
}

func splitList(span string) []string {
	var tokens []string
	for _, piece := range listSplitRe.Split(span, -1) {
		piece = strings.ToLower(cleanSpan(piece))
		if piece != "" {
			tokens = append(tokens, piece)
		}
	}
	return tokens
}

// extractCount finds a requested result count in the message, falling back
// to the default when absent.
func extractCount(message string) int {
	if match := countRe.FindStringSubmatch(message); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil && n > 0 {
			return n
		}
	}
	return models.DefaultResultCount
}

// detectAlcoholFilter derives the tri-state alcohol constraint. Negated
// forms are checked first so "non-alcoholic" never reads as "alcoholic".
func detectAlcoholFilter(message string) models.AlcoholFilter {
	if nonAlcoholicRe.MatchString(message) {
		return models.NonAlcoholicOnly
	}
	if alcoholicRe.MatchString(message) {
		return models.AlcoholOnly
	}
	return models.AlcoholAny
}
