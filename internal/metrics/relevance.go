package metrics

import "strings"

// KeywordMatch records how often one prompt keyword occurs in the response.
type KeywordMatch struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Present bool   `json:"present"`
}

// RelevanceMetrics measures how well a response covers the prompt's keywords.
type RelevanceMetrics struct {
	PromptKeywords       []string       `json:"prompt_keywords"`
	KeywordMatches       []KeywordMatch `json:"keyword_matches"`
	KeywordCoverage      float64        `json:"keyword_coverage"`
	EarlyKeywordPresence float64        `json:"early_keyword_presence"`
	KeywordDensity       float64        `json:"keyword_density"`
	TotalKeywordMentions int            `json:"total_keyword_mentions"`
	RelevanceScore       float64        `json:"relevance_score"`
}

var relevanceStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "been": true, "be": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "this": true, "that": true, "these": true,
	"those": true, "i": true, "you": true, "he": true, "she": true,
	"it": true, "we": true, "they": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
}

// Keywords appearing in the first earlyWindow filtered response words count as early.
const earlyWindow = 100

func filterKeywords(words []string) []string {
	var filtered []string
	for _, w := range words {
		if len(w) > 2 && !relevanceStopWords[w] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// ComputeRelevanceMetrics extracts keywords from the prompt (stop words and
// short tokens dropped, first-occurrence order preserved) and measures their
// presence in the response.
func ComputeRelevanceMetrics(prompt, response string) RelevanceMetrics {
	promptKeywords := filterKeywords(Words(strings.ToLower(prompt)))
	responseWords := filterKeywords(Words(strings.ToLower(response)))

	var uniqueKeywords []string
	seen := make(map[string]bool)
	for _, kw := range promptKeywords {
		if !seen[kw] {
			seen[kw] = true
			uniqueKeywords = append(uniqueKeywords, kw)
		}
	}

	responseCounts := make(map[string]int, len(responseWords))
	for _, w := range responseWords {
		responseCounts[w]++
	}
	earlyWords := make(map[string]bool)
	for i, w := range responseWords {
		if i >= earlyWindow {
			break
		}
		earlyWords[w] = true
	}

	var matches []KeywordMatch
	present := 0
	earlyPresent := 0
	totalMentions := 0
	for _, kw := range uniqueKeywords {
		count := responseCounts[kw]
		totalMentions += count
		if count > 0 {
			present++
			matches = append(matches, KeywordMatch{Keyword: kw, Count: count, Present: true})
		}
		if earlyWords[kw] {
			earlyPresent++
		}
	}

	coverage := 0.0
	earlyRatio := 0.0
	if len(uniqueKeywords) > 0 {
		coverage = float64(present) / float64(len(uniqueKeywords))
		earlyRatio = float64(earlyPresent) / float64(len(uniqueKeywords))
	}
	density := 0.0
	if len(responseWords) > 0 {
		density = float64(totalMentions) / float64(len(responseWords))
	}

	relevanceScore := 0.0
	if coverage > 0.5 {
		relevanceScore += 0.3
	} else {
		relevanceScore += coverage * 0.6
	}
	if earlyRatio > 0.3 {
		relevanceScore += 0.3
	} else {
		relevanceScore += earlyRatio
	}
	if density > 0.02 && density < 0.15 {
		relevanceScore += 0.2
	}
	if totalMentions > 0 {
		relevanceScore += 0.2
	}

	return RelevanceMetrics{
		PromptKeywords:       uniqueKeywords,
		KeywordMatches:       matches,
		KeywordCoverage:      round(coverage, 2),
		EarlyKeywordPresence: round(earlyRatio, 2),
		KeywordDensity:       round(density, 4),
		TotalKeywordMentions: totalMentions,
		RelevanceScore:       round(relevanceScore, 2),
	}
}
