package metrics

import (
	"regexp"
	"strings"
)

// Options carries the optional scoring context.
type Options struct {
	// Prompt enables relevance scoring when non-empty.
	Prompt string
	// ExpectedLength, when positive, anchors the length score to a target word count.
	ExpectedLength int
}

// QualityMetrics is the full scoring result for one response. It is computed
// once per response and never mutated.
type QualityMetrics struct {
	CoherenceScore    float64 `json:"coherence_score"`
	CompletenessScore float64 `json:"completeness_score"`
	LengthScore       float64 `json:"length_score"`
	ReadabilityScore  float64 `json:"readability_score"`
	StructureScore    float64 `json:"structure_score"`
	OverallScore      float64 `json:"overall_score"`

	Structural StructuralMetrics `json:"structural"`
	Linguistic LinguisticMetrics `json:"linguistic"`
	Relevance  RelevanceMetrics  `json:"relevance"`
	Summary    []string          `json:"summary"`
}

// Calculate scores a response. Empty or whitespace-only text short-circuits to
// an all-zero record with a single insight and never runs the scorers.
//
// The overall score is structure*0.3 + linguistic*0.3 + relevance*0.4, rounded
// to 3 decimals. When no prompt is supplied the relevance slot falls back to
// the completeness heuristic; when a prompt is supplied the relevance score is
// used as-is, even when it is zero.
func Calculate(response string, opts Options) QualityMetrics {
	if strings.TrimSpace(response) == "" {
		return QualityMetrics{
			Linguistic: LinguisticMetrics{
				Readability: Readability{Interpretation: InterpretFlesch(0)},
			},
			Summary: []string{"Empty or invalid response"},
		}
	}

	coherence := calculateCoherence(response)
	completeness := calculateCompleteness(response, opts.Prompt)
	length := calculateLengthScore(response, opts.ExpectedLength)
	readability := calculateReadability(response)

	structural := ComputeStructuralMetrics(response)
	linguistic := ComputeLinguisticMetrics(response)

	hasPrompt := strings.TrimSpace(opts.Prompt) != ""
	var relevance RelevanceMetrics
	relevanceSlot := completeness
	if hasPrompt {
		relevance = ComputeRelevanceMetrics(opts.Prompt, response)
		relevanceSlot = relevance.RelevanceScore
	} else {
		relevance.RelevanceScore = completeness
	}

	overall := structural.StructureScore*0.3 + linguistic.LinguisticScore*0.3 + relevanceSlot*0.4

	return QualityMetrics{
		CoherenceScore:    coherence,
		CompletenessScore: relevanceSlot,
		LengthScore:       length,
		ReadabilityScore:  readability,
		StructureScore:    structural.StructureScore,
		OverallScore:      round(overall, 3),
		Structural:        structural,
		Linguistic:        linguistic,
		Relevance:         relevance,
		Summary:           buildSummary(structural, linguistic, relevance, hasPrompt, overall),
	}
}

// ── Flat heuristic scores ──────────────────────────────────

var flowIndicators = []string{
	"however", "therefore", "because", "thus", "consequently",
	"furthermore", "additionally", "moreover", "nevertheless", "hence",
	"although", "despite", "while",
}

// calculateCoherence rewards logical connectives and sentence-length rhythm.
func calculateCoherence(text string) float64 {
	sentences := Sentences(text)
	if len(sentences) < 2 {
		return 0.5
	}

	score := 0.5
	lower := strings.ToLower(text)
	indicatorCount := 0
	for _, indicator := range flowIndicators {
		indicatorCount += strings.Count(lower, indicator)
	}
	indicatorBoost := float64(indicatorCount) / float64(len(sentences))
	if indicatorBoost > 0.3 {
		indicatorBoost = 0.3
	}
	score += indicatorBoost

	lengths := make([]int, len(sentences))
	total := 0
	for i, s := range sentences {
		lengths[i] = len(strings.Split(s, " "))
		total += lengths[i]
	}
	avg := float64(total) / float64(len(lengths))
	v := variance(lengths)
	varianceScore := clamp01(1 - abs(v/avg-0.5))
	score += varianceScore * 0.2

	return clamp01(score)
}

var completenessStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true,
	"would": true, "should": true, "could": true, "can": true, "may": true,
	"might": true, "this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "it": true,
	"we": true, "they": true,
}

var endPunctuationRe = regexp.MustCompile(`[.!?]\s*$`)

// calculateCompleteness estimates whether the response addresses the prompt.
// Without a prompt it returns the 0.7 baseline.
func calculateCompleteness(response, prompt string) float64 {
	score := 0.7
	if strings.TrimSpace(prompt) == "" {
		return score
	}

	var promptKeywords []string
	for _, w := range Words(strings.ToLower(prompt)) {
		if len(w) > 3 && !completenessStopWords[w] {
			promptKeywords = append(promptKeywords, w)
		}
	}
	if len(promptKeywords) == 0 {
		return score
	}

	responseKeywords := make(map[string]bool)
	for _, w := range Words(strings.ToLower(response)) {
		if len(w) > 3 && !completenessStopWords[w] {
			responseKeywords[w] = true
		}
	}

	matched := 0
	for _, kw := range promptKeywords {
		if responseKeywords[kw] {
			matched++
		}
	}
	keywordScore := float64(matched) / float64(len(promptKeywords))

	completenessIndicator := 0.7
	if endPunctuationRe.MatchString(strings.TrimSpace(response)) {
		completenessIndicator = 1.0
	}

	return clamp01(keywordScore*0.7 + completenessIndicator*0.3)
}

// calculateLengthScore bands the response word count. Without an expected
// length, 50-500 words is the ideal range.
func calculateLengthScore(response string, expectedLength int) float64 {
	wordCount := len(strings.Fields(response))

	if expectedLength <= 0 {
		switch {
		case wordCount < 10:
			return 0.3
		case wordCount > 2000:
			return 0.6
		case wordCount >= 50 && wordCount <= 500:
			return 1.0
		case wordCount < 50:
			return 0.5 + (float64(wordCount)/50)*0.5
		default:
			return 1.0 - ((float64(wordCount)-500)/1500)*0.4
		}
	}

	ratio := float64(wordCount) / float64(expectedLength)
	switch {
	case ratio < 0.5:
		return ratio * 1.5
	case ratio > 2.0:
		v := 1 - (ratio-2)*0.2
		if v < 0.3 {
			return 0.3
		}
		return v
	default:
		return 1.0
	}
}

// calculateReadability normalizes Flesch Reading Ease to 0-1.
func calculateReadability(text string) float64 {
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return 0
	}
	words := Words(text)
	if len(words) == 0 {
		return 0
	}

	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}

	flesch := 206.835 -
		1.015*(float64(len(words))/float64(len(sentences))) -
		84.6*(float64(syllables)/float64(len(words)))

	switch {
	case flesch >= 60:
		return 0.7 + ((flesch-60)/40)*0.3
	case flesch >= 30:
		return 0.4 + ((flesch-30)/30)*0.3
	default:
		v := (flesch / 30) * 0.4
		if v < 0 {
			return 0
		}
		return v
	}
}

// ── Insight summary ────────────────────────────────────────

func buildSummary(structural StructuralMetrics, linguistic LinguisticMetrics, relevance RelevanceMetrics, hasPrompt bool, overall float64) []string {
	var insights []string

	switch {
	case overall >= 0.8:
		insights = append(insights, "Excellent response quality")
	case overall >= 0.6:
		insights = append(insights, "Good response quality")
	case overall >= 0.4:
		insights = append(insights, "Moderate response quality")
	default:
		insights = append(insights, "Response needs improvement")
	}

	if hasPrompt && relevance.KeywordCoverage < 0.3 {
		insights = append(insights, "Low keyword coverage - may not address prompt")
	}
	if linguistic.Repetition.BigramRepetition > 0.15 {
		insights = append(insights, "High repetition detected")
	}
	if structural.AvgSentenceLength > 30 {
		insights = append(insights, "Sentences are very long")
	}
	if linguistic.WordQuality.HedgeWordDensity > 0.03 {
		insights = append(insights, "High uncertainty in language")
	}
	if structural.ParagraphCount == 1 {
		insights = append(insights, "Consider adding paragraph breaks")
	}

	return insights
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
