package metrics

import "strings"

// VocabularyDiversity is the type-token ratio of a response.
type VocabularyDiversity struct {
	UniqueWords    int     `json:"unique_words"`
	TotalWords     int     `json:"total_words"`
	TypeTokenRatio float64 `json:"type_token_ratio"`
}

// Readability holds the Flesch Reading Ease score and derived ratios.
type Readability struct {
	FleschReadingEase   float64 `json:"flesch_reading_ease"`
	Interpretation      string  `json:"interpretation"`
	AvgSyllablesPerWord float64 `json:"avg_syllables_per_word"`
	ComplexWordRatio    float64 `json:"complex_word_ratio"`
}

// Repetition measures n-gram reuse: 1 - (distinct n-grams / total n-grams).
type Repetition struct {
	BigramRepetition  float64 `json:"bigram_repetition"`
	TrigramRepetition float64 `json:"trigram_repetition"`
}

// WordQuality counts hedge and filler words.
type WordQuality struct {
	HedgeWordCount    int     `json:"hedge_word_count"`
	HedgeWordDensity  float64 `json:"hedge_word_density"`
	FillerWordCount   int     `json:"filler_word_count"`
	FillerWordDensity float64 `json:"filler_word_density"`
}

// LinguisticMetrics bundles the language-quality measurements and a 0-1 score.
type LinguisticMetrics struct {
	VocabularyDiversity VocabularyDiversity `json:"vocabulary_diversity"`
	Readability         Readability         `json:"readability"`
	Repetition          Repetition          `json:"repetition"`
	WordQuality         WordQuality         `json:"word_quality"`
	LinguisticScore     float64             `json:"linguistic_score"`
}

// Hedge words signal uncertainty; filler words add no content.
var hedgeWords = map[string]bool{
	"maybe": true, "perhaps": true, "possibly": true, "probably": true,
	"might": true, "could": true, "may": true, "seem": true,
	"appear": true, "likely": true, "unlikely": true, "potentially": true,
}

var fillerWords = map[string]bool{
	"very": true, "really": true, "quite": true,
	"just": true, "actually": true, "basically": true,
}

// ComputeLinguisticMetrics measures vocabulary diversity, readability,
// repetition, and word quality over a response.
func ComputeLinguisticMetrics(response string) LinguisticMetrics {
	words := Words(strings.ToLower(response))
	sentences := Sentences(response)

	totalWords := len(words)
	totalSentences := len(sentences)

	unique := make(map[string]bool, totalWords)
	for _, w := range words {
		unique[w] = true
	}
	typeTokenRatio := 0.0
	if totalWords > 0 {
		typeTokenRatio = float64(len(unique)) / float64(totalWords)
	}

	totalSyllables := 0
	complexWords := 0
	hedgeCount := 0
	fillerCount := 0
	for _, w := range words {
		syllables := CountSyllables(w)
		totalSyllables += syllables
		if syllables >= 3 {
			complexWords++
		}
		if hedgeWords[w] {
			hedgeCount++
		}
		if fillerWords[w] {
			fillerCount++
		}
	}

	fleschScore := 0.0
	if totalWords > 0 && totalSentences > 0 {
		fleschScore = 206.835 -
			1.015*(float64(totalWords)/float64(totalSentences)) -
			84.6*(float64(totalSyllables)/float64(totalWords))
	}

	bigramRepetition := ngramRepetition(words, 2)
	trigramRepetition := ngramRepetition(words, 3)

	avgSyllables := 0.0
	complexRatio := 0.0
	hedgeDensity := 0.0
	fillerDensity := 0.0
	if totalWords > 0 {
		avgSyllables = float64(totalSyllables) / float64(totalWords)
		complexRatio = float64(complexWords) / float64(totalWords)
		hedgeDensity = float64(hedgeCount) / float64(totalWords)
		fillerDensity = float64(fillerCount) / float64(totalWords)
	}

	linguisticScore := 0.0
	switch {
	case typeTokenRatio > 0.4:
		linguisticScore += 0.25
	case typeTokenRatio > 0.3:
		linguisticScore += 0.15
	}
	if fleschScore >= 30 && fleschScore <= 70 {
		linguisticScore += 0.25
	}
	if bigramRepetition < 0.1 {
		linguisticScore += 0.25
	}
	if hedgeDensity < 0.02 {
		linguisticScore += 0.25
	}

	return LinguisticMetrics{
		VocabularyDiversity: VocabularyDiversity{
			UniqueWords:    len(unique),
			TotalWords:     totalWords,
			TypeTokenRatio: round(typeTokenRatio, 3),
		},
		Readability: Readability{
			FleschReadingEase:   round(fleschScore, 2),
			Interpretation:      InterpretFlesch(fleschScore),
			AvgSyllablesPerWord: round(avgSyllables, 2),
			ComplexWordRatio:    round(complexRatio, 3),
		},
		Repetition: Repetition{
			BigramRepetition:  round(bigramRepetition, 3),
			TrigramRepetition: round(trigramRepetition, 3),
		},
		WordQuality: WordQuality{
			HedgeWordCount:    hedgeCount,
			HedgeWordDensity:  round(hedgeDensity, 4),
			FillerWordCount:   fillerCount,
			FillerWordDensity: round(fillerDensity, 4),
		},
		LinguisticScore: round(linguisticScore, 2),
	}
}

func ngramRepetition(words []string, n int) float64 {
	if len(words) < n {
		return 0
	}
	total := len(words) - n + 1
	distinct := make(map[string]bool, total)
	for i := 0; i < total; i++ {
		distinct[strings.Join(words[i:i+n], " ")] = true
	}
	return 1 - float64(len(distinct))/float64(total)
}

// InterpretFlesch maps a Flesch Reading Ease score to its standard band.
func InterpretFlesch(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy"
	case score >= 80:
		return "Easy"
	case score >= 70:
		return "Fairly Easy"
	case score >= 60:
		return "Standard"
	case score >= 50:
		return "Fairly Difficult"
	case score >= 30:
		return "Difficult"
	default:
		return "Very Difficult"
	}
}
