package metrics

import (
	"regexp"
	"strings"
)

// FormattingMetrics counts markdown-style formatting in a response.
type FormattingMetrics struct {
	HasCodeBlocks     bool `json:"has_code_blocks"`
	CodeBlockCount    int  `json:"code_block_count"`
	HasBulletPoints   bool `json:"has_bullet_points"`
	BulletPointCount  int  `json:"bullet_point_count"`
	HasNumberedList   bool `json:"has_numbered_list"`
	NumberedListCount int  `json:"numbered_list_count"`
	HasHeaders        bool `json:"has_headers"`
	HeaderCount       int  `json:"header_count"`
}

// StructureSignals are coarse composition indicators.
type StructureSignals struct {
	HasIntroduction       bool    `json:"has_introduction"`
	HasConclusion         bool    `json:"has_conclusion"`
	TransitionWordCount   int     `json:"transition_word_count"`
	TransitionWordDensity float64 `json:"transition_word_density"`
}

// StructuralMetrics describes the shape of a response: counts, sentence and
// paragraph distribution, formatting, and a 0-1 structure score.
type StructuralMetrics struct {
	WordCount              int               `json:"word_count"`
	SentenceCount          int               `json:"sentence_count"`
	ParagraphCount         int               `json:"paragraph_count"`
	CharCount              int               `json:"char_count"`
	AvgSentenceLength      float64           `json:"avg_sentence_length"`
	SentenceLengthVariance float64           `json:"sentence_length_variance"`
	AvgParagraphLength     float64           `json:"avg_paragraph_length"`
	Formatting             FormattingMetrics `json:"formatting"`
	Structure              StructureSignals  `json:"structure"`
	StructureScore         float64           `json:"structure_score"`
}

var (
	codeBlockRe    = regexp.MustCompile("(?s)```.*?```")
	codeFenceRe    = regexp.MustCompile("```")
	bulletPointRe  = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	numberedListRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	headerRe       = regexp.MustCompile(`(?m)^#{1,6}\s+`)
)

var transitionWords = []string{
	"however", "therefore", "moreover", "furthermore", "additionally",
	"consequently", "nevertheless", "meanwhile", "similarly", "likewise",
	"in contrast", "on the other hand", "for example", "for instance",
}

var transitionRes = compileWordPatterns(transitionWords)

func compileWordPatterns(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return res
}

// ComputeStructuralMetrics measures counts, length distribution, formatting,
// and composition signals for a response.
func ComputeStructuralMetrics(response string) StructuralMetrics {
	sentences := Sentences(response)
	words := Words(response)
	paragraphs := Paragraphs(response)

	wordCount := len(words)
	sentenceCount := len(sentences)
	paragraphCount := len(paragraphs)

	sentenceLengths := make([]int, sentenceCount)
	totalSentenceWords := 0
	for i, s := range sentences {
		sentenceLengths[i] = wordCountOf(s)
		totalSentenceWords += sentenceLengths[i]
	}
	avgSentenceLength := 0.0
	if sentenceCount > 0 {
		avgSentenceLength = float64(totalSentenceWords) / float64(sentenceCount)
	}
	sentenceLengthVariance := variance(sentenceLengths)

	paragraphLengths := make([]int, paragraphCount)
	totalParagraphWords := 0
	for i, p := range paragraphs {
		paragraphLengths[i] = wordCountOf(p)
		totalParagraphWords += paragraphLengths[i]
	}
	avgParagraphLength := 0.0
	if paragraphCount > 0 {
		avgParagraphLength = float64(totalParagraphWords) / float64(paragraphCount)
	}

	formatting := FormattingMetrics{
		HasCodeBlocks:     codeBlockRe.MatchString(response),
		CodeBlockCount:    len(codeFenceRe.FindAllString(response, -1)) / 2,
		HasBulletPoints:   bulletPointRe.MatchString(response),
		BulletPointCount:  len(bulletPointRe.FindAllString(response, -1)),
		HasNumberedList:   numberedListRe.MatchString(response),
		NumberedListCount: len(numberedListRe.FindAllString(response, -1)),
		HasHeaders:        headerRe.MatchString(response),
		HeaderCount:       len(headerRe.FindAllString(response, -1)),
	}

	hasIntroduction := paragraphCount > 0 && paragraphLengths[0] > 10
	hasConclusion := paragraphCount > 1 && paragraphLengths[paragraphCount-1] > 10

	lower := strings.ToLower(response)
	transitionWordCount := 0
	for _, re := range transitionRes {
		transitionWordCount += len(re.FindAllString(lower, -1))
	}
	transitionWordDensity := 0.0
	if sentenceCount > 0 {
		transitionWordDensity = float64(transitionWordCount) / float64(sentenceCount)
	}

	structureScore := 0.0
	if paragraphCount > 1 {
		structureScore += 0.2
	}
	if avgSentenceLength >= 10 && avgSentenceLength <= 25 {
		structureScore += 0.2
	}
	if sentenceLengthVariance > 10 {
		structureScore += 0.2
	}
	if transitionWordDensity > 0.05 {
		structureScore += 0.2
	}
	if hasIntroduction && hasConclusion {
		structureScore += 0.2
	}

	return StructuralMetrics{
		WordCount:              wordCount,
		SentenceCount:          sentenceCount,
		ParagraphCount:         paragraphCount,
		CharCount:              len(response),
		AvgSentenceLength:      round(avgSentenceLength, 2),
		SentenceLengthVariance: round(sentenceLengthVariance, 2),
		AvgParagraphLength:     round(avgParagraphLength, 2),
		Formatting:             formatting,
		Structure: StructureSignals{
			HasIntroduction:       hasIntroduction,
			HasConclusion:         hasConclusion,
			TransitionWordCount:   transitionWordCount,
			TransitionWordDensity: round(transitionWordDensity, 3),
		},
		StructureScore: round(structureScore, 2),
	}
}
