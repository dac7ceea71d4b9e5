// Package metrics scores generated text along structural, linguistic, and
// relevance dimensions. Every score is a deterministic closed-form heuristic
// over the text (and optionally the prompt); scoring the same input twice
// yields identical results.
package metrics

import (
	"math"
	"regexp"
	"strings"
)

var (
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]+`)
	wordRe      = regexp.MustCompile(`\b\w+\b`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)

	silentSuffixRe = regexp.MustCompile(`([^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingYRe     = regexp.MustCompile(`^y`)
	vowelClusterRe = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// Sentences returns greedy runs of non-terminator characters ending in ., ! or ?.
// Trailing text without a terminator is not a sentence.
func Sentences(text string) []string {
	return sentenceRe.FindAllString(text, -1)
}

// Words returns maximal runs of word characters.
func Words(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// Paragraphs splits on blank-line boundaries and drops empty segments.
func Paragraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphRe.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// CountSyllables estimates the syllable count of a single word. Words of three
// letters or fewer count as one; otherwise a trailing silent e/ed/es and a
// leading y are stripped and the remaining vowel clusters are counted.
func CountSyllables(word string) int {
	word = strings.ToLower(word)
	if len(word) <= 3 {
		return 1
	}
	word = silentSuffixRe.ReplaceAllString(word, "")
	word = leadingYRe.ReplaceAllString(word, "")
	clusters := vowelClusterRe.FindAllString(word, -1)
	if len(clusters) < 1 {
		return 1
	}
	return len(clusters)
}

func wordCountOf(s string) int {
	return len(wordRe.FindAllString(s, -1))
}

func variance(nums []int) float64 {
	if len(nums) == 0 {
		return 0
	}
	sum := 0
	for _, n := range nums {
		sum += n
	}
	mean := float64(sum) / float64(len(nums))
	var sq float64
	for _, n := range nums {
		d := float64(n) - mean
		sq += d * d
	}
	return sq / float64(len(nums))
}

func round(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
