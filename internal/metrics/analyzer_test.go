package metrics

import (
	"reflect"
	"testing"
)

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second one! Is this third? trailing fragment")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(got), got)
	}
	if Sentences("no terminator here") != nil {
		t.Error("text without terminators should yield no sentences")
	}
}

func TestWords(t *testing.T) {
	got := Words("Hello, world! Counting 42 tokens.")
	want := []string{"Hello", "world", "Counting", "42", "tokens"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestParagraphs(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph.\n\n\n"
	got := Paragraphs(text)
	if len(got) != 2 {
		t.Errorf("expected 2 paragraphs, got %d: %v", len(got), got)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"the", 1},
		{"a", 1},
		{"hello", 2},
		{"apple", 2},
		{"jumped", 1},
		{"yellow", 2},
		{"rhythm", 1},
		{"strengths", 1},
		{"HELLO", 2},
	}
	for _, tt := range tests {
		if got := CountSyllables(tt.word); got != tt.want {
			t.Errorf("CountSyllables(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestVariance(t *testing.T) {
	if v := variance(nil); v != 0 {
		t.Errorf("variance(nil) = %f, want 0", v)
	}
	if v := variance([]int{5, 5, 5}); v != 0 {
		t.Errorf("variance of constant slice = %f, want 0", v)
	}
	// mean 4, squared deviations 4+0+4
	if v := variance([]int{2, 4, 6}); v != 8.0/3.0 {
		t.Errorf("variance([2 4 6]) = %f, want %f", v, 8.0/3.0)
	}
}

func TestRound(t *testing.T) {
	if got := round(0.12345, 2); got != 0.12 {
		t.Errorf("round(0.12345, 2) = %f, want 0.12", got)
	}
	if got := round(0.125, 2); got != 0.13 {
		t.Errorf("round(0.125, 2) = %f, want 0.13", got)
	}
	if got := round(0.6789, 3); got != 0.679 {
		t.Errorf("round(0.6789, 3) = %f, want 0.679", got)
	}
}
