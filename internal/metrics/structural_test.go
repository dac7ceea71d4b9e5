package metrics

import "testing"

func TestComputeStructuralMetricsCounts(t *testing.T) {
	text := "The first paragraph talks about the general idea in a complete sentence. It keeps going with a second sentence.\n\nThe second paragraph wraps up the whole argument with a reasonably long closing statement."

	m := ComputeStructuralMetrics(text)

	if m.SentenceCount != 3 {
		t.Errorf("sentence count = %d, want 3", m.SentenceCount)
	}
	if m.ParagraphCount != 2 {
		t.Errorf("paragraph count = %d, want 2", m.ParagraphCount)
	}
	if m.WordCount == 0 {
		t.Error("word count should be non-zero")
	}
	if m.CharCount != len(text) {
		t.Errorf("char count = %d, want %d", m.CharCount, len(text))
	}
	if !m.Structure.HasIntroduction {
		t.Error("first paragraph longer than 10 words should count as introduction")
	}
	if !m.Structure.HasConclusion {
		t.Error("last paragraph longer than 10 words should count as conclusion")
	}
}

func TestComputeStructuralMetricsFormatting(t *testing.T) {
	text := "# Title\n\nIntro text.\n\n- first item\n- second item\n\n1. step one\n2. step two\n\n```go\nfmt.Println(\"hi\")\n```\n"

	m := ComputeStructuralMetrics(text)

	f := m.Formatting
	if !f.HasHeaders || f.HeaderCount != 1 {
		t.Errorf("headers = %v/%d, want true/1", f.HasHeaders, f.HeaderCount)
	}
	if !f.HasBulletPoints || f.BulletPointCount != 2 {
		t.Errorf("bullets = %v/%d, want true/2", f.HasBulletPoints, f.BulletPointCount)
	}
	if !f.HasNumberedList || f.NumberedListCount != 2 {
		t.Errorf("numbered = %v/%d, want true/2", f.HasNumberedList, f.NumberedListCount)
	}
	if !f.HasCodeBlocks || f.CodeBlockCount != 1 {
		t.Errorf("code blocks = %v/%d, want true/1", f.HasCodeBlocks, f.CodeBlockCount)
	}
}

func TestComputeStructuralMetricsTransitions(t *testing.T) {
	text := "The approach works well. However, it has limits. Therefore we adapt. For example, caching helps."

	m := ComputeStructuralMetrics(text)

	if m.Structure.TransitionWordCount != 3 {
		t.Errorf("transition count = %d, want 3", m.Structure.TransitionWordCount)
	}
	if m.Structure.TransitionWordDensity <= 0.05 {
		t.Errorf("transition density = %f, want > 0.05", m.Structure.TransitionWordDensity)
	}
}

func TestStructureScoreBounds(t *testing.T) {
	texts := []string{
		"Tiny.",
		"One sentence only without much going on at all.",
		"A longer piece of writing with several sentences of varying length. Some are short. Others stretch on for quite a while before finally coming to their conclusion, which takes time.\n\nA closing paragraph that summarizes everything discussed above in enough words to register.",
	}
	for _, text := range texts {
		m := ComputeStructuralMetrics(text)
		if m.StructureScore < 0 || m.StructureScore > 1 {
			t.Errorf("structure score %f out of [0,1] for %q", m.StructureScore, text)
		}
	}
}

func TestStructureScoreSingleParagraph(t *testing.T) {
	m := ComputeStructuralMetrics("Just one short paragraph. Nothing else here.")
	if m.ParagraphCount != 1 {
		t.Fatalf("paragraph count = %d, want 1", m.ParagraphCount)
	}
	if m.Structure.HasConclusion {
		t.Error("single paragraph should not count as having a conclusion")
	}
}
