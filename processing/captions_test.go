package processing

import "testing"

func makeWords(n int) []Word {
	words := make([]Word, n)
	for i := range words {
		words[i] = Word{
			Text:  string(rune('a' + i)),
			Start: float64(i),
			End:   float64(i) + 0.5,
		}
	}
	return words
}

func TestGroupWordsPartitions(t *testing.T) {
	cues := GroupWords(makeWords(10), 3)

	if len(cues) != 4 {
		t.Fatalf("expected 4 cues for 10 words in groups of 3, got %d", len(cues))
	}
	wantTexts := []string{"a b c", "d e f", "g h i", "j"}
	for i, want := range wantTexts {
		if cues[i].Text != want {
			t.Fatalf("cue %d: want %q, got %q", i, want, cues[i].Text)
		}
	}
}

func TestGroupWordsTimestampsSpanGroup(t *testing.T) {
	cues := GroupWords(makeWords(7), 3)

	if cues[0].Start != 0 || cues[0].End != 2.5 {
		t.Fatalf("first cue spans [%v, %v], want [0, 2.5]", cues[0].Start, cues[0].End)
	}
	// Final cue holds the single remaining word.
	last := cues[len(cues)-1]
	if last.Start != 6 || last.End != 6.5 {
		t.Fatalf("last cue spans [%v, %v], want [6, 6.5]", last.Start, last.End)
	}
}

func TestGroupWordsExactMultiple(t *testing.T) {
	cues := GroupWords(makeWords(6), 3)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[1].Text != "d e f" {
		t.Fatalf("unexpected final cue text %q", cues[1].Text)
	}
}

func TestGroupWordsEmptyInput(t *testing.T) {
	if cues := GroupWords(nil, 3); cues != nil {
		t.Fatalf("expected nil for no words, got %v", cues)
	}
}

func TestGroupWordsInvalidGroupSizeFallsBack(t *testing.T) {
	cues := GroupWords(makeWords(6), 0)
	if len(cues) != 2 {
		t.Fatalf("expected default group size of %d to apply, got %d cues", DefaultCaptionGroupSize, len(cues))
	}
}
