package processing

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkTextShortInputIsSingleChunk(t *testing.T) {
	chunks := ChunkText("Hello world.", 400)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "Hello world." {
		t.Fatalf("expected text unchanged, got %q", chunks[0])
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	if chunks := ChunkText("", 400); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
	if chunks := ChunkText("   \n\t ", 400); chunks != nil {
		t.Fatalf("expected nil for whitespace-only input, got %v", chunks)
	}
}

func TestChunkTextRespectsMaxLength(t *testing.T) {
	sentence := "The quick brown fox jumps over the lazy dog. "
	text := strings.Repeat(sentence, 20) // 900 chars

	chunks := ChunkText(text, 400)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for 900 chars at limit 400, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 400 {
			t.Fatalf("chunk %d exceeds limit: %d chars", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestChunkTextKeepsSentencesWhole(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here."
	chunks := ChunkText(text, 45)

	for i, c := range chunks {
		last := []rune(c)[len([]rune(c))-1]
		if last != '.' {
			t.Fatalf("chunk %d does not end on a sentence boundary: %q", i, c)
		}
	}
}

func TestChunkTextPreservesContent(t *testing.T) {
	text := "One fact. Another fact! A third, much longer fact that keeps going? Done."
	chunks := ChunkText(text, 25)

	joined := strings.Join(chunks, " ")
	// Normalize whitespace on both sides; chunking trims, never drops words.
	wantWords := strings.Fields(text)
	gotWords := strings.Fields(joined)
	if len(wantWords) != len(gotWords) {
		t.Fatalf("word count changed: want %d, got %d (%v)", len(wantWords), len(gotWords), chunks)
	}
	for i := range wantWords {
		if wantWords[i] != gotWords[i] {
			t.Fatalf("word %d changed: want %q, got %q", i, wantWords[i], gotWords[i])
		}
	}
}

func TestChunkTextOversizedSentenceSplitsAtSpaces(t *testing.T) {
	// One 200+ char sentence with no terminator until the end.
	text := strings.Repeat("word ", 50) + "end."
	chunks := ChunkText(text, 60)

	if len(chunks) < 4 {
		t.Fatalf("expected oversized sentence to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 60 {
			t.Fatalf("chunk %d exceeds limit: %q", i, c)
		}
	}
}

func TestChunkTextHardCutsWithoutSpaces(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := ChunkText(text, 400)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 1000 unbroken chars at limit 400, got %d", len(chunks))
	}
	if len(chunks[0]) != 400 || len(chunks[1]) != 400 || len(chunks[2]) != 200 {
		t.Fatalf("unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestChunkTextHardCutKeepsRunesIntact(t *testing.T) {
	// 200 three-byte runes with no spaces or terminators. A byte-offset
	// cut at 400 would land mid-rune and corrupt both sides.
	text := strings.Repeat("宇", 200)
	chunks := ChunkText(text, 400)

	if len(chunks) < 2 {
		t.Fatalf("expected 600 unbroken bytes to split at limit 400, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, c)
		}
		if len(c) > 400 {
			t.Fatalf("chunk %d exceeds limit: %d bytes", i, len(c))
		}
	}
	if joined := strings.Join(chunks, ""); joined != text {
		t.Fatalf("chunking changed content: %d bytes in, %d bytes out", len(text), len(joined))
	}
}

func TestChunkTextNonLatinTerminators(t *testing.T) {
	text := "यह पहला वाक्य है। यह दूसरा वाक्य है। यह तीसरा वाक्य है।"
	chunks := ChunkText(text, 60)

	if len(chunks) < 2 {
		t.Fatalf("expected danda-delimited text to split, got %v", chunks)
	}
	for i, c := range chunks {
		if !strings.HasSuffix(c, "।") {
			t.Fatalf("chunk %d does not end on danda: %q", i, c)
		}
	}
}

func TestChunkTextTerminatorRunsStayTogether(t *testing.T) {
	text := "Wait... really?! Yes."
	chunks := ChunkText(text, 12)

	if chunks[0] != "Wait..." {
		t.Fatalf("expected terminator run to stay with its sentence, got %q", chunks[0])
	}
}
