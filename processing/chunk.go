package processing

import (
	"strings"
	"unicode/utf8"
)

// sentenceTerminators are the delimiters used to split narration into
// sentence-like units. Beyond the Latin set this covers the Devanagari danda,
// CJK full stops and Arabic question mark, since series can be configured in
// those languages.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'।': true, '。': true, '！': true, '？': true, '؟': true,
}

// hardCutTolerance is the fraction of maxLength under which we refuse to split
// at a whitespace boundary and hard-cut instead. Splitting much earlier than
// maxLength would produce degenerate tiny chunks for whitespace-poor scripts.
const hardCutTolerance = 0.7

// ChunkText splits narration text into pieces no longer than maxLength so TTS
// providers with request size limits can synthesize it chunk by chunk.
// Sentences are kept whole while they fit; a single sentence longer than
// maxLength is split at word boundaries, falling back to a hard character cut
// when no usable boundary exists. Concatenating the chunks in order preserves
// the original text, and no chunk is ever empty.
func ChunkText(text string, maxLength int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxLength <= 0 || len(text) <= maxLength {
		return []string{text}
	}

	var chunks []string
	current := ""

	for _, sentence := range splitSentences(text) {
		if len(current)+len(sentence) <= maxLength {
			current += sentence
			continue
		}

		if current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = ""
		}

		if len(sentence) > maxLength {
			chunks = append(chunks, splitOversized(sentence, maxLength)...)
		} else {
			current = sentence
		}
	}

	if trimmed := strings.TrimSpace(current); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// splitSentences cuts text into sentence units, each keeping its trailing
// terminator run. The trailing remainder without a terminator is its own unit.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	i := 0
	for i < len(runes) {
		if sentenceTerminators[runes[i]] {
			// Consume a run of terminators ("?!", "...").
			for i < len(runes) && sentenceTerminators[runes[i]] {
				i++
			}
			sentences = append(sentences, string(runes[start:i]))
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

// splitOversized breaks a single sentence longer than maxLength into pieces.
// Each piece ends at the last whitespace at or before maxLength, unless that
// boundary sits too early in the piece, in which case we hard-cut.
func splitOversized(sentence string, maxLength int) []string {
	var parts []string
	remaining := strings.TrimSpace(sentence)

	for len(remaining) > maxLength {
		cut := strings.LastIndexByte(remaining[:maxLength+1], ' ')
		if cut < int(hardCutTolerance*float64(maxLength)) {
			// No space, or the nearest space is too far back. Hard cut,
			// backed up so multi-byte runes are never torn apart.
			cut = maxLength
			for cut > 0 && !utf8.RuneStart(remaining[cut]) {
				cut--
			}
			if cut == 0 {
				_, size := utf8.DecodeRuneInString(remaining)
				cut = size
			}
		}
		part := strings.TrimSpace(remaining[:cut])
		if part != "" {
			parts = append(parts, part)
		}
		remaining = strings.TrimSpace(remaining[cut:])
	}

	if remaining != "" {
		parts = append(parts, remaining)
	}
	return parts
}
