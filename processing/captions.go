package processing

import "strings"

// Word is a single transcribed word with its timestamps in seconds.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// CaptionCue is a display caption covering a consecutive group of words.
type CaptionCue struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// DefaultCaptionGroupSize is how many words one on-screen caption holds.
const DefaultCaptionGroupSize = 3

// GroupWords partitions word-level timestamps into caption cues of groupSize
// consecutive words. Every word appears in exactly one cue, in original order;
// the final cue may be shorter. Each cue spans from its first word's start to
// its last word's end.
func GroupWords(words []Word, groupSize int) []CaptionCue {
	if len(words) == 0 {
		return nil
	}
	if groupSize <= 0 {
		groupSize = DefaultCaptionGroupSize
	}

	cues := make([]CaptionCue, 0, (len(words)+groupSize-1)/groupSize)
	for i := 0; i < len(words); i += groupSize {
		end := i + groupSize
		if end > len(words) {
			end = len(words)
		}
		group := words[i:end]

		texts := make([]string, len(group))
		for j, w := range group {
			texts[j] = w.Text
		}

		cues = append(cues, CaptionCue{
			Text:  strings.Join(texts, " "),
			Start: group[0].Start,
			End:   group[len(group)-1].End,
		})
	}
	return cues
}
