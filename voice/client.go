// Package voice synthesizes narration audio through REST TTS providers with
// per-request text size limits. A series picks its provider; Speaker routes
// each request to the matching backend.
package voice

import (
	"context"
	"fmt"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
)

// MaxChunkChars stays under the providers' per-request character limits.
const MaxChunkChars = 400

// Speaker implements pipeline.VoiceSynthesizer by dispatching on the series'
// configured provider. Series without a provider use the Fonada backend.
type Speaker struct {
	fonada   *FonadaClient
	deepgram *DeepgramClient
}

// NewSpeaker builds both backends from the environment.
func NewSpeaker() (*Speaker, error) {
	fonada, err := NewFonadaClient()
	if err != nil {
		return nil, err
	}
	deepgram, err := NewDeepgramClient()
	if err != nil {
		return nil, err
	}
	return &Speaker{fonada: fonada, deepgram: deepgram}, nil
}

// Synthesize returns the concatenated audio for the whole narration.
func (s *Speaker) Synthesize(ctx context.Context, text, provider, voiceID, language string) ([]byte, error) {
	switch provider {
	case models.VoiceProviderDeepgram:
		return s.deepgram.Synthesize(ctx, text, voiceID)
	case models.VoiceProviderFonada, "":
		return s.fonada.Synthesize(ctx, text, voiceID, language)
	default:
		return nil, fmt.Errorf("unknown voice provider %q", provider)
	}
}
