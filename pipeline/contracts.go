package pipeline

import (
	"context"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/processing"
)

// The engine talks to every external service through these interfaces so the
// adapters can be swapped for test doubles.

// ScriptGenerator produces a structured script from a series brief.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, series models.Series) (*processing.Script, error)
}

// VoiceSynthesizer turns narration text into audio bytes. The provider names
// which TTS backend the series is configured for; implementations are
// responsible for chunking text to that backend's size limit.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text, provider, voiceID, language string) ([]byte, error)
}

// Transcriber returns word-level timestamps plus an SRT document for audio at
// a URL.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) ([]processing.Word, string, error)
}

// ImageGenerator produces one image per visual prompt and returns its URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ObjectStore uploads an artifact to a deterministic path with upsert
// semantics and returns its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// Notifier tells the series owner their video is ready.
type Notifier interface {
	SendVideoReady(ctx context.Context, recipient, seriesName, videoURL, thumbnailURL string) error
}

// Composition is the render request assembled from the run's artifacts.
type Composition struct {
	Images           []string                `json:"images"`
	Captions         []processing.CaptionCue `json:"captions"`
	AudioURL         string                  `json:"audio_url"`
	FPS              int                     `json:"fps"`
	DurationInFrames int                     `json:"duration_in_frames"`
}

// RenderJob is the opaque handle for a submitted remote render.
type RenderJob struct {
	RenderID   string `json:"render_id"`
	BucketName string `json:"bucket_name"`
}

// RenderProgress is one status snapshot of a remote render job.
type RenderProgress struct {
	Overall    float64 `json:"overall"`
	Done       bool    `json:"done"`
	FatalError string  `json:"fatal_error,omitempty"`
	OutputFile string  `json:"output_file,omitempty"`
}

// RenderService submits composition jobs to the remote renderer and reports
// their progress.
type RenderService interface {
	Submit(ctx context.Context, comp Composition) (RenderJob, error)
	Progress(ctx context.Context, job RenderJob) (RenderProgress, error)
}
