package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/processing"
)

// Per-step artifacts, serialized into run_steps rows.

type voiceArtifact struct {
	AudioURL   string `json:"audio_url"`
	ChunkCount int    `json:"chunk_count"`
}

type captionsArtifact struct {
	Cues        []processing.CaptionCue `json:"cues"`
	CaptionsURL string                  `json:"captions_url"`
}

type imagesArtifact struct {
	ImageURLs []string `json:"image_urls"`
}

type persistArtifact struct {
	VideoID uint `json:"video_id"`
}

type pollArtifact struct {
	OutputURL string `json:"output_url"`
}

type finalizeArtifact struct {
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type notifyArtifact struct {
	Sent      bool   `json:"sent"`
	Recipient string `json:"recipient,omitempty"`
}

// executeSteps drives every step in order. Data flows strictly forward:
// each step's artifact is the next step's input.
func (e *Engine) executeSteps(ctx context.Context, logger zerolog.Logger, run *models.Run) error {
	var series models.Series
	if err := e.db.First(&series, run.SeriesID).Error; err != nil {
		return fmt.Errorf("load series %d: %w", run.SeriesID, err)
	}
	if err := validateSeries(series); err != nil {
		return err
	}

	script, err := runStep(ctx, e, logger, run, StepScript, func(ctx context.Context) (*processing.Script, error) {
		s, gerr := e.deps.Script.GenerateScript(ctx, series)
		if gerr != nil {
			return nil, gerr
		}
		if verr := s.Validate(); verr != nil {
			return nil, NewParseError(verr)
		}
		return s, nil
	})
	if err != nil {
		return err
	}

	voice, err := runStep(ctx, e, logger, run, StepVoice, func(ctx context.Context) (voiceArtifact, error) {
		audio, serr := e.deps.Voice.Synthesize(ctx, script.Script, series.VoiceProvider, series.VoiceID, series.Language)
		if serr != nil {
			return voiceArtifact{}, serr
		}
		url, uerr := e.deps.Store.Upload(ctx, AudioPath(series.ID), "audio/mpeg", audio)
		if uerr != nil {
			return voiceArtifact{}, uerr
		}
		chunks := processing.ChunkText(script.Script, e.cfg.VoiceMaxChars)
		return voiceArtifact{AudioURL: url, ChunkCount: len(chunks)}, nil
	})
	if err != nil {
		return err
	}

	captions, err := runStep(ctx, e, logger, run, StepCaptions, func(ctx context.Context) (captionsArtifact, error) {
		words, srt, terr := e.deps.Transcriber.Transcribe(ctx, voice.AudioURL)
		if terr != nil {
			return captionsArtifact{}, terr
		}
		cues := processing.GroupWords(words, e.cfg.CaptionGroupSize)
		url, uerr := e.deps.Store.Upload(ctx, CaptionsPath(series.ID), "application/x-subrip", []byte(srt))
		if uerr != nil {
			return captionsArtifact{}, uerr
		}
		return captionsArtifact{Cues: cues, CaptionsURL: url}, nil
	})
	if err != nil {
		return err
	}

	images, err := runStep(ctx, e, logger, run, StepImages, func(ctx context.Context) (imagesArtifact, error) {
		urls := make([]string, 0, len(script.Scenes))
		for _, scene := range script.Scenes {
			url, gerr := e.deps.Images.GenerateImage(ctx, scene.VisualPrompt)
			if gerr != nil {
				return imagesArtifact{}, fmt.Errorf("scene %d: %w", scene.SceneNumber, gerr)
			}
			urls = append(urls, url)
		}
		return imagesArtifact{ImageURLs: urls}, nil
	})
	if err != nil {
		return err
	}

	persisted, err := runStep(ctx, e, logger, run, StepPersist, func(ctx context.Context) (persistArtifact, error) {
		return e.persistIntermediate(run, series, script, voice, captions, images)
	})
	if err != nil {
		return err
	}

	job, err := runStep(ctx, e, logger, run, StepRenderDispatch, func(ctx context.Context) (RenderJob, error) {
		comp := Composition{
			Images:           images.ImageURLs,
			Captions:         captions.Cues,
			AudioURL:         voice.AudioURL,
			FPS:              e.cfg.FPS,
			DurationInFrames: int(math.Ceil(float64(len(images.ImageURLs)) * e.cfg.SecondsPerImage * float64(e.cfg.FPS))),
		}
		j, serr := e.deps.Render.Submit(ctx, comp)
		if serr != nil {
			return RenderJob{}, serr
		}
		// The job handle must survive a crash between dispatch and poll, so
		// it goes on the video row before this step's result is recorded.
		perr := e.db.Model(&models.Video{}).Where("id = ?", persisted.VideoID).Updates(map[string]interface{}{
			"render_id":     j.RenderID,
			"render_bucket": j.BucketName,
		}).Error
		if perr != nil {
			return RenderJob{}, perr
		}
		return j, nil
	})
	if err != nil {
		return err
	}

	polled, err := runStep(ctx, e, logger, run, StepRenderPoll, func(ctx context.Context) (pollArtifact, error) {
		return e.pollRender(ctx, logger, job)
	})
	if err != nil {
		return err
	}

	final, err := runStep(ctx, e, logger, run, StepFinalize, func(ctx context.Context) (finalizeArtifact, error) {
		thumbnail := ""
		if len(images.ImageURLs) > 0 {
			thumbnail = images.ImageURLs[0]
		}
		uerr := e.db.Model(&models.Video{}).Where("id = ?", persisted.VideoID).Updates(map[string]interface{}{
			"video_url":     polled.OutputURL,
			"thumbnail_url": thumbnail,
			"status":        models.VideoStatusCompleted,
		}).Error
		if uerr != nil {
			return finalizeArtifact{}, uerr
		}
		return finalizeArtifact{VideoURL: polled.OutputURL, ThumbnailURL: thumbnail}, nil
	})
	if err != nil {
		return err
	}

	_, err = runStep(ctx, e, logger, run, StepNotify, func(ctx context.Context) (notifyArtifact, error) {
		if run.IsTest {
			return notifyArtifact{Sent: false}, nil
		}
		var user models.User
		if uerr := e.db.First(&user, run.UserID).Error; uerr != nil {
			return notifyArtifact{}, fmt.Errorf("load user %d: %w", run.UserID, uerr)
		}
		if nerr := e.deps.Notifier.SendVideoReady(ctx, user.Email, series.Title, final.VideoURL, final.ThumbnailURL); nerr != nil {
			return notifyArtifact{}, nerr
		}
		return notifyArtifact{Sent: true, Recipient: user.Email}, nil
	})
	return err
}

// persistIntermediate upserts the video row and its scenes. Re-invocation
// after a crash between the DB write and the step-result write must converge
// on the same row, hence find-or-create by run id.
func (e *Engine) persistIntermediate(run *models.Run, series models.Series, script *processing.Script, voice voiceArtifact, captions captionsArtifact, images imagesArtifact) (persistArtifact, error) {
	video := models.Video{
		SeriesID: series.ID,
		RunID:    run.ID,
		Status:   models.VideoStatusRendering,
	}
	if err := e.db.Where(models.Video{RunID: run.ID}).FirstOrCreate(&video).Error; err != nil {
		return persistArtifact{}, err
	}

	if err := e.db.Model(&video).Updates(map[string]interface{}{
		"title":        script.Title,
		"script":       script.Script,
		"audio_url":    voice.AudioURL,
		"captions_url": captions.CaptionsURL,
		"status":       models.VideoStatusRendering,
	}).Error; err != nil {
		return persistArtifact{}, err
	}

	// Replace any scenes written by a previous partial attempt.
	if err := e.db.Where("video_id = ?", video.ID).Delete(&models.VideoScene{}).Error; err != nil {
		return persistArtifact{}, err
	}
	for i, scene := range script.Scenes {
		row := models.VideoScene{
			VideoID:           video.ID,
			SceneNumber:       scene.SceneNumber,
			VisualPrompt:      scene.VisualPrompt,
			VoiceoverSentence: scene.VoiceoverSentence,
		}
		if i < len(images.ImageURLs) {
			row.ImageURL = images.ImageURLs[i]
		}
		if err := e.db.Create(&row).Error; err != nil {
			return persistArtifact{}, err
		}
	}

	return persistArtifact{VideoID: video.ID}, nil
}

// pollRender queries the render job at a flat interval until it finishes,
// fails, or the attempt budget runs out. An exhausted budget is a distinct
// timeout outcome, not a render error.
func (e *Engine) pollRender(ctx context.Context, logger zerolog.Logger, job RenderJob) (pollArtifact, error) {
	for attempt := 1; attempt <= e.cfg.PollMaxAttempts; attempt++ {
		progress, err := e.deps.Render.Progress(ctx, job)
		switch {
		case err != nil:
			// A failed status query counts as an attempt; the next tick may
			// succeed.
			logger.Warn().Err(err).Int("attempt", attempt).Msg("render status query failed")
		case progress.FatalError != "":
			return pollArtifact{}, NewRenderFatalError(progress.FatalError)
		case progress.Done:
			return pollArtifact{OutputURL: progress.OutputFile}, nil
		default:
			logger.Debug().Float64("progress", progress.Overall).Int("attempt", attempt).Msg("render in progress")
		}

		if attempt == e.cfg.PollMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return pollArtifact{}, ctx.Err()
		case <-time.After(e.cfg.PollInterval):
		}
	}
	return pollArtifact{}, NewRenderTimeoutError(e.cfg.PollMaxAttempts)
}

// validateSeries fails fast on configuration the pipeline cannot run without.
func validateSeries(series models.Series) error {
	if strings.TrimSpace(series.VoiceID) == "" {
		return NewValidationError("series %d has no voice selected", series.ID)
	}
	if strings.TrimSpace(series.Niche) == "" {
		return NewValidationError("series %d has no niche configured", series.ID)
	}
	return nil
}

// AudioPath and CaptionsPath are the deterministic storage locations for a
// series' artifacts. Re-running a step overwrites the same object.

func AudioPath(seriesID uint) string {
	return fmt.Sprintf("%d/audio.mp3", seriesID)
}

func CaptionsPath(seriesID uint) string {
	return fmt.Sprintf("%d/captions.srt", seriesID)
}
