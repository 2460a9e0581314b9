package worker

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/tasks"
)

// HandleGenerateVideo processes tasks from QueueVideoGenerate: it hands the
// trigger to the pipeline engine, which creates or resumes the run. The
// engine has already persisted any failure, so errors here are only for the
// worker log.
func (p *Processor) HandleGenerateVideo(ctx context.Context, payload string) error {
	var trig tasks.GeneratePayload
	if err := json.Unmarshal([]byte(payload), &trig); err != nil {
		return err
	}
	return p.Engine.Execute(ctx, trig)
}

// HandlePublishVideo processes tasks from QueueVideoPublish: it uploads a
// completed video to the requested platform.
func (p *Processor) HandlePublishVideo(ctx context.Context, payload string) error {
	var task tasks.PublishPayload
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return err
	}

	var video models.Video
	if err := p.DB.First(&video, task.VideoID).Error; err != nil {
		return err
	}

	if task.Platform != "youtube" {
		log.Warn().Str("platform", task.Platform).Uint("video_id", video.ID).Msg("unsupported publish platform")
		return nil
	}

	url, err := p.Publisher.Publish(ctx, task.UserID, video, "private")
	if err != nil {
		return err
	}
	log.Info().Uint("video_id", video.ID).Str("url", url).Msg("video published")
	return nil
}
