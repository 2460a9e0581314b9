package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

// ---
// QUEUE DEFINITIONS
// ---
// We define all queue names as constants here.
const (
	// QueueVideoGenerate carries triggers for the generation pipeline. Both
	// the scheduler and manual API triggers push here.
	QueueVideoGenerate = "q_video_generate"

	// QueueVideoPublish carries completed videos to platform publishing.
	QueueVideoPublish = "q_video_publish"
)

// ---
// TASK PAYLOADS
// ---
// These are the structs that will be JSON-marshalled and sent to Redis.

// GeneratePayload is the payload for QueueVideoGenerate. It carries the
// trigger the pipeline engine consumes.
type GeneratePayload = pipeline.Trigger

// PublishPayload is the payload for QueueVideoPublish.
type PublishPayload struct {
	VideoID  uint   `json:"video_id"`
	UserID   uint   `json:"user_id"`
	Platform string `json:"platform"`
}

// ManualIdempotencyKey builds a one-off key for a user-initiated trigger.
// Unlike scheduled keys it is never shared across scans, so every manual
// trigger starts a fresh run.
func ManualIdempotencyKey(seriesID uint) string {
	return fmt.Sprintf("manual-%d-%s", seriesID, uuid.NewString())
}

// ---
// HELPER FUNCTIONS
// ---

// Marshal creates a JSON payload for a task.
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
