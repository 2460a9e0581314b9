package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
)

// Pipeline steps, in execution order. Each is a memoized unit: once its result
// row exists for a run, a resumed execution reuses the result instead of
// re-running the step.
const (
	StepScript         = "SCRIPT"
	StepVoice          = "VOICE"
	StepCaptions       = "CAPTIONS"
	StepImages         = "IMAGES"
	StepPersist        = "PERSIST_INTERMEDIATE"
	StepRenderDispatch = "RENDER_DISPATCH"
	StepRenderPoll     = "RENDER_POLL"
	StepFinalize       = "FINALIZE"
	StepNotify         = "NOTIFY"
)

// Trigger starts or resumes a run for a series.
type Trigger struct {
	SeriesID       uint   `json:"series_id"`
	UserID         uint   `json:"user_id"`
	IsTest         bool   `json:"is_test,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Config holds the tunable pipeline constants. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// VoiceMaxChars is the TTS provider's per-request text limit.
	VoiceMaxChars int
	// CaptionGroupSize is how many words one caption cue holds.
	CaptionGroupSize int
	// SecondsPerImage sizes the render duration from the scene count.
	SecondsPerImage float64
	FPS             int
	// PollInterval and PollMaxAttempts bound the render poll loop
	// (120 × 5s = a 10 minute cap).
	PollInterval    time.Duration
	PollMaxAttempts int
}

// DefaultConfig mirrors the production constants.
func DefaultConfig() Config {
	return Config{
		VoiceMaxChars:    400,
		CaptionGroupSize: 3,
		SecondsPerImage:  3,
		FPS:              30,
		PollInterval:     5 * time.Second,
		PollMaxAttempts:  120,
	}
}

// Deps are the injected service adapters the engine drives.
type Deps struct {
	Script      ScriptGenerator
	Voice       VoiceSynthesizer
	Transcriber Transcriber
	Images      ImageGenerator
	Render      RenderService
	Store       ObjectStore
	Notifier    Notifier
}

// Engine executes runs: it sequences the pipeline steps for one trigger,
// persisting each step's result so a crashed or re-delivered run resumes
// without repeating side effects. Runs for different series execute
// concurrently; steps within a run are strictly sequential.
type Engine struct {
	db    *gorm.DB
	deps  Deps
	cfg   Config
	retry RetryPolicy
}

// NewEngine wires an engine with the default retry policy.
func NewEngine(db *gorm.DB, deps Deps, cfg Config) *Engine {
	return &Engine{db: db, deps: deps, cfg: cfg, retry: DefaultRetryPolicy}
}

// WithRetryPolicy overrides the per-step retry policy.
func (e *Engine) WithRetryPolicy(p RetryPolicy) *Engine {
	e.retry = p
	return e
}

// Execute creates or resumes the run identified by the trigger's idempotency
// key and drives it to a terminal state. A run that already completed is a
// no-op. The returned error is the classified failure, if any; it has already
// been persisted on the run.
func (e *Engine) Execute(ctx context.Context, trig Trigger) error {
	logger := log.With().
		Uint("series_id", trig.SeriesID).
		Str("idempotency_key", trig.IdempotencyKey).
		Logger()

	run, err := e.acceptTrigger(trig)
	if err != nil {
		return fmt.Errorf("accept trigger: %w", err)
	}
	logger = logger.With().Uint("run_id", run.ID).Logger()

	if run.Status == models.RunStatusCompleted {
		logger.Info().Msg("run already completed, nothing to do")
		return nil
	}
	if err := e.db.Model(run).Update("status", models.RunStatusRunning).Error; err != nil {
		return err
	}
	logger.Info().Str("current_step", run.CurrentStep).Msg("run started")

	if err := e.executeSteps(ctx, logger, run); err != nil {
		e.failRun(logger, run, err)
		return err
	}

	if err := e.db.Model(run).Updates(map[string]interface{}{
		"status":        models.RunStatusCompleted,
		"current_step":  "",
		"error_code":    "",
		"error_message": "",
	}).Error; err != nil {
		return err
	}
	logger.Info().Msg("run completed")
	return nil
}

// acceptTrigger finds the run for the trigger's idempotency key, creating it
// if this is the first delivery.
func (e *Engine) acceptTrigger(trig Trigger) (*models.Run, error) {
	if trig.IdempotencyKey == "" {
		return nil, NewValidationError("trigger has no idempotency key")
	}
	run := models.Run{
		SeriesID:       trig.SeriesID,
		UserID:         trig.UserID,
		IsTest:         trig.IsTest,
		IdempotencyKey: trig.IdempotencyKey,
		Status:         models.RunStatusPending,
	}
	err := e.db.Where(models.Run{IdempotencyKey: trig.IdempotencyKey}).
		FirstOrCreate(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// failRun records the classified failure on the run and its video asset and
// halts. Artifacts produced by completed steps stay persisted for diagnosis
// or a manual retry from checkpoint.
func (e *Engine) failRun(logger zerolog.Logger, run *models.Run, cause error) {
	code := Classify(cause)
	logger.Error().Err(cause).Str("error_code", string(code)).Msg("run failed")

	if err := e.db.Model(run).Updates(map[string]interface{}{
		"status":        models.RunStatusFailed,
		"error_code":    string(code),
		"error_message": cause.Error(),
	}).Error; err != nil {
		logger.Error().Err(err).Msg("failed to persist run failure")
	}

	err := e.db.Model(&models.Video{}).
		Where("run_id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":        models.VideoStatusFailed,
			"error_message": cause.Error(),
		}).Error
	if err != nil {
		logger.Error().Err(err).Msg("failed to persist video failure")
	}
}

// runStep executes one memoized step: a persisted result is decoded and
// reused, otherwise fn runs under the retry policy and its result is written
// exactly once.
func runStep[T any](ctx context.Context, e *Engine, logger zerolog.Logger, run *models.Run, name string, fn func(context.Context) (T, error)) (T, error) {
	var out T

	var rec models.RunStep
	err := e.db.Where("run_id = ? AND step = ?", run.ID, name).First(&rec).Error
	if err == nil {
		if uerr := json.Unmarshal([]byte(rec.Result), &out); uerr != nil {
			return out, fmt.Errorf("decode stored result for step %s: %w", name, uerr)
		}
		logger.Info().Str("step", name).Msg("step result reused")
		return out, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return out, err
	}

	if derr := e.db.Model(run).Update("current_step", name).Error; derr != nil {
		return out, derr
	}

	start := time.Now()
	rerr := e.retry.Do(ctx, func() error {
		v, ferr := fn(ctx)
		if ferr != nil {
			return ferr
		}
		out = v
		return nil
	})
	if rerr != nil {
		return out, rerr
	}

	raw, merr := json.Marshal(out)
	if merr != nil {
		return out, merr
	}
	if cerr := e.db.Create(&models.RunStep{RunID: run.ID, Step: name, Result: string(raw)}).Error; cerr != nil {
		return out, cerr
	}

	logger.Info().Str("step", name).Dur("took", time.Since(start)).Msg("step completed")
	return out, nil
}
