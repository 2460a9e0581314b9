package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

// Deduper claims an idempotency key; Claim returns false if another scan
// already claimed it.
type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// Scanner walks all active series on each periodic run and emits a generation
// trigger for every series whose publish time falls in the window. Scans are
// stateless between invocations apart from the dedup keys, so overlapping
// scans are safe.
type Scanner struct {
	DB      *gorm.DB
	Policy  Policy
	Dedup   Deduper
	Enqueue func(ctx context.Context, trig pipeline.Trigger) error
	Now     func() time.Time
}

// Scan runs one pass and returns how many triggers were emitted. Per-series
// failures are logged and skipped; a scan never aborts on one bad series.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var active []models.Series
	err := s.DB.
		Where("status = ? AND publish_time <> ''", models.SeriesStatusActive).
		Find(&active).Error
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		log.Info().Msg("no active series found")
		return 0, nil
	}

	triggered := 0
	for _, series := range active {
		logger := log.With().Uint("series_id", series.ID).Logger()

		publish, perr := NextPublishTime(now, series.PublishTime)
		if perr != nil {
			logger.Error().Err(perr).Msg("skipping series with bad publish time")
			continue
		}

		hours := s.Policy.HoursUntilGeneration(now, publish)
		logger.Debug().
			Time("publish_at", publish).
			Float64("hours_until_generation", hours).
			Msg("evaluated schedule window")

		if !s.Policy.ShouldTrigger(hours) {
			continue
		}

		key := IdempotencyKey(series.ID, now)
		claimed, cerr := s.Dedup.Claim(ctx, key)
		if cerr != nil {
			logger.Error().Err(cerr).Msg("dedup claim failed")
			continue
		}
		if !claimed {
			logger.Info().Str("idempotency_key", key).Msg("already triggered today")
			continue
		}

		trig := pipeline.Trigger{
			SeriesID:       series.ID,
			UserID:         series.UserID,
			IdempotencyKey: key,
		}
		if eerr := s.Enqueue(ctx, trig); eerr != nil {
			logger.Error().Err(eerr).Msg("failed to enqueue generation trigger")
			continue
		}

		logger.Info().Str("idempotency_key", key).Msg("generation triggered")
		triggered++
	}
	return triggered, nil
}
