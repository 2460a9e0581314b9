// main.go
package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/internal/platform"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/scheduler"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/tasks"
)

func main() {
	godotenv.Load()
	platform.InitLogger("scheduler")

	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()

	scanner := &scheduler.Scanner{
		DB:     db,
		Policy: scheduler.PolicyFromEnv(),
		Dedup:  scheduler.NewRedisDeduper(rdb),
		Enqueue: func(ctx context.Context, trig pipeline.Trigger) error {
			payload, err := tasks.Marshal(trig)
			if err != nil {
				return err
			}
			return rdb.LPush(ctx, tasks.QueueVideoGenerate, payload).Err()
		},
	}

	runScan := func() {
		ctx := context.Background()
		count, err := scanner.Scan(ctx)
		if err != nil {
			log.Error().Err(err).Msg("scan failed")
			return
		}
		log.Info().Int("triggered", count).Msg("scan complete")
	}

	c := cron.New()

	// The window policy tolerates overlapping scans, so a fixed 4 hour
	// cadence with a 4.5 hour scan window never misses a publish slot.
	if _, err := c.AddFunc("0 */4 * * *", runScan); err != nil {
		log.Fatal().Err(err).Msg("failed to register cron schedule")
	}

	log.Info().Msg("scheduler started")
	c.Start()

	// Run once immediately so a restart doesn't wait up to 4 hours.
	runScan()

	select {}
}
