// main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/images"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/internal/platform"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/notify"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/publish"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/render"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/script"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/storage"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/tasks"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/transcribe"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/voice"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/worker"
)

func main() {
	godotenv.Load()
	platform.InitLogger("worker")

	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()

	scriptGen, err := script.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("script generator init failed")
	}
	speaker, err := voice.NewSpeaker()
	if err != nil {
		log.Fatal().Err(err).Msg("voice client init failed")
	}
	transcriber, err := transcribe.NewClient()
	if err != nil {
		log.Fatal().Err(err).Msg("transcribe client init failed")
	}
	imageClient, err := images.NewClient()
	if err != nil {
		log.Fatal().Err(err).Msg("image client init failed")
	}
	renderClient, err := render.NewClient()
	if err != nil {
		log.Fatal().Err(err).Msg("render client init failed")
	}
	store, err := storage.NewClient()
	if err != nil {
		log.Fatal().Err(err).Msg("storage client init failed")
	}
	notifier, err := notify.NewEmailNotifier()
	if err != nil {
		log.Fatal().Err(err).Msg("email notifier init failed")
	}

	engine := pipeline.NewEngine(db, pipeline.Deps{
		Script:      scriptGen,
		Voice:       speaker,
		Transcriber: transcriber,
		Images:      imageClient,
		Render:      renderClient,
		Store:       store,
		Notifier:    notifier,
	}, pipeline.DefaultConfig())

	publisher := publish.NewYouTubePublisher(db)

	processor := worker.NewProcessor(db, rdb, engine, publisher)
	processor.Register(tasks.QueueVideoGenerate, processor.HandleGenerateVideo)
	processor.Register(tasks.QueueVideoPublish, processor.HandlePublishVideo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor.Listen(ctx, tasks.QueueVideoGenerate, tasks.QueueVideoPublish)
	log.Info().Msg("worker shut down")
}
