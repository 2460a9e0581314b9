package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named in-memory database so gorm's pooled connections all see the
	// same data, isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Series{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

type memDeduper struct {
	claimed map[string]bool
	fail    bool
}

func (d *memDeduper) Claim(_ context.Context, key string) (bool, error) {
	if d.fail {
		return false, fmt.Errorf("dedup store unavailable")
	}
	if d.claimed == nil {
		d.claimed = make(map[string]bool)
	}
	if d.claimed[key] {
		return false, nil
	}
	d.claimed[key] = true
	return true, nil
}

func seedSeries(t *testing.T, db *gorm.DB, status, publishTime string) models.Series {
	t.Helper()
	s := models.Series{
		UserID:      1,
		Title:       "Daily Space Facts",
		NicheType:   "educational",
		Niche:       "astronomy",
		VoiceID:     "voice-1",
		PublishTime: publishTime,
		Status:      status,
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed series: %v", err)
	}
	return s
}

func TestScanTriggersSeriesInWindow(t *testing.T) {
	db := testDB(t)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	// Publish at 12:00, lead 2h: generation due at 10:00, 2h away. In window.
	inWindow := seedSeries(t, db, models.SeriesStatusActive, "12:00")
	// Publish at 20:00: generation due at 18:00, 10h away. Out of window.
	seedSeries(t, db, models.SeriesStatusActive, "20:00")
	// Paused series in the window must not trigger.
	seedSeries(t, db, models.SeriesStatusPaused, "12:00")
	// Active series without a publish time is skipped by the query.
	seedSeries(t, db, models.SeriesStatusActive, "")

	var enqueued []pipeline.Trigger
	scanner := &Scanner{
		DB:     db,
		Policy: DefaultPolicy(),
		Dedup:  &memDeduper{},
		Enqueue: func(_ context.Context, trig pipeline.Trigger) error {
			enqueued = append(enqueued, trig)
			return nil
		},
		Now: func() time.Time { return now },
	}

	count, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 trigger, got %d", count)
	}
	if len(enqueued) != 1 || enqueued[0].SeriesID != inWindow.ID {
		t.Fatalf("unexpected triggers: %+v", enqueued)
	}
	if enqueued[0].IdempotencyKey != IdempotencyKey(inWindow.ID, now) {
		t.Fatalf("unexpected idempotency key %q", enqueued[0].IdempotencyKey)
	}
}

func TestScanDeduplicatesAcrossOverlappingScans(t *testing.T) {
	db := testDB(t)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	seedSeries(t, db, models.SeriesStatusActive, "12:00")

	enqueued := 0
	scanner := &Scanner{
		DB:     db,
		Policy: DefaultPolicy(),
		Dedup:  &memDeduper{},
		Enqueue: func(context.Context, pipeline.Trigger) error {
			enqueued++
			return nil
		},
		Now: func() time.Time { return now },
	}

	for i := 0; i < 3; i++ {
		if _, err := scanner.Scan(context.Background()); err != nil {
			t.Fatalf("scan %d failed: %v", i, err)
		}
	}
	if enqueued != 1 {
		t.Fatalf("series triggered %d times across overlapping scans, want 1", enqueued)
	}
}

func TestScanSkipsBadSeriesAndContinues(t *testing.T) {
	db := testDB(t)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	seedSeries(t, db, models.SeriesStatusActive, "not-a-time")
	good := seedSeries(t, db, models.SeriesStatusActive, "12:00")

	var enqueued []pipeline.Trigger
	scanner := &Scanner{
		DB:     db,
		Policy: DefaultPolicy(),
		Dedup:  &memDeduper{},
		Enqueue: func(_ context.Context, trig pipeline.Trigger) error {
			enqueued = append(enqueued, trig)
			return nil
		},
		Now: func() time.Time { return now },
	}

	count, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if count != 1 || len(enqueued) != 1 || enqueued[0].SeriesID != good.ID {
		t.Fatalf("bad series should be skipped, got count=%d triggers=%+v", count, enqueued)
	}
}

func TestScanDedupFailureDoesNotEnqueue(t *testing.T) {
	db := testDB(t)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	seedSeries(t, db, models.SeriesStatusActive, "12:00")

	scanner := &Scanner{
		DB:     db,
		Policy: DefaultPolicy(),
		Dedup:  &memDeduper{fail: true},
		Enqueue: func(context.Context, pipeline.Trigger) error {
			t.Fatal("must not enqueue when the dedup claim fails")
			return nil
		},
		Now: func() time.Time { return now },
	}

	count, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no triggers, got %d", count)
	}
}
