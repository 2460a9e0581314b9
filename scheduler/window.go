package scheduler

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Policy holds the schedule-window constants. The numbers are empirically
// tuned: the scan window must exceed the scan period plus a buffer, and the
// grace window tolerates a slightly missed scan.
type Policy struct {
	// LeadHours is how long before the publish time generation must begin.
	LeadHours float64
	// ScanWindowHours is how far ahead a scan looks for upcoming generations.
	ScanWindowHours float64
	// GraceHours is how far past the generation time a trigger is still
	// worth emitting.
	GraceHours float64
}

// DefaultPolicy covers a 4-hour scan period with a half-hour buffer.
func DefaultPolicy() Policy {
	return Policy{LeadHours: 2, ScanWindowHours: 4.5, GraceHours: 1}
}

// PolicyFromEnv reads overrides from SCHEDULE_LEAD_HOURS,
// SCHEDULE_SCAN_WINDOW_HOURS and SCHEDULE_GRACE_HOURS.
func PolicyFromEnv() Policy {
	p := DefaultPolicy()
	if v, err := strconv.ParseFloat(os.Getenv("SCHEDULE_LEAD_HOURS"), 64); err == nil {
		p.LeadHours = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SCHEDULE_SCAN_WINDOW_HOURS"), 64); err == nil {
		p.ScanWindowHours = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("SCHEDULE_GRACE_HOURS"), 64); err == nil {
		p.GraceHours = v
	}
	return p
}

// NextPublishTime resolves a series' "HH:MM" publish time of day to its next
// future instance relative to now, in now's location. A publish time that has
// already passed today resolves to tomorrow rather than being missed.
func NextPublishTime(now time.Time, publishTime string) (time.Time, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(publishTime, "%d:%d", &hours, &minutes); err != nil {
		return time.Time{}, fmt.Errorf("invalid publish time %q: %w", publishTime, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return time.Time{}, fmt.Errorf("invalid publish time %q", publishTime)
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hours, minutes, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}

// HoursUntilGeneration computes how far away the generation moment is:
// publish time minus the lead offset, relative to now. Negative means the
// generation moment already passed.
func (p Policy) HoursUntilGeneration(now, publish time.Time) float64 {
	generation := publish.Add(-time.Duration(p.LeadHours * float64(time.Hour)))
	return generation.Sub(now).Hours()
}

// ShouldTrigger reports whether a series with the given hours-until-generation
// falls in the trigger window (-GraceHours, ScanWindowHours].
func (p Policy) ShouldTrigger(hoursUntilGeneration float64) bool {
	return hoursUntilGeneration > -p.GraceHours && hoursUntilGeneration <= p.ScanWindowHours
}

// IdempotencyKey derives the daily dedup key for a series, so overlapping
// scans on the same calendar day collapse to one run.
func IdempotencyKey(seriesID uint, now time.Time) string {
	return fmt.Sprintf("generate-%d-%s", seriesID, now.UTC().Format("2006-01-02"))
}
