package scheduler

import (
	"testing"
	"time"
)

func TestNextPublishTimeLaterToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	publish, err := NextPublishTime(now, "14:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	if !publish.Equal(want) {
		t.Fatalf("want %v, got %v", want, publish)
	}
}

func TestNextPublishTimeRollsToTomorrow(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	publish, err := NextPublishTime(now, "14:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 11, 14, 30, 0, 0, time.UTC)
	if !publish.Equal(want) {
		t.Fatalf("want %v, got %v", want, publish)
	}
}

func TestNextPublishTimeExactNowRolls(t *testing.T) {
	// A publish time equal to the current instant has already passed.
	now := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	publish, err := NextPublishTime(now, "14:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if publish.Day() != 11 {
		t.Fatalf("expected rollover to tomorrow, got %v", publish)
	}
}

func TestNextPublishTimeRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "nope", "25:00", "12:75", "-1:30"} {
		if _, err := NextPublishTime(time.Now(), bad); err == nil {
			t.Fatalf("expected error for publish time %q", bad)
		}
	}
}

func TestShouldTriggerWindowBounds(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		hours float64
		want  bool
	}{
		{4.5, true},   // window upper bound is inclusive
		{4.51, false}, // just beyond the scan window
		{2.0, true},
		{0, true},
		{-0.99, true}, // still inside grace
		{-1.0, false}, // grace lower bound is exclusive
		{-2.0, false},
	}
	for _, tc := range cases {
		if got := p.ShouldTrigger(tc.hours); got != tc.want {
			t.Fatalf("ShouldTrigger(%v) = %v, want %v", tc.hours, got, tc.want)
		}
	}
}

func TestHoursUntilGenerationAppliesLead(t *testing.T) {
	p := DefaultPolicy()
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	publish := time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)

	// Publish at 16:00, lead 2h, so generation is due at 14:00.
	got := p.HoursUntilGeneration(now, publish)
	if got != 4 {
		t.Fatalf("want 4 hours until generation, got %v", got)
	}
}

func TestIdempotencyKeyStablePerDay(t *testing.T) {
	morning := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)

	if IdempotencyKey(7, morning) != IdempotencyKey(7, evening) {
		t.Fatal("keys for the same series and day must match")
	}
	if IdempotencyKey(7, morning) == IdempotencyKey(8, morning) {
		t.Fatal("keys for different series must differ")
	}
	want := "generate-7-2024-03-10"
	if got := IdempotencyKey(7, morning); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestIdempotencyKeyUsesUTCDate(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC the same day; 02:00 in UTC+5 is the
	// previous UTC day. Keys are derived from the UTC calendar date.
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2024, 3, 10, 2, 0, 0, 0, loc)

	want := "generate-1-2024-03-09"
	if got := IdempotencyKey(1, local); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}
