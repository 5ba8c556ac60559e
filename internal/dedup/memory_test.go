package dedup

import (
	"context"
	"testing"
	"time"

	"ticker-alerts/internal/models"
)

var noon = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func testEvents() []models.TriggerEvent {
	return []models.TriggerEvent{{
		Key:       "fromTodayOpen",
		Condition: models.ConditionPrice,
		Title:     "Acme Corp Going Up",
		Message:   "Acme Corp is going up!",
	}}
}

func TestKeyFormat(t *testing.T) {
	got := Key("ACME", "user@example.com", "fromTodayOpen", noon)
	want := "trigger:ACME:user@example.com:fromTodayOpen:2026-08-26"
	if got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestTTLUntilNextMidnight(t *testing.T) {
	if got, want := TTL(noon), 12*time.Hour; got != want {
		t.Errorf("TTL at noon = %v, want %v", got, want)
	}

	justBefore := time.Date(2026, 8, 26, 23, 59, 59, 0, time.UTC)
	if got := TTL(justBefore); got != time.Second {
		t.Errorf("TTL just before midnight = %v, want 1s", got)
	}
}

func TestMemoryCacheSuppression(t *testing.T) {
	cache := NewMemoryCache()
	cache.now = func() time.Time { return noon }
	ctx := context.Background()

	seen, err := cache.Seen(ctx, "ACME", "user@example.com", "fromTodayOpen", noon)
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("fresh cache must not report seen")
	}

	if err := cache.Record(ctx, "ACME", "user@example.com", "fromTodayOpen", noon, testEvents()); err != nil {
		t.Fatal(err)
	}

	seen, _ = cache.Seen(ctx, "ACME", "user@example.com", "fromTodayOpen", noon)
	if !seen {
		t.Error("recorded trigger must be seen")
	}

	// A different recipient, condition key, or symbol is not suppressed.
	if seen, _ = cache.Seen(ctx, "ACME", "other@example.com", "fromTodayOpen", noon); seen {
		t.Error("other recipient must not be suppressed")
	}
	if seen, _ = cache.Seen(ctx, "ACME", "user@example.com", "fromYesterdayClose", noon); seen {
		t.Error("other condition key must not be suppressed")
	}
	if seen, _ = cache.Seen(ctx, "OTHER", "user@example.com", "fromTodayOpen", noon); seen {
		t.Error("other symbol must not be suppressed")
	}
}

func TestMemoryCacheExpiresAtMidnight(t *testing.T) {
	current := noon
	cache := NewMemoryCache()
	cache.now = func() time.Time { return current }
	ctx := context.Background()

	if err := cache.Record(ctx, "ACME", "user@example.com", "fromTodayOpen", noon, testEvents()); err != nil {
		t.Fatal(err)
	}

	// Same day: still suppressed.
	current = noon.Add(11 * time.Hour)
	if seen, _ := cache.Seen(ctx, "ACME", "user@example.com", "fromTodayOpen", noon); !seen {
		t.Error("trigger should still be suppressed before midnight")
	}

	// Past midnight the record has expired; the new day also carries a new
	// date component in the key.
	current = noon.Add(13 * time.Hour)
	if seen, _ := cache.Seen(ctx, "ACME", "user@example.com", "fromTodayOpen", noon); seen {
		t.Error("trigger must expire at the next midnight")
	}
	nextDay := noon.AddDate(0, 0, 1)
	if seen, _ := cache.Seen(ctx, "ACME", "user@example.com", "fromTodayOpen", nextDay); seen {
		t.Error("next day's key must start unseen")
	}
}

func TestMemoryCacheRecordNothing(t *testing.T) {
	cache := NewMemoryCache()
	cache.now = func() time.Time { return noon }
	ctx := context.Background()

	if err := cache.Record(ctx, "ACME", "user@example.com", "fromTodayOpen", noon, nil); err != nil {
		t.Fatal(err)
	}
	if seen, _ := cache.Seen(ctx, "ACME", "user@example.com", "fromTodayOpen", noon); seen {
		t.Error("recording no events must not mark the key seen")
	}
}
