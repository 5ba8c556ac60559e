package drawdown

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ticker-alerts/internal/models"
)

func seriesFrom(values []float64) models.Series {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	s := make(models.Series, len(values))
	for i, v := range values {
		s[i] = models.SeriesPoint{Date: start.AddDate(0, 0, i), Value: v}
	}
	return s
}

func TestExtractSingleClosedEpisode(t *testing.T) {
	// Peak 110, trough 90, recovery to 120 closes the episode.
	closes := seriesFrom([]float64{100, 110, 90, 95, 120})

	episodes := Extract(closes)
	if len(episodes) != 1 {
		t.Fatalf("expected 1 episode, got %d", len(episodes))
	}

	ep := episodes[0]
	if ep.Ongoing {
		t.Error("episode should be closed")
	}
	if ep.PeakPrice != 110 {
		t.Errorf("peak = %.2f, want 110", ep.PeakPrice)
	}
	if ep.TroughPrice != 90 {
		t.Errorf("trough = %.2f, want 90", ep.TroughPrice)
	}
	want := (90.0/110.0 - 1) * 100 // about -18.18
	if math.Abs(ep.MaxDrawdownPct-want) > 0.01 {
		t.Errorf("max drawdown = %.4f, want %.4f", ep.MaxDrawdownPct, want)
	}
	wantOpp := (110.0 - 90.0) / 90.0 * 100
	if math.Abs(ep.OpportunityPct-wantOpp) > 0.01 {
		t.Errorf("opportunity = %.4f, want %.4f", ep.OpportunityPct, wantOpp)
	}
}

func TestExtractNonDecreasingSeries(t *testing.T) {
	closes := seriesFrom([]float64{100, 100, 105, 110, 110, 120})
	if episodes := Extract(closes); len(episodes) != 0 {
		t.Fatalf("expected no episodes for a non-decreasing series, got %d", len(episodes))
	}
}

func TestExtractOngoingEpisode(t *testing.T) {
	closes := seriesFrom([]float64{100, 80, 85})

	episodes := Extract(closes)
	if len(episodes) != 1 {
		t.Fatalf("expected 1 episode, got %d", len(episodes))
	}
	ep := episodes[0]
	if !ep.Ongoing {
		t.Error("episode should be ongoing")
	}
	if ep.OpportunityPct != 0 {
		t.Errorf("ongoing episode must not report opportunity, got %.2f", ep.OpportunityPct)
	}
}

func TestExtractOrdersMostRecentFirst(t *testing.T) {
	// Two significant drawdowns: -20% then an ongoing -10%.
	closes := seriesFrom([]float64{100, 80, 105, 94})

	episodes := Extract(closes)
	if len(episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(episodes))
	}
	if !episodes[0].Ongoing {
		t.Error("index 0 should be the ongoing episode")
	}
	if episodes[1].Ongoing {
		t.Error("index 1 should be the earlier, closed episode")
	}
	if episodes[1].TroughPrice != 80 {
		t.Errorf("earlier trough = %.2f, want 80", episodes[1].TroughPrice)
	}
}

func TestCurrentDrawdown(t *testing.T) {
	closes := seriesFrom([]float64{100, 120, 96})
	got := Current(closes)
	want := 96.0/120.0 - 1
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("current = %.6f, want %.6f", got, want)
	}

	if d := Current(seriesFrom([]float64{100, 110, 120})); d != 0 {
		t.Errorf("at a new high current drawdown should be 0, got %.6f", d)
	}
}

func TestWorst(t *testing.T) {
	closes := seriesFrom([]float64{100, 80, 105, 94})
	episodes := Extract(closes)
	worst := Worst(episodes)
	if worst == nil {
		t.Fatal("expected a worst episode")
	}
	if worst.TroughPrice != 80 {
		t.Errorf("worst trough = %.2f, want 80", worst.TroughPrice)
	}
	if Worst(nil) != nil {
		t.Error("Worst(nil) should be nil")
	}
}

// Property: every reported episode is significant, its drawdown is negative,
// and episodes never overlap in time.
func TestExtractProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	closesGen := gen.SliceOfN(60, gen.Float64Range(10.0, 1000.0))

	properties.Property("episodes are significant, negative, and disjoint", prop.ForAll(
		func(values []float64) bool {
			episodes := Extract(seriesFrom(values))
			for i, ep := range episodes {
				if ep.MaxDrawdownPct >= 0 {
					return false
				}
				if -ep.MaxDrawdownPct <= SignificantPct {
					return false
				}
				// Most-recent-first: each episode starts after the next
				// one in the slice ends.
				if i+1 < len(episodes) && !episodes[i+1].Start.Before(ep.Start) {
					return false
				}
			}
			return true
		},
		closesGen,
	))

	properties.Property("current drawdown is never positive", prop.ForAll(
		func(values []float64) bool {
			return Current(seriesFrom(values)) <= 0
		},
		closesGen,
	))

	properties.TestingRun(t)
}
