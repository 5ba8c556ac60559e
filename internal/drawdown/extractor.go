// Package drawdown segments a price series into peak-to-trough episodes.
package drawdown

import (
	"time"

	"ticker-alerts/internal/models"
)

// SignificantPct is the minimum drawdown magnitude (in percent) an episode
// must reach to be reported.
const SignificantPct = 5.0

// Episode is one maximal interval where price stays below its prior running
// maximum. An episode is closed when the series returns to the running
// maximum; the last episode may still be ongoing.
type Episode struct {
	Start       time.Time
	End         time.Time // zero when Ongoing
	Ongoing     bool
	PeakPrice   float64
	TroughPrice float64
	TroughDate  time.Time
	// MaxDrawdownPct is the deepest drawdown of the episode, negative,
	// e.g. -18.18 for an 18.18% fall.
	MaxDrawdownPct float64
	DurationDays   int
	// OpportunityPct is the recovery from trough back to peak,
	// (peak-trough)/trough*100. Zero while the episode is ongoing.
	OpportunityPct float64
}

// Extract segments closes into drawdown episodes, discards episodes whose
// magnitude does not exceed SignificantPct, and returns them ordered
// most-recent-first.
func Extract(closes models.Series) []Episode {
	episodes := extractAll(closes)

	out := make([]Episode, 0, len(episodes))
	// Reverse while filtering insignificant episodes.
	for i := len(episodes) - 1; i >= 0; i-- {
		if episodes[i].MaxDrawdownPct < -SignificantPct {
			out = append(out, episodes[i])
		}
	}
	return out
}

// Current returns the cumulative drawdown of the latest observation relative
// to the running maximum, as a fraction (0 when at a new high).
func Current(closes models.Series) float64 {
	if len(closes) == 0 {
		return 0
	}
	max := closes[0].Value
	for _, p := range closes {
		if p.Value > max {
			max = p.Value
		}
	}
	if max == 0 {
		return 0
	}
	return closes[len(closes)-1].Value/max - 1
}

func extractAll(closes models.Series) []Episode {
	n := len(closes)
	if n == 0 {
		return nil
	}

	runningMax := make([]float64, n)
	dd := make([]float64, n)
	max := closes[0].Value
	for i, p := range closes {
		if p.Value > max {
			max = p.Value
		}
		runningMax[i] = max
		if max != 0 {
			dd[i] = p.Value/max - 1
		}
	}

	var episodes []Episode
	start := -1
	for i := 0; i < n; i++ {
		if dd[i] < 0 {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			// Run closed: the series returned to its running maximum at i.
			episodes = append(episodes, buildEpisode(closes, runningMax, dd, start, i, false))
			start = -1
		}
	}
	if start >= 0 {
		episodes = append(episodes, buildEpisode(closes, runningMax, dd, start, n-1, true))
	}
	return episodes
}

func buildEpisode(closes models.Series, runningMax, dd []float64, start, end int, ongoing bool) Episode {
	troughIdx := start
	for i := start; i <= end; i++ {
		if dd[i] < dd[troughIdx] {
			troughIdx = i
		}
	}

	endDate := closes[end].Date
	ep := Episode{
		Start:          closes[start].Date,
		Ongoing:        ongoing,
		PeakPrice:      runningMax[start],
		TroughPrice:    closes[troughIdx].Value,
		TroughDate:     closes[troughIdx].Date,
		MaxDrawdownPct: dd[troughIdx] * 100,
		DurationDays:   int(endDate.Sub(closes[start].Date).Hours() / 24),
	}
	if !ongoing {
		ep.End = endDate
		if ep.TroughPrice != 0 {
			ep.OpportunityPct = (ep.PeakPrice - ep.TroughPrice) / ep.TroughPrice * 100
		}
	}
	return ep
}

// Worst returns the episode with the largest-magnitude drawdown, or nil when
// episodes is empty.
func Worst(episodes []Episode) *Episode {
	if len(episodes) == 0 {
		return nil
	}
	worst := &episodes[0]
	for i := range episodes {
		if episodes[i].MaxDrawdownPct < worst.MaxDrawdownPct {
			worst = &episodes[i]
		}
	}
	return worst
}
