package evaluate

import (
	"context"
	"fmt"

	"ticker-alerts/internal/models"
)

// Advance-condition keys of the MOVING_AVERAGE family.
const (
	KeyMATouched      = "maTouched"
	KeyMAFallXFrom    = "maFallXFrom"
	KeyMARiseXFrom    = "maRiseXFrom"
	KeyMANear         = "maNear"
	KeyMASustainAbove = "maSustainAbove"
	KeyMASustainBelow = "maSustainBelow"
)

// evalMovingAverage checks the enabled moving-average sub-flags for each
// configured window length.
func evalMovingAverage(ctx context.Context, env *Context, alert *models.AlertDefinition) ([]models.TriggerEvent, error) {
	closes, err := env.closes(ctx, alert.Symbol)
	if err != nil {
		return nil, err
	}

	flags := alert.MovingAverage
	current := currentPrice(alert, closes)
	name := alert.DisplayName
	if name == "" {
		name = alert.Symbol
	}

	var events []models.TriggerEvent
	for _, window := range flags.Windows {
		avgs := simpleMovingAverage(closes.Values(), window)
		if len(avgs) == 0 {
			continue
		}
		currentAvg := avgs[len(avgs)-1]

		if flags.Touched && touchedAverage(closes.Values(), avgs, window, current) {
			events = append(events, maEvent(alert, KeyMATouched,
				fmt.Sprintf("%s Touched the %d-Day Average", name, window),
				fmt.Sprintf("%s has touched its %d-day moving average from below. Price: %.2f, average: %.2f.",
					name, window, current, currentAvg),
				currentAvg, current))
		}

		if flags.FallXFrom && current < currentAvg*(1-flags.FallXFromValue/100) {
			events = append(events, maEvent(alert, KeyMAFallXFrom,
				fmt.Sprintf("%s Fell Below the %d-Day Average", name, window),
				fmt.Sprintf("%s dropped to %.2f, more than %.2f%% below its %d-day average of %.2f.",
					name, current, flags.FallXFromValue, window, currentAvg),
				currentAvg, current))
		}

		if flags.RiseXFrom && current > currentAvg*(1+flags.RiseXFromValue/100) {
			events = append(events, maEvent(alert, KeyMARiseXFrom,
				fmt.Sprintf("%s Rose Above the %d-Day Average", name, window),
				fmt.Sprintf("%s rose to %.2f, more than %.2f%% above its %d-day average of %.2f.",
					name, current, flags.RiseXFromValue, window, currentAvg),
				currentAvg, current))
		}

		if flags.Near {
			lower := currentAvg * (1 - flags.NearValue/100)
			upper := currentAvg * (1 + flags.NearValue/100)
			if current >= lower && current <= upper {
				events = append(events, maEvent(alert, KeyMANear,
					fmt.Sprintf("%s Nears the %d-Day Average", name, window),
					fmt.Sprintf("%s is within %.2f%% of its %d-day average of %.2f. Price: %.2f.",
						name, flags.NearValue, window, currentAvg, current),
					currentAvg, current))
			}
		}

		if flags.SustainAbove {
			count := sustainCount(closes.Values(), avgs, window, true)
			if count >= flags.SustainAboveDays {
				events = append(events, maEvent(alert, KeyMASustainAbove,
					fmt.Sprintf("%s Sustains Above the %d-Day Average", name, window),
					fmt.Sprintf("%s has stayed above its %d-day average for %d consecutive days. Price: %.2f.",
						name, window, count, current),
					currentAvg, current))
			}
		}

		if flags.SustainBelow {
			count := sustainCount(closes.Values(), avgs, window, false)
			if count >= flags.SustainBelowDays {
				events = append(events, maEvent(alert, KeyMASustainBelow,
					fmt.Sprintf("%s Sustains Below the %d-Day Average", name, window),
					fmt.Sprintf("%s has stayed below its %d-day average for %d consecutive days. Price: %.2f.",
						name, window, count, current),
					currentAvg, current))
			}
		}
	}
	return events, nil
}

func maEvent(alert *models.AlertDefinition, key, title, message string, ref, current float64) models.TriggerEvent {
	return models.TriggerEvent{
		Key:       key,
		Condition: alert.Kind,
		Title:     title,
		Message:   message,
		Reference: ref,
		Current:   current,
	}
}

// simpleMovingAverage returns averages aligned so that avgs[i] is the average
// ending at closes[i+window-1]. Empty when the series is shorter than the
// window.
func simpleMovingAverage(closes []float64, window int) []float64 {
	if window <= 0 || len(closes) < window {
		return nil
	}
	avgs := make([]float64, 0, len(closes)-window+1)
	sum := 0.0
	for i, v := range closes {
		sum += v
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			avgs = append(avgs, sum/float64(window))
		}
	}
	return avgs
}

// touchedAverage reports a cross from below the average to at-or-above it
// between the previous close and the current price.
func touchedAverage(closes, avgs []float64, window int, current float64) bool {
	if len(avgs) < 2 || len(closes) < window+1 {
		return false
	}
	prevClose := closes[len(closes)-2]
	prevAvg := avgs[len(avgs)-2]
	currentAvg := avgs[len(avgs)-1]
	return prevClose < prevAvg && current >= currentAvg
}

// sustainCount walks backward from the latest observation and counts
// consecutive days where the close stays on one side of that day's average.
func sustainCount(closes, avgs []float64, window int, above bool) int {
	count := 0
	for i := 0; i < len(avgs); i++ {
		close := closes[len(closes)-1-i]
		avg := avgs[len(avgs)-1-i]
		if above && close >= avg || !above && close <= avg {
			count++
			continue
		}
		break
	}
	return count
}
