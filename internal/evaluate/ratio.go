package evaluate

import (
	"context"
	"fmt"

	"ticker-alerts/internal/models"
)

// Advance-condition keys of the RATIO family.
const (
	KeyRatioLessThan          = "ratioLessThan"
	KeyRatioGreaterThan       = "ratioGreaterThan"
	KeyRatioWithinRange       = "ratioWithinRange"
	KeyRatioNearXYearLow      = "ratioNearXYearLow"
	KeyRatioNearXYearHigh     = "ratioNearXYearHigh"
	KeyRatioTrendingUp        = "ratioTrendingUp"
	KeyRatioTrendingDown      = "ratioTrendingDown"
	KeyRatioHistoricalExtreme = "ratioHistoricalExtreme"
)

// evalRatio checks the daily valuation-ratio series against the enabled
// threshold, band, trend, and extreme sub-flags.
func evalRatio(ctx context.Context, env *Context, alert *models.AlertDefinition) ([]models.TriggerEvent, error) {
	series, err := env.ratios(ctx, alert.Symbol)
	if err != nil {
		return nil, err
	}

	last, ok := series.Last()
	if !ok {
		return nil, nil
	}
	current := last.Value

	flags := alert.Ratio
	name := alert.DisplayName
	if name == "" {
		name = alert.Symbol
	}

	var events []models.TriggerEvent

	if flags.LessThan && current < flags.LessThanValue {
		events = append(events, ratioEvent(alert, KeyRatioLessThan,
			fmt.Sprintf("Ratio Alert for %s", name),
			fmt.Sprintf("%s ratio is below %.2f. Current ratio: %.2f.",
				name, flags.LessThanValue, current),
			flags.LessThanValue, current))
	}

	if flags.GreaterThan && current > flags.GreaterThanValue {
		events = append(events, ratioEvent(alert, KeyRatioGreaterThan,
			fmt.Sprintf("Ratio Alert for %s", name),
			fmt.Sprintf("%s ratio is above %.2f. Current ratio: %.2f.",
				name, flags.GreaterThanValue, current),
			flags.GreaterThanValue, current))
	}

	if flags.WithinRange && current > flags.LowRange && current < flags.HighRange {
		events = append(events, ratioEvent(alert, KeyRatioWithinRange,
			fmt.Sprintf("Ratio Alert for %s", name),
			fmt.Sprintf("%s ratio is within the range %.2f-%.2f. Current ratio: %.2f.",
				name, flags.LowRange, flags.HighRange, current),
			flags.LowRange, current))
	}

	now := env.now()

	if flags.NearXYearLow {
		years := flags.NearXYearLowYears
		if years <= 0 {
			years = 1
		}
		window := series.Since(now.AddDate(-years, 0, 0))
		if low, _ := windowExtremes(window); low > 0 {
			upper := low * (1 + flags.NearXYearLowValue/100)
			if current <= upper {
				events = append(events, ratioEvent(alert, KeyRatioNearXYearLow,
					fmt.Sprintf("Ratio Alert for %s", name),
					fmt.Sprintf("%s ratio is within %.2f%% of its %d-year low of %.2f. Current ratio: %.2f.",
						name, flags.NearXYearLowValue, years, low, current),
					low, current))
			}
		}
	}

	if flags.NearXYearHigh {
		years := flags.NearXYearHighYears
		if years <= 0 {
			years = 1
		}
		window := series.Since(now.AddDate(-years, 0, 0))
		if _, high := windowExtremes(window); high > 0 {
			lower := high * (1 - flags.NearXYearHighValue/100)
			if current >= lower {
				events = append(events, ratioEvent(alert, KeyRatioNearXYearHigh,
					fmt.Sprintf("Ratio Alert for %s", name),
					fmt.Sprintf("%s ratio is within %.2f%% of its %d-year high of %.2f. Current ratio: %.2f.",
						name, flags.NearXYearHighValue, years, high, current),
					high, current))
			}
		}
	}

	if flags.TrendingUp {
		days := flags.TrendingUpDays
		if days <= 0 {
			days = 5
		}
		if monotonicRun(series.Values(), days, true) {
			events = append(events, ratioEvent(alert, KeyRatioTrendingUp,
				fmt.Sprintf("Ratio Alert for %s", name),
				fmt.Sprintf("%s ratio has risen for %d consecutive observations. Current ratio: %.2f.",
					name, days, current),
				0, current))
		}
	}

	if flags.TrendingDown {
		days := flags.TrendingDownDays
		if days <= 0 {
			days = 5
		}
		if monotonicRun(series.Values(), days, false) {
			events = append(events, ratioEvent(alert, KeyRatioTrendingDown,
				fmt.Sprintf("Ratio Alert for %s", name),
				fmt.Sprintf("%s ratio has fallen for %d consecutive observations. Current ratio: %.2f.",
					name, days, current),
				0, current))
		}
	}

	if flags.HistoricalExtreme {
		values := series.Values()
		if ev, fired := historicalExtreme(alert, name, values, current); fired {
			events = append(events, ev)
		}
	}

	return events, nil
}

// historicalExtreme fires when the current ratio breaches the all-time low
// (GOING_DOWN) or high (GOING_UP) of the series before today.
func historicalExtreme(alert *models.AlertDefinition, name string, values []float64, current float64) (models.TriggerEvent, bool) {
	if len(values) < 2 {
		return models.TriggerEvent{}, false
	}
	prior := values[:len(values)-1]
	low, high := prior[0], prior[0]
	for _, v := range prior {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}

	switch alert.Direction {
	case models.GoingDown:
		if current < low {
			return ratioEvent(alert, KeyRatioHistoricalExtreme,
				fmt.Sprintf("Ratio Alert for %s", name),
				fmt.Sprintf("%s ratio has dropped below its historical low of %.2f. Current ratio: %.2f.",
					name, low, current),
				low, current), true
		}
	case models.GoingUp:
		if current > high {
			return ratioEvent(alert, KeyRatioHistoricalExtreme,
				fmt.Sprintf("Ratio Alert for %s", name),
				fmt.Sprintf("%s ratio has exceeded its historical high of %.2f. Current ratio: %.2f.",
					name, high, current),
				high, current), true
		}
	}
	return models.TriggerEvent{}, false
}

func ratioEvent(alert *models.AlertDefinition, key, title, message string, ref, current float64) models.TriggerEvent {
	return models.TriggerEvent{
		Key:       key,
		Condition: alert.Kind,
		Title:     title,
		Message:   message,
		Reference: ref,
		Current:   current,
	}
}

// monotonicRun reports whether the last n+1 observations form a strictly
// rising (or falling) run.
func monotonicRun(values []float64, n int, up bool) bool {
	if n <= 0 || len(values) < n+1 {
		return false
	}
	tail := values[len(values)-n-1:]
	for i := 1; i < len(tail); i++ {
		if up && tail[i] <= tail[i-1] || !up && tail[i] >= tail[i-1] {
			return false
		}
	}
	return true
}
