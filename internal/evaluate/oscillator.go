package evaluate

import (
	"context"
	"fmt"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

// Advance-condition keys of the OSCILLATOR family.
const (
	KeyOscLessThan       = "oscLessThan"
	KeyOscGreaterThan    = "oscGreaterThan"
	KeyOscWithinRange    = "oscWithinRange"
	KeyOscHistoricalLow  = "oscHistoricalLowExtreme"
	KeyOscHistoricalHigh = "oscHistoricalHighExtreme"
)

// defaultOscillatorPeriod is used when an alert does not configure one.
const defaultOscillatorPeriod = 14

// evalOscillator computes the RSI-style momentum indicator over the close
// series and checks the enabled threshold, range, and historical-extreme
// sub-flags.
func evalOscillator(ctx context.Context, env *Context, alert *models.AlertDefinition) ([]models.TriggerEvent, error) {
	closes, err := env.closes(ctx, alert.Symbol)
	if err != nil {
		return nil, err
	}

	flags := alert.Oscillator
	period := flags.Period
	if period <= 0 {
		period = defaultOscillatorPeriod
	}

	values, err := RSI(closes.Values(), period)
	if err != nil {
		return nil, err
	}
	current := values[len(values)-1]

	name := alert.DisplayName
	if name == "" {
		name = alert.Symbol
	}

	var events []models.TriggerEvent

	if flags.LessThan && current < flags.LessThanValue {
		events = append(events, oscEvent(alert, KeyOscLessThan,
			fmt.Sprintf("RSI Alert for %s", name),
			fmt.Sprintf("%s RSI is below %.2f for the period of %d. Current RSI: %.2f.",
				name, flags.LessThanValue, period, current),
			flags.LessThanValue, current))
	}

	if flags.GreaterThan && current > flags.GreaterThanValue {
		events = append(events, oscEvent(alert, KeyOscGreaterThan,
			fmt.Sprintf("RSI Alert for %s", name),
			fmt.Sprintf("%s RSI is above %.2f for the period of %d. Current RSI: %.2f.",
				name, flags.GreaterThanValue, period, current),
			flags.GreaterThanValue, current))
	}

	if flags.WithinRange && current > flags.LowRange && current < flags.HighRange {
		events = append(events, oscEvent(alert, KeyOscWithinRange,
			fmt.Sprintf("RSI Alert for %s", name),
			fmt.Sprintf("%s RSI is within the range %.2f-%.2f for the period of %d. Current RSI: %.2f.",
				name, flags.LowRange, flags.HighRange, period, current),
			flags.LowRange, current))
	}

	if flags.HistoricalLow {
		if low, ok := trailingExtreme(values, flags.HistoricalLowDays, false); ok && current < low {
			events = append(events, oscEvent(alert, KeyOscHistoricalLow,
				fmt.Sprintf("RSI Alert for %s", name),
				fmt.Sprintf("%s RSI has dropped below its trailing %d-observation low of %.2f. Current RSI: %.2f.",
					name, flags.HistoricalLowDays, low, current),
				low, current))
		}
	}

	if flags.HistoricalHigh {
		if high, ok := trailingExtreme(values, flags.HistoricalHighDays, true); ok && current > high {
			events = append(events, oscEvent(alert, KeyOscHistoricalHigh,
				fmt.Sprintf("RSI Alert for %s", name),
				fmt.Sprintf("%s RSI has exceeded its trailing %d-observation high of %.2f. Current RSI: %.2f.",
					name, flags.HistoricalHighDays, high, current),
				high, current))
		}
	}

	return events, nil
}

func oscEvent(alert *models.AlertDefinition, key, title, message string, ref, current float64) models.TriggerEvent {
	return models.TriggerEvent{
		Key:       key,
		Condition: alert.Kind,
		Title:     title,
		Message:   message,
		Reference: ref,
		Current:   current,
	}
}

// trailingExtreme returns the min (or max) of the n observations preceding
// the latest one. The current value is excluded so a fresh extreme can fire.
func trailingExtreme(values []float64, n int, max bool) (float64, bool) {
	if n <= 0 || len(values) < n+1 {
		return 0, false
	}
	window := values[len(values)-1-n : len(values)-1]
	extreme := window[0]
	for _, v := range window {
		if max && v > extreme || !max && v < extreme {
			extreme = v
		}
	}
	return extreme, true
}

// RSI calculates the Relative Strength Index over closes using Wilder's
// smoothing: the first averages are simple means of gains and losses, each
// subsequent average is (prev*(period-1)+x)/period. The returned slice holds
// one value per index from period onward.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "rsi period must be positive")
	}
	if len(closes) < period+1 {
		return nil, errors.ErrDataUnavailable
	}

	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	result := make([]float64, 0, n-period)
	result = append(result, rsiValue(avgGain, avgLoss))

	for i := period + 1; i < n; i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		result = append(result, rsiValue(avgGain, avgLoss))
	}

	return result, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
