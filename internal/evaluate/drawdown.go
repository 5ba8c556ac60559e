package evaluate

import (
	"context"
	"fmt"

	"ticker-alerts/internal/drawdown"
	"ticker-alerts/internal/models"
)

// Advance-condition keys of the DRAWDOWN family.
const (
	KeyNearLastDrawdown         = "nearLastDrawdown"
	KeySurpassedLastDrawdown    = "surpassedLastDrawdown"
	KeySurpassedWorstDrawdown   = "surpassedWorstDrawdown"
	KeyApproachingWorstDrawdown = "approachingWorstDrawdown"
	KeyRecoveredFromDrawdown    = "recoveredFromDrawdown"
)

// evalDrawdown segments the close series into significant drawdown episodes
// and compares the current price against the trough prices of the last and
// worst episodes. Episodes are ordered most-recent-first: index 0 is the
// current episode, index 1 the one before it.
func evalDrawdown(ctx context.Context, env *Context, alert *models.AlertDefinition) ([]models.TriggerEvent, error) {
	closes, err := env.closes(ctx, alert.Symbol)
	if err != nil {
		return nil, err
	}

	episodes := drawdown.Extract(closes)
	price := currentPrice(alert, closes)
	if price <= 0 {
		return nil, nil
	}

	flags := alert.Drawdown
	name := alert.DisplayName
	if name == "" {
		name = alert.Symbol
	}

	var last *drawdown.Episode
	if len(episodes) > 1 {
		last = &episodes[1]
	}
	worst := drawdown.Worst(episodes)

	var events []models.TriggerEvent

	if flags.NearLast && last != nil {
		lower := last.TroughPrice * (1 - flags.NearLastValue/100)
		upper := last.TroughPrice * (1 + flags.NearLastValue/100)
		if price >= lower && price <= upper {
			events = append(events, ddEvent(alert, KeyNearLastDrawdown,
				fmt.Sprintf("%s Near Its Last Drawdown", name),
				fmt.Sprintf("%s is at %.2f, within %.2f%% of its last drawdown trough of %.2f.",
					name, price, flags.NearLastValue, last.TroughPrice),
				last.TroughPrice, price))
		}
	}

	if flags.SurpassedLast && last != nil && price < last.TroughPrice {
		events = append(events, ddEvent(alert, KeySurpassedLastDrawdown,
			fmt.Sprintf("%s Surpassed Its Last Drawdown", name),
			fmt.Sprintf("%s is at %.2f, below its last drawdown trough of %.2f.",
				name, price, last.TroughPrice),
			last.TroughPrice, price))
	}

	if flags.SurpassedWorst && worst != nil && price < worst.TroughPrice {
		events = append(events, ddEvent(alert, KeySurpassedWorstDrawdown,
			fmt.Sprintf("%s Surpassed Its Worst Drawdown", name),
			fmt.Sprintf("%s is at %.2f, below its worst drawdown trough of %.2f.",
				name, price, worst.TroughPrice),
			worst.TroughPrice, price))
	}

	if flags.ApproachingWorst && worst != nil {
		upper := worst.TroughPrice * (1 + flags.ApproachingWorstValue/100)
		if price >= worst.TroughPrice && price <= upper {
			events = append(events, ddEvent(alert, KeyApproachingWorstDrawdown,
				fmt.Sprintf("%s Approaching Its Worst Drawdown", name),
				fmt.Sprintf("%s is at %.2f, within %.2f%% of its worst drawdown trough of %.2f.",
					name, price, flags.ApproachingWorstValue, worst.TroughPrice),
				worst.TroughPrice, price))
		}
	}

	if flags.Recovered && len(episodes) > 0 && episodes[0].Ongoing {
		trough := episodes[0].TroughPrice
		if trough > 0 && price > trough*(1+flags.RecoveredValue/100) {
			reboundPct := (price - trough) / trough * 100
			events = append(events, ddEvent(alert, KeyRecoveredFromDrawdown,
				fmt.Sprintf("%s Recovering From Its Drawdown", name),
				fmt.Sprintf("%s has rebounded %.2f%% from its drawdown trough of %.2f. Price: %.2f.",
					name, reboundPct, trough, price),
				trough, price))
		}
	}

	return events, nil
}

func ddEvent(alert *models.AlertDefinition, key, title, message string, ref, current float64) models.TriggerEvent {
	return models.TriggerEvent{
		Key:       key,
		Condition: alert.Kind,
		Title:     title,
		Message:   message,
		Reference: ref,
		Current:   current,
	}
}
