package evaluate

import (
	"context"
	"fmt"

	"ticker-alerts/internal/models"
)

// KeyMissedOpportunity is the advance-condition key of the OPPORTUNITY family.
const KeyMissedOpportunity = "missedOpportunity"

// evalOpportunity measures the upside from the current price back to the
// historical peak, (peak-current)/current*100. GOING_UP fires while the
// missed upside still exceeds the threshold; GOING_DOWN fires once it has
// shrunk below it.
func evalOpportunity(ctx context.Context, env *Context, alert *models.AlertDefinition) ([]models.TriggerEvent, error) {
	closes, err := env.closes(ctx, alert.Symbol)
	if err != nil {
		return nil, err
	}
	current := currentPrice(alert, closes)
	if current <= 0 {
		return nil, nil
	}

	_, peak := windowExtremes(closes)
	if peak <= 0 {
		return nil, nil
	}
	missedPct := (peak - current) / current * 100

	fired := false
	switch alert.Direction {
	case models.GoingUp:
		fired = missedPct > alert.Value
	case models.GoingDown:
		fired = missedPct < alert.Value
	}
	if !fired {
		return nil, nil
	}

	name := alert.DisplayName
	if name == "" {
		name = alert.Symbol
	}

	return []models.TriggerEvent{{
		Key:          KeyMissedOpportunity,
		Condition:    alert.Kind,
		SubCondition: alert.Direction,
		Title:        fmt.Sprintf("Opportunity Alert for %s", name),
		Message: fmt.Sprintf("%s is %.2f%% below its peak of %.2f. Price: %.2f.",
			name, missedPct, peak, current),
		Reference: peak,
		Current:   current,
	}}, nil
}
