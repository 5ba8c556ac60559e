// Package store persists alert definitions.
package store

import (
	"context"

	"ticker-alerts/internal/models"
)

// AlertStore is the persistence boundary for alert definitions.
type AlertStore interface {
	// GetActiveAlerts returns every ACTIVE alert, optionally filtered to
	// the given condition kinds.
	GetActiveAlerts(ctx context.Context, kinds ...models.ConditionKind) ([]*models.AlertDefinition, error)

	GetAlert(ctx context.Context, id string) (*models.AlertDefinition, error)
	SaveAlert(ctx context.Context, alert *models.AlertDefinition) error
	SetStatus(ctx context.Context, id string, status models.AlertStatus) error
	ListAlerts(ctx context.Context) ([]*models.AlertDefinition, error)

	// Fingerprint identifies the current state of the alert set. It changes
	// whenever any alert is created, updated, or removed; the watcher polls
	// it to detect definition changes.
	Fingerprint(ctx context.Context) (string, error)

	Close() error
}

// GroupBySymbol buckets alerts by their symbol. The supervisor runs one
// monitor task per bucket.
func GroupBySymbol(alerts []*models.AlertDefinition) map[string][]*models.AlertDefinition {
	grouped := make(map[string][]*models.AlertDefinition)
	for _, a := range alerts {
		grouped[a.Symbol] = append(grouped[a.Symbol], a)
	}
	return grouped
}
