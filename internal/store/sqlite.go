package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

// SQLiteStore implements AlertStore on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the alert database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStoreUnavailable, "opening %s: %v", dbPath, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		display_name TEXT,
		kind TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		direction TEXT,
		value REAL,
		unit TEXT,
		conditions TEXT NOT NULL DEFAULT '{}',
		recipients TEXT NOT NULL DEFAULT '[]',
		frequency TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol);
	CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// conditionsColumn is the JSON stored in the conditions column: only the
// sub-flag struct matching the alert's kind is populated.
type conditionsColumn struct {
	Price         *models.PriceConditions         `json:"price,omitempty"`
	MovingAverage *models.MovingAverageConditions `json:"movingAverage,omitempty"`
	Oscillator    *models.OscillatorConditions    `json:"oscillator,omitempty"`
	Ratio         *models.RatioConditions         `json:"ratio,omitempty"`
	Drawdown      *models.DrawdownConditions      `json:"drawdown,omitempty"`
}

// GetActiveAlerts returns every ACTIVE alert, optionally filtered by kind.
func (s *SQLiteStore) GetActiveAlerts(ctx context.Context, kinds ...models.ConditionKind) ([]*models.AlertDefinition, error) {
	query := `SELECT id, symbol, display_name, kind, status, direction, value, unit,
		conditions, recipients, frequency, created_at, updated_at
		FROM alerts WHERE status = ?`
	args := []interface{}{string(models.StatusActive)}

	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, k := range kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		query += " AND kind IN (" + strings.Join(placeholders, ",") + ")"
	}
	query += " ORDER BY symbol, created_at"

	return s.queryAlerts(ctx, query, args...)
}

// GetAlert returns one alert by id, or ErrStoreUnavailable-wrapped not-found.
func (s *SQLiteStore) GetAlert(ctx context.Context, id string) (*models.AlertDefinition, error) {
	alerts, err := s.queryAlerts(ctx, `SELECT id, symbol, display_name, kind, status, direction,
		value, unit, conditions, recipients, frequency, created_at, updated_at
		FROM alerts WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, fmt.Errorf("alert %s: %w", id, sql.ErrNoRows)
	}
	return alerts[0], nil
}

// ListAlerts returns every alert regardless of status.
func (s *SQLiteStore) ListAlerts(ctx context.Context) ([]*models.AlertDefinition, error) {
	return s.queryAlerts(ctx, `SELECT id, symbol, display_name, kind, status, direction,
		value, unit, conditions, recipients, frequency, created_at, updated_at
		FROM alerts ORDER BY symbol, created_at`)
}

func (s *SQLiteStore) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]*models.AlertDefinition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying alerts")
	}
	defer rows.Close()

	var alerts []*models.AlertDefinition
	for rows.Next() {
		var (
			a          models.AlertDefinition
			dispName   sql.NullString
			direction  sql.NullString
			value      sql.NullFloat64
			unit       sql.NullString
			frequency  sql.NullString
			conditions string
			recipients string
		)
		if err := rows.Scan(&a.ID, &a.Symbol, &dispName, &a.Kind, &a.Status, &direction,
			&value, &unit, &conditions, &recipients, &frequency, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning alert row")
		}
		a.DisplayName = dispName.String
		a.Direction = models.Direction(direction.String)
		a.Value = value.Float64
		a.Unit = models.ValueUnit(unit.String)
		a.Frequency = frequency.String

		var col conditionsColumn
		if err := json.Unmarshal([]byte(conditions), &col); err != nil {
			return nil, errors.Wrapf(err, "decoding conditions for alert %s", a.ID)
		}
		if col.Price != nil {
			a.Price = *col.Price
		}
		if col.MovingAverage != nil {
			a.MovingAverage = *col.MovingAverage
		}
		if col.Oscillator != nil {
			a.Oscillator = *col.Oscillator
		}
		if col.Ratio != nil {
			a.Ratio = *col.Ratio
		}
		if col.Drawdown != nil {
			a.Drawdown = *col.Drawdown
		}

		if err := json.Unmarshal([]byte(recipients), &a.Recipients); err != nil {
			return nil, errors.Wrapf(err, "decoding recipients for alert %s", a.ID)
		}

		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// SaveAlert inserts or replaces an alert definition.
func (s *SQLiteStore) SaveAlert(ctx context.Context, alert *models.AlertDefinition) error {
	col := conditionsColumn{}
	switch alert.Kind {
	case models.ConditionPrice:
		col.Price = &alert.Price
	case models.ConditionMovingAverage:
		col.MovingAverage = &alert.MovingAverage
	case models.ConditionOscillator:
		col.Oscillator = &alert.Oscillator
	case models.ConditionRatio:
		col.Ratio = &alert.Ratio
	case models.ConditionDrawdown:
		col.Drawdown = &alert.Drawdown
	}

	conditions, err := json.Marshal(col)
	if err != nil {
		return errors.Wrap(err, "encoding conditions")
	}
	recipients, err := json.Marshal(alert.Recipients)
	if err != nil {
		return errors.Wrap(err, "encoding recipients")
	}

	status := alert.Status
	if status == "" {
		status = models.StatusActive
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO alerts
		(id, symbol, display_name, kind, status, direction, value, unit, conditions, recipients, frequency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			symbol = excluded.symbol,
			display_name = excluded.display_name,
			kind = excluded.kind,
			status = excluded.status,
			direction = excluded.direction,
			value = excluded.value,
			unit = excluded.unit,
			conditions = excluded.conditions,
			recipients = excluded.recipients,
			frequency = excluded.frequency,
			updated_at = CURRENT_TIMESTAMP`,
		alert.ID, alert.Symbol, alert.DisplayName, string(alert.Kind), string(status),
		string(alert.Direction), alert.Value, string(alert.Unit),
		string(conditions), string(recipients), alert.Frequency)
	if err != nil {
		return errors.Wrapf(err, "saving alert %s", alert.ID)
	}
	return nil
}

// SetStatus activates or deactivates an alert.
func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status models.AlertStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id)
	if err != nil {
		return errors.Wrapf(err, "updating status of alert %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Fingerprint combines the row count with the newest update time, so any
// create, update, or delete changes it.
func (s *SQLiteStore) Fingerprint(ctx context.Context) (string, error) {
	var count int
	var latest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(updated_at) FROM alerts`).Scan(&count, &latest)
	if err != nil {
		return "", errors.Wrap(err, "fingerprinting alert set")
	}
	return fmt.Sprintf("%d:%s", count, latest.String), nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
