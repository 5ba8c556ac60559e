// Package evaluate implements the condition evaluator library. Each evaluator
// is a pure function over (alert definition, market context) that returns
// zero or more trigger events; the only side effect is reading historical
// series through the context's provider.
package evaluate

import (
	"context"
	"time"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/history"
	"ticker-alerts/internal/models"
)

// Context carries the collaborators an evaluation may consult.
type Context struct {
	History history.Provider

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewContext creates an evaluation context around a history provider.
func NewContext(provider history.Provider) *Context {
	return &Context{History: provider, Now: time.Now}
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// closes fetches the daily close series for a symbol.
func (c *Context) closes(ctx context.Context, symbol string) (models.Series, error) {
	series, err := c.History.CloseSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, errors.ErrDataUnavailable
	}
	return series, nil
}

// ratios fetches the daily ratio series for a symbol.
func (c *Context) ratios(ctx context.Context, symbol string) (models.Series, error) {
	series, err := c.History.RatioSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, errors.ErrDataUnavailable
	}
	return series, nil
}

// Evaluate routes an alert to the evaluator for its condition kind. Inert
// kinds return no triggers; an unknown kind returns ErrUnknownCondition so
// the caller can log it and leave the alert inert.
func Evaluate(ctx context.Context, env *Context, alert *models.AlertDefinition) ([]models.TriggerEvent, error) {
	switch alert.Kind {
	case models.ConditionPrice:
		return evalPrice(ctx, env, alert)
	case models.ConditionMovingAverage:
		return evalMovingAverage(ctx, env, alert)
	case models.ConditionOscillator:
		return evalOscillator(ctx, env, alert)
	case models.ConditionRatio:
		return evalRatio(ctx, env, alert)
	case models.ConditionDrawdown:
		return evalDrawdown(ctx, env, alert)
	case models.ConditionOpportunity:
		return evalOpportunity(ctx, env, alert)
	case models.ConditionNews, models.ConditionCrossJunction:
		// Inert kinds: recognized, never evaluated.
		return nil, nil
	default:
		return nil, errors.ErrUnknownCondition
	}
}

// currentPrice resolves the price an evaluation compares against: the live
// tick attached by the dispatcher when present, the latest close otherwise.
func currentPrice(alert *models.AlertDefinition, closes models.Series) float64 {
	if alert.CurrentPrice > 0 {
		return alert.CurrentPrice
	}
	if last, ok := closes.Last(); ok {
		return last.Value
	}
	return 0
}
