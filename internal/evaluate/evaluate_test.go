package evaluate

import (
	"context"
	"testing"
	"time"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

// fakeHistory serves canned series per symbol.
type fakeHistory struct {
	closes map[string]models.Series
	ratios map[string]models.Series
}

func (f *fakeHistory) CloseSeries(_ context.Context, symbol string) (models.Series, error) {
	return f.closes[symbol], nil
}

func (f *fakeHistory) RatioSeries(_ context.Context, symbol string) (models.Series, error) {
	return f.ratios[symbol], nil
}

// testNow is the fixed evaluation clock: a Wednesday.
var testNow = time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)

// dailySeries builds a series of consecutive days ending at testNow's date.
func dailySeries(values []float64) models.Series {
	s := make(models.Series, len(values))
	for i, v := range values {
		s[i] = models.SeriesPoint{
			Date:  testNow.AddDate(0, 0, i-len(values)+1).Truncate(24 * time.Hour),
			Value: v,
		}
	}
	return s
}

func testEnv(closes, ratios models.Series, symbol string) *Context {
	env := NewContext(&fakeHistory{
		closes: map[string]models.Series{symbol: closes},
		ratios: map[string]models.Series{symbol: ratios},
	})
	env.Now = func() time.Time { return testNow }
	return env
}

func TestEvaluateInertKinds(t *testing.T) {
	env := testEnv(dailySeries([]float64{100, 101}), nil, "ACME")
	for _, kind := range []models.ConditionKind{models.ConditionNews, models.ConditionCrossJunction} {
		alert := &models.AlertDefinition{ID: "a1", Symbol: "ACME", Kind: kind, Status: models.StatusActive}
		events, err := Evaluate(context.Background(), env, alert)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", kind, err)
		}
		if len(events) != 0 {
			t.Errorf("%s: inert kind produced %d events", kind, len(events))
		}
	}
}

func TestEvaluateUnknownKind(t *testing.T) {
	env := testEnv(dailySeries([]float64{100, 101}), nil, "ACME")
	alert := &models.AlertDefinition{ID: "a1", Symbol: "ACME", Kind: "BOLLINGER", Status: models.StatusActive}
	_, err := Evaluate(context.Background(), env, alert)
	if !errors.Is(err, errors.ErrUnknownCondition) {
		t.Errorf("expected ErrUnknownCondition, got %v", err)
	}
}

func TestEvaluateEmptySeries(t *testing.T) {
	env := testEnv(nil, nil, "ACME")
	alert := &models.AlertDefinition{
		ID: "a1", Symbol: "ACME", Kind: models.ConditionPrice,
		Direction: models.GoingUp, Unit: models.UnitPercentage, Value: 5,
		Price: models.PriceConditions{FromTodayOpen: true},
	}
	_, err := Evaluate(context.Background(), env, alert)
	if !errors.Is(err, errors.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}
