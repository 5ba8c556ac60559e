package evaluate

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ticker-alerts/internal/errors"
	"ticker-alerts/internal/models"
)

func oscAlert(flags models.OscillatorConditions) *models.AlertDefinition {
	return &models.AlertDefinition{
		ID:         "o1",
		Symbol:     "ACME",
		Kind:       models.ConditionOscillator,
		Status:     models.StatusActive,
		Oscillator: flags,
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105, 106}
	values, err := RSI(closes, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range values {
		if v != 100 {
			t.Errorf("values[%d] = %.2f, want 100 for a loss-free series", i, v)
		}
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if _, err := RSI([]float64{100, 101}, 14); !errors.Is(err, errors.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
	if _, err := RSI([]float64{100, 101}, 0); err == nil {
		t.Error("expected error for non-positive period")
	}
}

// Property: RSI stays within [0, 100] for any price series.
func TestRSIBoundsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("RSI within [0, 100]", prop.ForAll(
		func(closes []float64) bool {
			values, err := RSI(closes, 14)
			if err != nil {
				return errors.Is(err, errors.ErrDataUnavailable)
			}
			for _, v := range values {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(40, gen.Float64Range(1.0, 1000.0)),
	))

	properties.TestingRun(t)
}

func TestTrailingExtremeExcludesCurrent(t *testing.T) {
	// 14 observations with minimum 28, then the current value.
	window := []float64{45, 40, 38, 35, 33, 31, 30, 29, 28, 32, 36, 41, 44, 47}

	low, ok := trailingExtreme(append(window, 25), 14, false)
	if !ok || low != 28 {
		t.Fatalf("trailing low = %.2f (ok=%v), want 28", low, ok)
	}
	// Current 25 breaches the trailing low, 30 does not.
	if !(25 < low) {
		t.Error("25 should breach the trailing low of 28")
	}
	if 30 < low {
		t.Error("30 should not breach the trailing low of 28")
	}

	if _, ok := trailingExtreme(window, 14, false); ok {
		t.Error("window with no observation beyond the lookback should not resolve")
	}
}

func TestOscillatorThresholds(t *testing.T) {
	// A strictly falling series drives RSI to 0; a rising one to 100.
	falling := dailySeries([]float64{200, 190, 180, 170, 160, 150, 140, 130, 120, 110})
	rising := dailySeries([]float64{100, 110, 120, 130, 140, 150, 160, 170, 180, 190})

	env := testEnv(falling, nil, "ACME")
	alert := oscAlert(models.OscillatorConditions{Period: 5, LessThan: true, LessThanValue: 30})
	events, err := Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyOscLessThan {
		t.Fatalf("expected one oscLessThan event, got %v", events)
	}

	env = testEnv(rising, nil, "ACME")
	alert = oscAlert(models.OscillatorConditions{Period: 5, GreaterThan: true, GreaterThanValue: 70})
	events, err = Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyOscGreaterThan {
		t.Fatalf("expected one oscGreaterThan event, got %v", events)
	}

	// The falling series must not satisfy the greater-than check.
	env = testEnv(falling, nil, "ACME")
	events, _ = Evaluate(context.Background(), env, alert)
	if len(events) != 0 {
		t.Error("falling series should not exceed an RSI of 70")
	}
}
