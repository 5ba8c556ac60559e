package evaluate

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"ticker-alerts/internal/models"
)

func priceAlert(direction models.Direction, unit models.ValueUnit, value float64, flags models.PriceConditions) *models.AlertDefinition {
	return &models.AlertDefinition{
		ID:          "p1",
		Symbol:      "ACME",
		DisplayName: "Acme Corp",
		Kind:        models.ConditionPrice,
		Status:      models.StatusActive,
		Direction:   direction,
		Unit:        unit,
		Value:       value,
		Price:       flags,
	}
}

func TestPriceFromTodayOpenGoingUp(t *testing.T) {
	// Open 100, threshold 5%: 106 fires, 104 does not, 105 is not strict.
	closes := dailySeries([]float64{98, 100})
	env := testEnv(closes, nil, "ACME")

	cases := []struct {
		price float64
		fires bool
	}{
		{106, true},
		{105, false},
		{104, false},
	}
	for _, tc := range cases {
		alert := priceAlert(models.GoingUp, models.UnitPercentage, 5,
			models.PriceConditions{FromTodayOpen: true})
		alert.CurrentPrice = tc.price

		events, err := Evaluate(context.Background(), env, alert)
		if err != nil {
			t.Fatalf("price %.2f: %v", tc.price, err)
		}
		if fired := len(events) > 0; fired != tc.fires {
			t.Errorf("price %.2f: fired = %v, want %v", tc.price, fired, tc.fires)
		}
		if tc.fires {
			if events[0].Key != KeyFromTodayOpen {
				t.Errorf("key = %q, want %q", events[0].Key, KeyFromTodayOpen)
			}
			if events[0].Title != "Acme Corp Going Up" {
				t.Errorf("title = %q", events[0].Title)
			}
		}
	}
}

func TestPriceFromYesterdayCloseGoingDown(t *testing.T) {
	// Yesterday's close 200, threshold 10 absolute: 189 fires, 191 does not.
	closes := dailySeries([]float64{200, 195})
	env := testEnv(closes, nil, "ACME")

	alert := priceAlert(models.GoingDown, models.UnitAbsolute, 10,
		models.PriceConditions{FromYesterdayClose: true})
	alert.CurrentPrice = 189

	events, err := Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Key != KeyFromYesterdayClose {
		t.Errorf("key = %q", events[0].Key)
	}

	alert.CurrentPrice = 191
	events, err = Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("drop of 9 must not cross a threshold of 10")
	}
}

func TestPriceFromRecentHighest(t *testing.T) {
	// Series high is 150; a drop past 20% fires GOING_DOWN.
	closes := dailySeries([]float64{120, 150, 130, 125})
	env := testEnv(closes, nil, "ACME")

	alert := priceAlert(models.GoingDown, models.UnitPercentage, 20,
		models.PriceConditions{FromRecentHighest: true})
	alert.CurrentPrice = 115 // -23.3% from 150

	events, err := Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyFromRecentHighest {
		t.Fatalf("expected one fromRecentHighest event, got %v", events)
	}
}

func TestPriceMultipleFlagsMultipleEvents(t *testing.T) {
	closes := dailySeries([]float64{90, 100})
	env := testEnv(closes, nil, "ACME")

	alert := priceAlert(models.GoingUp, models.UnitPercentage, 5,
		models.PriceConditions{FromTodayOpen: true, FromRecentHighest: true})
	alert.CurrentPrice = 110 // +10% from open 100, +10% from high 100

	events, err := Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

// Property: the fromTodayOpen check fires exactly when the percentage change
// from the opening reference strictly exceeds the threshold.
func TestPricePercentageThresholdProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("fires iff pct change strictly exceeds threshold", prop.ForAll(
		func(open, current, threshold float64) bool {
			closes := dailySeries([]float64{open})
			env := testEnv(closes, nil, "ACME")

			alert := priceAlert(models.GoingUp, models.UnitPercentage, threshold,
				models.PriceConditions{FromTodayOpen: true})
			alert.CurrentPrice = current

			events, err := Evaluate(context.Background(), env, alert)
			if err != nil {
				return false
			}
			pct := (current - open) / open * 100
			return (len(events) > 0) == (pct > threshold)
		},
		gen.Float64Range(1.0, 1000.0),
		gen.Float64Range(1.0, 2000.0),
		gen.Float64Range(0.1, 50.0),
	))

	properties.TestingRun(t)
}
