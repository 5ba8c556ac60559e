package evaluate

import (
	"context"
	"testing"

	"ticker-alerts/internal/models"
)

func TestOpportunityGoingUp(t *testing.T) {
	// Peak 150, current 100: missed upside is 50%.
	closes := dailySeries([]float64{120, 150, 110})
	env := testEnv(closes, nil, "ACME")

	alert := &models.AlertDefinition{
		ID: "op1", Symbol: "ACME", Kind: models.ConditionOpportunity,
		Status: models.StatusActive, Direction: models.GoingUp, Value: 40,
	}
	alert.CurrentPrice = 100

	events, err := Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyMissedOpportunity {
		t.Fatalf("expected one missedOpportunity event, got %v", events)
	}

	// With a 60% threshold the 50% gap must not fire.
	alert.Value = 60
	events, _ = Evaluate(context.Background(), env, alert)
	if len(events) != 0 {
		t.Error("a 50% gap must not exceed a 60% threshold")
	}
}

func TestOpportunityGoingDown(t *testing.T) {
	// GOING_DOWN fires once the gap to the peak shrinks under the value.
	closes := dailySeries([]float64{120, 150, 110})
	env := testEnv(closes, nil, "ACME")

	alert := &models.AlertDefinition{
		ID: "op2", Symbol: "ACME", Kind: models.ConditionOpportunity,
		Status: models.StatusActive, Direction: models.GoingDown, Value: 10,
	}
	alert.CurrentPrice = 140 // gap is (150-140)/140 = 7.1%

	events, err := Evaluate(context.Background(), env, alert)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}

	alert.CurrentPrice = 120 // gap is 25%
	events, _ = Evaluate(context.Background(), env, alert)
	if len(events) != 0 {
		t.Error("a 25% gap must not fire a shrink-below-10% alert")
	}
}
