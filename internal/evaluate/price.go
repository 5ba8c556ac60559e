package evaluate

import (
	"context"
	"fmt"
	"time"

	"ticker-alerts/internal/models"
)

// Advance-condition keys of the PRICE family.
const (
	KeyFromTodayOpen          = "fromTodayOpen"
	KeyFromYesterdayClose     = "fromYesterdayClose"
	KeyWithinCurrentWeek      = "withinCurrentWeek"
	KeyWithinPastXWeeks       = "withinPastXWeeks"
	KeyWithinPastXWeekExtreme = "withinPastXWeekExtreme"
	KeyFromRecentHighest      = "fromRecentHighest"
)

// reference is one resolved comparison point for a PRICE check.
type reference struct {
	key   string
	label string
	price float64
}

// evalPrice runs every enabled PRICE sub-flag against its reference price.
//
// Comparison policy for the whole family: the chosen metric (absolute change
// or percentage change, per the alert's unit) must be strictly greater than
// the threshold for GOING_UP, strictly less than the negated threshold for
// GOING_DOWN.
func evalPrice(ctx context.Context, env *Context, alert *models.AlertDefinition) ([]models.TriggerEvent, error) {
	if alert.Direction != models.GoingUp && alert.Direction != models.GoingDown {
		return nil, nil
	}

	closes, err := env.closes(ctx, alert.Symbol)
	if err != nil {
		return nil, err
	}
	current := currentPrice(alert, closes)
	if current <= 0 {
		return nil, nil
	}

	now := env.now()
	flags := alert.Price
	var refs []reference

	if flags.FromTodayOpen {
		if ref, ok := todayOpen(closes, now); ok {
			refs = append(refs, reference{KeyFromTodayOpen, "today's open", ref})
		}
	}
	if flags.FromYesterdayClose {
		if ref, ok := yesterdayClose(closes, now); ok {
			refs = append(refs, reference{KeyFromYesterdayClose, "yesterday's close", ref})
		}
	}
	if flags.WithinCurrentWeek {
		if ref, ok := weekStart(closes, now); ok {
			refs = append(refs, reference{KeyWithinCurrentWeek, "this week's start", ref})
		}
	}

	weeks := flags.Weeks
	if weeks <= 0 {
		weeks = 1
	}
	if flags.WithinPastXWeeks {
		cutoff := now.AddDate(0, 0, -7*weeks)
		if past := closes.Until(cutoff); len(past) > 0 {
			label := fmt.Sprintf("the price %d week(s) ago", weeks)
			refs = append(refs, reference{KeyWithinPastXWeeks, label, past[len(past)-1].Value})
		}
	}
	if flags.WithinPastXWeekExtreme {
		cutoff := now.AddDate(0, 0, -7*weeks)
		if window := closes.Since(cutoff); len(window) > 0 {
			// GOING_UP measures the rise from the window trough,
			// GOING_DOWN the fall from the window peak.
			low, high := windowExtremes(window)
			if alert.Direction == models.GoingUp {
				refs = append(refs, reference{KeyWithinPastXWeekExtreme, fmt.Sprintf("the %d-week low", weeks), low})
			} else {
				refs = append(refs, reference{KeyWithinPastXWeekExtreme, fmt.Sprintf("the %d-week high", weeks), high})
			}
		}
	}
	if flags.FromRecentHighest {
		_, high := windowExtremes(closes)
		refs = append(refs, reference{KeyFromRecentHighest, "the recent highest price", high})
	}

	var events []models.TriggerEvent
	for _, ref := range refs {
		if ref.price <= 0 {
			continue
		}
		if ev, ok := comparePrice(alert, ref, current); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func comparePrice(alert *models.AlertDefinition, ref reference, current float64) (models.TriggerEvent, bool) {
	change := current - ref.price
	pct := change / ref.price * 100

	metric := change
	if alert.Unit == models.UnitPercentage {
		metric = pct
	}

	fired := false
	switch alert.Direction {
	case models.GoingUp:
		fired = metric > alert.Value
	case models.GoingDown:
		fired = metric < -alert.Value
	}
	if !fired {
		return models.TriggerEvent{}, false
	}

	name := alert.DisplayName
	if name == "" {
		name = alert.Symbol
	}

	var title, message string
	if alert.Direction == models.GoingUp {
		title = fmt.Sprintf("%s Going Up", name)
		if alert.Unit == models.UnitPercentage {
			message = fmt.Sprintf("%s is going up! The price has risen %.2f%% from %s of %.2f to %.2f.",
				name, abs(pct), ref.label, ref.price, current)
		} else {
			message = fmt.Sprintf("%s is going up! The price has risen %.2f from %s of %.2f to %.2f.",
				name, abs(change), ref.label, ref.price, current)
		}
	} else {
		title = fmt.Sprintf("%s Going Down", name)
		if alert.Unit == models.UnitPercentage {
			message = fmt.Sprintf("%s is going down! The price has dropped %.2f%% from %s of %.2f to %.2f.",
				name, abs(pct), ref.label, ref.price, current)
		} else {
			message = fmt.Sprintf("%s is going down! The price has dropped %.2f from %s of %.2f to %.2f.",
				name, abs(change), ref.label, ref.price, current)
		}
	}

	return models.TriggerEvent{
		Key:          ref.key,
		Condition:    alert.Kind,
		SubCondition: alert.Direction,
		Unit:         alert.Unit,
		Title:        title,
		Message:      message,
		Reference:    ref.price,
		Current:      current,
	}, true
}

// todayOpen returns the first observation dated today. With a daily series
// this is the session's opening record; absent a point for today the check
// is skipped.
func todayOpen(closes models.Series, now time.Time) (float64, bool) {
	last, ok := closes.Last()
	if !ok || !sameDay(last.Date, now) {
		return 0, false
	}
	return last.Value, true
}

// yesterdayClose returns the most recent close before today's session.
func yesterdayClose(closes models.Series, now time.Time) (float64, bool) {
	if len(closes) == 0 {
		return 0, false
	}
	i := len(closes) - 1
	if sameDay(closes[i].Date, now) {
		i--
	}
	if i < 0 {
		return 0, false
	}
	return closes[i].Value, true
}

// weekStart returns the first observation on or after Monday of the current
// week.
func weekStart(closes models.Series, now time.Time) (float64, bool) {
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -offset)
	week := closes.Since(monday)
	if len(week) == 0 {
		return 0, false
	}
	return week[0].Value, true
}

func windowExtremes(window models.Series) (low, high float64) {
	if len(window) == 0 {
		return 0, 0
	}
	low, high = window[0].Value, window[0].Value
	for _, p := range window {
		if p.Value < low {
			low = p.Value
		}
		if p.Value > high {
			high = p.Value
		}
	}
	return low, high
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
