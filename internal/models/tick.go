package models

import "time"

// PriceTick is a single live price observation. Ticks are ephemeral and never
// persisted by the engine.
type PriceTick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// SeriesPoint is one daily observation of a historical series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered-by-date sequence of daily observations.
type Series []SeriesPoint

// Last returns the most recent point. ok is false for an empty series.
func (s Series) Last() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	return s[len(s)-1], true
}

// Values returns the raw value column in series order.
func (s Series) Values() []float64 {
	vals := make([]float64, len(s))
	for i, p := range s {
		vals[i] = p.Value
	}
	return vals
}

// Since returns the suffix of the series whose dates are on or after cutoff.
func (s Series) Since(cutoff time.Time) Series {
	for i, p := range s {
		if !p.Date.Before(cutoff) {
			return s[i:]
		}
	}
	return nil
}

// Until returns the prefix of the series whose dates are on or before cutoff.
func (s Series) Until(cutoff time.Time) Series {
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].Date.After(cutoff) {
			return s[:i+1]
		}
	}
	return nil
}
