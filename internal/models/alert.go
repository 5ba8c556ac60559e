// Package models provides domain models for the alert engine.
package models

import "time"

// ConditionKind identifies the family of checks an alert runs.
type ConditionKind string

const (
	ConditionPrice         ConditionKind = "PRICE"
	ConditionMovingAverage ConditionKind = "MOVING_AVERAGE"
	ConditionRatio         ConditionKind = "RATIO"
	ConditionOscillator    ConditionKind = "OSCILLATOR"
	ConditionDrawdown      ConditionKind = "DRAWDOWN"
	ConditionOpportunity   ConditionKind = "OPPORTUNITY"

	// Inert kinds: recognized but never evaluated.
	ConditionNews          ConditionKind = "NEWS"
	ConditionCrossJunction ConditionKind = "CROSS_JUNCTION"
)

// Known reports whether k is one of the closed set of condition kinds.
func (k ConditionKind) Known() bool {
	switch k {
	case ConditionPrice, ConditionMovingAverage, ConditionRatio,
		ConditionOscillator, ConditionDrawdown, ConditionOpportunity,
		ConditionNews, ConditionCrossJunction:
		return true
	}
	return false
}

// AlertStatus represents the lifecycle state of an alert definition.
type AlertStatus string

const (
	StatusActive      AlertStatus = "ACTIVE"
	StatusDeactivated AlertStatus = "DEACTIVATED"
)

// Direction is the side of the move an alert watches for.
type Direction string

const (
	GoingUp   Direction = "GOING_UP"
	GoingDown Direction = "GOING_DOWN"
)

// ValueUnit says how an alert's threshold value is interpreted.
type ValueUnit string

const (
	UnitPercentage ValueUnit = "PERCENTAGE"
	UnitAbsolute   ValueUnit = "ABSOLUTE"
)

// PriceConditions holds the sub-flags of a PRICE alert. Each flag enables one
// named reference-price check.
type PriceConditions struct {
	FromTodayOpen          bool `json:"fromTodayOpen"`
	FromYesterdayClose     bool `json:"fromYesterdayClose"`
	WithinCurrentWeek      bool `json:"withinCurrentWeek"`
	WithinPastXWeeks       bool `json:"withinPastXWeeks"`
	WithinPastXWeekExtreme bool `json:"withinPastXWeekExtreme"`
	FromRecentHighest      bool `json:"fromRecentHighest"`
	Weeks                  int  `json:"weeks"` // lookback for the past-X-week checks
}

// MovingAverageConditions holds the sub-flags of a MOVING_AVERAGE alert.
// Windows lists the moving-average lengths each check runs against.
type MovingAverageConditions struct {
	Windows []int `json:"windows"`

	Touched bool `json:"touched"`

	FallXFrom      bool    `json:"fallXFrom"`
	FallXFromValue float64 `json:"fallXFromValue"`
	RiseXFrom      bool    `json:"riseXFrom"`
	RiseXFromValue float64 `json:"riseXFromValue"`

	Near      bool    `json:"near"`
	NearValue float64 `json:"nearValue"` // band half-width in percent

	SustainAbove     bool `json:"sustainAbove"`
	SustainAboveDays int  `json:"sustainAboveDays"`
	SustainBelow     bool `json:"sustainBelow"`
	SustainBelowDays int  `json:"sustainBelowDays"`
}

// OscillatorConditions holds the sub-flags of an OSCILLATOR alert.
type OscillatorConditions struct {
	Period int `json:"period"`

	LessThan         bool    `json:"lessThan"`
	LessThanValue    float64 `json:"lessThanValue"`
	GreaterThan      bool    `json:"greaterThan"`
	GreaterThanValue float64 `json:"greaterThanValue"`

	WithinRange bool    `json:"withinRange"`
	LowRange    float64 `json:"lowRange"`
	HighRange   float64 `json:"highRange"`

	HistoricalLow      bool `json:"historicalLow"`
	HistoricalLowDays  int  `json:"historicalLowDays"`
	HistoricalHigh     bool `json:"historicalHigh"`
	HistoricalHighDays int  `json:"historicalHighDays"`
}

// RatioConditions holds the sub-flags of a RATIO alert.
type RatioConditions struct {
	LessThan         bool    `json:"lessThan"`
	LessThanValue    float64 `json:"lessThanValue"`
	GreaterThan      bool    `json:"greaterThan"`
	GreaterThanValue float64 `json:"greaterThanValue"`

	WithinRange bool    `json:"withinRange"`
	LowRange    float64 `json:"lowRange"`
	HighRange   float64 `json:"highRange"`

	NearXYearLow       bool    `json:"nearXYearLow"`
	NearXYearLowYears  int     `json:"nearXYearLowYears"`
	NearXYearLowValue  float64 `json:"nearXYearLowValue"` // band in percent
	NearXYearHigh      bool    `json:"nearXYearHigh"`
	NearXYearHighYears int     `json:"nearXYearHighYears"`
	NearXYearHighValue float64 `json:"nearXYearHighValue"`

	TrendingUp        bool `json:"trendingUp"`
	TrendingUpDays    int  `json:"trendingUpDays"`
	TrendingDown      bool `json:"trendingDown"`
	TrendingDownDays  int  `json:"trendingDownDays"`
	HistoricalExtreme bool `json:"historicalExtreme"`
}

// DrawdownConditions holds the sub-flags of a DRAWDOWN alert. The tolerance
// values are percentages.
type DrawdownConditions struct {
	NearLast      bool    `json:"nearLast"`
	NearLastValue float64 `json:"nearLastValue"`

	SurpassedLast  bool `json:"surpassedLast"`
	SurpassedWorst bool `json:"surpassedWorst"`

	ApproachingWorst      bool    `json:"approachingWorst"`
	ApproachingWorstValue float64 `json:"approachingWorstValue"`

	Recovered      bool    `json:"recovered"`
	RecoveredValue float64 `json:"recoveredValue"`
}

// AlertDefinition is a user-defined market condition bound to one symbol.
// The store owns it; the engine treats it as an immutable value per evaluation
// cycle. CurrentPrice is ephemeral tick context attached by the dispatcher to
// a working copy before routing.
type AlertDefinition struct {
	ID          string
	Symbol      string
	DisplayName string
	Kind        ConditionKind
	Status      AlertStatus
	Direction   Direction
	Value       float64
	Unit        ValueUnit

	Price         PriceConditions
	MovingAverage MovingAverageConditions
	Oscillator    OscillatorConditions
	Ratio         RatioConditions
	Drawdown      DrawdownConditions

	Recipients []string
	Frequency  string

	CreatedAt time.Time
	UpdatedAt time.Time

	// CurrentPrice is the live price attached at dispatch time. Never
	// persisted.
	CurrentPrice float64
}

// Active reports whether the alert should be routed to an evaluator.
func (a *AlertDefinition) Active() bool {
	return a.Status == StatusActive
}

// Recipient returns the primary recipient identifier, or "" when none is set.
func (a *AlertDefinition) Recipient() string {
	if len(a.Recipients) == 0 {
		return ""
	}
	return a.Recipients[0]
}
