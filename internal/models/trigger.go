package models

// TriggerEvent is the output of a successful condition evaluation. It carries
// the human-readable payload forwarded to the notification service and the
// advance-condition key used for deduplication.
type TriggerEvent struct {
	Key          string        `json:"advanceCondition"`
	Condition    ConditionKind `json:"condition"`
	SubCondition Direction     `json:"subCondition,omitempty"`
	Unit         ValueUnit     `json:"valueType,omitempty"`
	Title        string        `json:"alertTitle"`
	Message      string        `json:"alertMessage"`

	// Reference and Current record the values the comparison used.
	Reference float64 `json:"-"`
	Current   float64 `json:"-"`
}
