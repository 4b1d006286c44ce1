package models

import "time"

type TrainType string

const (
	TrainExpress   TrainType = "express"
	TrainPassenger TrainType = "passenger"
	TrainFreight   TrainType = "freight"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type TrainStatus string

const (
	StatusRunning   TrainStatus = "running"
	StatusWaiting   TrainStatus = "waiting"
	StatusHalted    TrainStatus = "halted"
	StatusCompleted TrainStatus = "completed"
)

// Train is one entity in the registry. Position is corridor-relative and
// may carry half units while a speed penalty applies.
type Train struct {
	ID           int         `json:"id"`
	Number       string      `json:"number"`
	Type         TrainType   `json:"type"`
	Direction    Direction   `json:"direction"`
	Status       TrainStatus `json:"status"`
	Position     float64     `json:"position"`
	DelayMinutes int         `json:"delay_minutes"`
	Problem      string      `json:"problem"`
	LastUpdate   string      `json:"last_update"`
}

// TrainView is a train as exposed to the presentation layer.
type TrainView struct {
	Train
	Station string `json:"station"`
}

type PriorityWeights struct {
	Express          float64 `json:"express"`
	Passenger        float64 `json:"passenger"`
	Freight          float64 `json:"freight"`
	DelaySensitivity float64 `json:"delay_sensitivity"`
}

func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{
		Express:          3,
		Passenger:        2,
		Freight:          1,
		DelaySensitivity: 0.1,
	}
}

type Impact string

const (
	ImpactSafetyCritical Impact = "Safety Critical"
	ImpactHigh           Impact = "High"
	ImpactMedium         Impact = "Medium"
	ImpactLow            Impact = "Low"
)

// ActionKind is the structured effect of accepting a recommendation.
type ActionKind string

const (
	ActionHold       ActionKind = "hold"
	ActionDivertLoop ActionKind = "divert_loop"
	ActionPrioritize ActionKind = "prioritize"
	ActionResume     ActionKind = "resume"
)

type Recommendation struct {
	ID                string     `json:"id"`
	Kind              ActionKind `json:"kind"`
	TrainID           int        `json:"train_id"`
	TrainNumber       string     `json:"train_number"`
	CounterpartNumber string     `json:"counterpart_number,omitempty"`
	Action            string     `json:"action"`
	Justification     string     `json:"justification"`
	Impact            Impact     `json:"impact"`
	ImpactSummary     string     `json:"impact_summary,omitempty"`
}

type EventType string

const (
	EventSystem   EventType = "system"
	EventAI       EventType = "ai"
	EventOperator EventType = "operator"
)

type EventLogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Type    EventType `json:"type"`
}

type Metrics struct {
	Throughput     int     `json:"throughput"`
	AvgDelay       float64 `json:"avg_delay"`
	UtilizationPct int     `json:"utilization_pct"`
	Conflicts      int     `json:"conflicts"`
	PunctualityPct int     `json:"punctuality_pct"`
}

type ScenarioKind string

const (
	ScenarioHeavyFog      ScenarioKind = "heavy-fog"
	ScenarioSignalFailure ScenarioKind = "signal-failure-ode"
	ScenarioMaintenance   ScenarioKind = "maintenance-uttarsanda"
	ScenarioClearAll      ScenarioKind = "clear-all"
)

type SimMode string

const (
	ModeRunning  SimMode = "running"
	ModePaused   SimMode = "paused"
	ModeFinished SimMode = "finished"
)

// SimState is a point-in-time snapshot of the whole engine.
type SimState struct {
	Tick            int              `json:"tick"`
	Mode            SimMode          `json:"mode"`
	Trains          []TrainView      `json:"trains"`
	Recommendations []Recommendation `json:"recommendations"`
	Events          []EventLogEntry  `json:"events"`
	Metrics         Metrics          `json:"metrics"`
	Weights         PriorityWeights  `json:"weights"`
}

type RecordKind string

const (
	RecordEvent      RecordKind = "event"
	RecordDecision   RecordKind = "decision"
	RecordRunSummary RecordKind = "run_summary"
)

type DecisionOutcome string

const (
	DecisionAccepted   DecisionOutcome = "accepted"
	DecisionOverridden DecisionOutcome = "overridden"
)

type Decision struct {
	RecommendationID string          `json:"recommendation_id"`
	Kind             ActionKind      `json:"kind"`
	TrainID          int             `json:"train_id"`
	TrainNumber      string          `json:"train_number"`
	Action           string          `json:"action"`
	Impact           Impact          `json:"impact"`
	Outcome          DecisionOutcome `json:"outcome"`
	Operator         string          `json:"operator,omitempty"`
}

// Record is one append-only journal entry. Exactly one of Event, Decision
// or Summary is set, matching Kind.
type Record struct {
	ID          string         `json:"id"`
	Kind        RecordKind     `json:"kind"`
	TrainNumber string         `json:"train_number,omitempty"`
	Tick        int            `json:"tick"`
	At          time.Time      `json:"at"`
	Event       *EventLogEntry `json:"event,omitempty"`
	Decision    *Decision      `json:"decision,omitempty"`
	Summary     *SimState      `json:"summary,omitempty"`
}
