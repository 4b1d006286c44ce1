// Package sim owns the train registry and drives the corridor simulation:
// movement per tick, recommendation passes, KPI refreshes and the operator
// entry points that mutate trains.
//
// All state sits behind one mutex. The tick loop and operator calls take it
// for their whole duration, so a movement pass never interleaves with a
// conflict scan or an operator action.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"corridor_dispatch/internal/advisor"
	"corridor_dispatch/internal/corridor"
	"corridor_dispatch/internal/metrics"
	"corridor_dispatch/internal/models"
	"corridor_dispatch/internal/priority"
)

var (
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrTrainNotFound          = errors.New("train not found")
	ErrTrainCompleted         = errors.New("train already completed")
	ErrUnknownScenario        = errors.New("unknown scenario")
)

const defaultTickInterval = time.Second

// Recorder receives journal records. Implementations must not block.
type Recorder interface {
	Record(rec models.Record)
}

type nopRecorder struct{}

func (nopRecorder) Record(models.Record) {}

// Options configures an Engine. Zero values pick defaults.
type Options struct {
	TickInterval     time.Duration
	EventLogCapacity int
	// Rand drives the throughput KPI. Defaults to a time-seeded source.
	Rand     metrics.Source
	Now      func() time.Time
	NewID    func() string
	Recorder Recorder
}

// Engine owns simulation state and logic.
type Engine struct {
	mu        sync.Mutex
	trains    []models.Train
	weights   models.PriorityWeights
	recs      []models.Recommendation
	events    *eventLog
	metrics   models.Metrics
	conflicts int
	tick      int
	mode      models.SimMode

	advisor  *advisor.Generator
	rng      metrics.Source
	now      func() time.Time
	newID    func() string
	recorder Recorder
	interval time.Duration
	cancel   context.CancelFunc
}

// NewEngine builds an engine loaded with the baseline timetable. The
// simulation starts paused.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		weights:  models.DefaultPriorityWeights(),
		events:   newEventLog(opts.EventLogCapacity),
		mode:     models.ModePaused,
		rng:      opts.Rand,
		now:      opts.Now,
		newID:    opts.NewID,
		recorder: opts.Recorder,
		interval: opts.TickInterval,
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	if e.interval <= 0 {
		e.interval = defaultTickInterval
	}
	e.advisor = &advisor.Generator{NewID: e.newID}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.trains = Baseline()
	e.addEventLocked(fmt.Sprintf("Baseline timetable loaded (%d trains).", len(e.trains)), models.EventSystem)
	e.evaluateLocked(false)
	return e
}

// Trains returns a snapshot of every train with its current station.
func (e *Engine) Trains() []models.TrainView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trainViewsLocked()
}

// TrainByNumber looks a train up by its external number.
func (e *Engine) TrainByNumber(number string) (models.TrainView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.trains {
		if t.Number == number {
			return models.TrainView{Train: t, Station: corridor.Locate(t.Position)}, true
		}
	}
	return models.TrainView{}, false
}

func (e *Engine) Recommendations() []models.Recommendation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Recommendation(nil), e.recs...)
}

// EventLog returns entries newest first.
func (e *Engine) EventLog() []models.EventLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events.entries()
}

func (e *Engine) Metrics() models.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}

func (e *Engine) Weights() models.PriorityWeights {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weights
}

func (e *Engine) Mode() models.SimMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// State returns the whole engine snapshot.
func (e *Engine) State() models.SimState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Tick runs one movement pass followed by a recommendation and KPI pass.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked()
}

func (e *Engine) tickLocked() {
	if e.mode == models.ModeFinished {
		return
	}
	stamp := e.now().Format("15:04:05")
	for i := range e.trains {
		t := &e.trains[i]
		if t.Status != models.StatusRunning {
			continue
		}
		t.LastUpdate = stamp
		if advance(t) {
			e.addEventLocked(fmt.Sprintf("Train %s arrived at %s.", t.Number, arrivalStation(t.Direction)), models.EventAI)
		}
	}
	e.tick++
	e.evaluateLocked(false)

	if e.allCompletedLocked() {
		e.stopLoopLocked()
		e.mode = models.ModeFinished
		e.addEventLocked("All trains in this scenario have cleared the section.", models.EventAI)
		e.recordSummaryLocked()
		log.Printf("[sim] finished after %d ticks", e.tick)
	}
}

// SetPriorityWeights swaps the scoring weights and re-runs the advisor.
// Invalid weights leave the engine untouched.
func (e *Engine) SetPriorityWeights(w models.PriorityWeights) error {
	if err := priority.Validate(w); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weights = w
	e.addEventLocked("Priority weights updated.", models.EventOperator)
	e.evaluateLocked(false)
	return nil
}

// AcceptRecommendation applies the recommendation's effect to its train,
// drops it from the active list and re-evaluates. Unknown ids and stale
// targets are reported and change nothing.
func (e *Engine) AcceptRecommendation(id, operator string) (models.Recommendation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.recIndexLocked(id)
	if idx < 0 {
		return models.Recommendation{}, fmt.Errorf("%w: %s", ErrRecommendationNotFound, id)
	}
	rec := e.recs[idx]
	t := e.trainByIDLocked(rec.TrainID)
	if t == nil {
		return rec, fmt.Errorf("%w: %s", ErrTrainNotFound, rec.TrainNumber)
	}
	if t.Status == models.StatusCompleted {
		return rec, fmt.Errorf("%w: %s", ErrTrainCompleted, rec.TrainNumber)
	}

	e.recs = append(e.recs[:idx:idx], e.recs[idx+1:]...)
	e.addEventLocked(decisionMessage(rec, models.DecisionAccepted, operator), models.EventOperator)
	e.applyEffectLocked(t, rec.Kind)
	e.recordDecisionLocked(rec, models.DecisionAccepted, operator)
	e.evaluateLocked(true)
	return rec, nil
}

// OverrideRecommendation discards a recommendation without touching trains.
func (e *Engine) OverrideRecommendation(id, operator string) (models.Recommendation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.recIndexLocked(id)
	if idx < 0 {
		return models.Recommendation{}, fmt.Errorf("%w: %s", ErrRecommendationNotFound, id)
	}
	rec := e.recs[idx]
	e.recs = append(e.recs[:idx:idx], e.recs[idx+1:]...)
	e.addEventLocked(decisionMessage(rec, models.DecisionOverridden, operator), models.EventOperator)
	e.recordDecisionLocked(rec, models.DecisionOverridden, operator)
	e.refreshMetricsLocked(false)
	return rec, nil
}

// ResetToBaseline restores the canonical timetable, clears the event log
// and recommendations, and resumes the loop if it was running.
func (e *Engine) ResetToBaseline() {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasRunning := e.mode == models.ModeRunning
	e.recordSummaryLocked()
	e.stopLoopLocked()
	e.trains = Baseline()
	e.recs = nil
	e.events.reset()
	e.tick = 0
	e.mode = models.ModePaused
	e.addEventLocked("Scenario reset to baseline.", models.EventSystem)
	e.evaluateLocked(false)
	if wasRunning {
		e.startLocked()
	}
}

func (e *Engine) applyEffectLocked(t *models.Train, kind models.ActionKind) {
	switch kind {
	case models.ActionHold, models.ActionDivertLoop:
		t.Status = models.StatusHalted
		t.Problem = fmt.Sprintf("Held/diverted at %s by dispatch rule.", corridor.Locate(t.Position))
	case models.ActionPrioritize, models.ActionResume:
		t.Status = models.StatusRunning
		t.Problem = ""
	}
	t.LastUpdate = e.now().Format("15:04:05")
}

// evaluateLocked regenerates recommendations from scratch and refreshes KPIs.
func (e *Engine) evaluateLocked(improved bool) {
	res := e.advisor.Generate(e.trains, e.weights)
	e.recs = res.Recommendations
	e.conflicts = res.Conflicts
	e.refreshMetricsLocked(improved)
	if e.mode == models.ModeFinished && !e.allCompletedLocked() {
		e.mode = models.ModePaused
	}
}

func (e *Engine) refreshMetricsLocked(improved bool) {
	e.metrics = metrics.Compute(e.trains, e.conflicts, improved, e.rng)
}

func (e *Engine) allCompletedLocked() bool {
	for _, t := range e.trains {
		if t.Status != models.StatusCompleted {
			return false
		}
	}
	return true
}

func (e *Engine) recIndexLocked(id string) int {
	for i, r := range e.recs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) trainByIDLocked(id int) *models.Train {
	for i := range e.trains {
		if e.trains[i].ID == id {
			return &e.trains[i]
		}
	}
	return nil
}

func (e *Engine) trainViewsLocked() []models.TrainView {
	out := make([]models.TrainView, 0, len(e.trains))
	for _, t := range e.trains {
		out = append(out, models.TrainView{Train: t, Station: corridor.Locate(t.Position)})
	}
	return out
}

func (e *Engine) stateLocked() models.SimState {
	return models.SimState{
		Tick:            e.tick,
		Mode:            e.mode,
		Trains:          e.trainViewsLocked(),
		Recommendations: append([]models.Recommendation(nil), e.recs...),
		Events:          e.events.entries(),
		Metrics:         e.metrics,
		Weights:         e.weights,
	}
}

func (e *Engine) addEventLocked(msg string, typ models.EventType) {
	if msg == "" {
		return
	}
	entry := models.EventLogEntry{Time: e.now(), Message: msg, Type: typ}
	e.events.add(entry)
	e.recorder.Record(models.Record{
		ID:    e.newID(),
		Kind:  models.RecordEvent,
		Tick:  e.tick,
		At:    entry.Time,
		Event: &entry,
	})
}

func (e *Engine) recordDecisionLocked(rec models.Recommendation, outcome models.DecisionOutcome, operator string) {
	e.recorder.Record(models.Record{
		ID:          e.newID(),
		Kind:        models.RecordDecision,
		TrainNumber: rec.TrainNumber,
		Tick:        e.tick,
		At:          e.now(),
		Decision: &models.Decision{
			RecommendationID: rec.ID,
			Kind:             rec.Kind,
			TrainID:          rec.TrainID,
			TrainNumber:      rec.TrainNumber,
			Action:           rec.Action,
			Impact:           rec.Impact,
			Outcome:          outcome,
			Operator:         operator,
		},
	})
}

func (e *Engine) recordSummaryLocked() {
	st := e.stateLocked()
	e.recorder.Record(models.Record{
		ID:      e.newID(),
		Kind:    models.RecordRunSummary,
		Tick:    e.tick,
		At:      e.now(),
		Summary: &st,
	})
}

func decisionMessage(rec models.Recommendation, outcome models.DecisionOutcome, operator string) string {
	msg := fmt.Sprintf("Recommendation %q %s.", rec.Action, outcome)
	if operator != "" {
		msg = fmt.Sprintf("Recommendation %q %s by %s.", rec.Action, outcome, operator)
	}
	return msg
}
