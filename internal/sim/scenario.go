package sim

import (
	"fmt"

	"corridor_dispatch/internal/models"
)

// Position bands affected by the scripted disruptions.
const (
	signalFailureFrom = 650
	signalFailureTo   = 750
	maintenanceFrom   = 450
	maintenanceTo     = 550

	fogDelayMinutes           = 10
	signalFailureDelayMinutes = 5
	maintenanceDelayMinutes   = 8
)

// Scenarios lists the supported scenario kinds.
func Scenarios() []models.ScenarioKind {
	return []models.ScenarioKind{
		models.ScenarioHeavyFog,
		models.ScenarioSignalFailure,
		models.ScenarioMaintenance,
		models.ScenarioClearAll,
	}
}

// ApplyScenario mutates matching trains per the scenario's rules and
// re-evaluates recommendations and KPIs.
func (e *Engine) ApplyScenario(kind models.ScenarioKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stamp := e.now().Format("15:04:05")
	each := func(match func(models.Train) bool, apply func(*models.Train)) {
		for i := range e.trains {
			t := &e.trains[i]
			if t.Status == models.StatusCompleted || !match(*t) {
				continue
			}
			apply(t)
			t.LastUpdate = stamp
		}
	}
	inBand := func(from, to float64) func(models.Train) bool {
		return func(t models.Train) bool { return t.Position >= from && t.Position <= to }
	}

	switch kind {
	case models.ScenarioHeavyFog:
		each(func(t models.Train) bool {
			return t.Type == models.TrainExpress && t.Direction == models.DirectionUp
		}, func(t *models.Train) {
			t.Problem = "Heavy fog in section (scenario)."
			t.DelayMinutes += fogDelayMinutes
		})
		e.addEventLocked("Scenario: heavy fog applied on Up expresses.", models.EventOperator)
	case models.ScenarioSignalFailure:
		each(inBand(signalFailureFrom, signalFailureTo), func(t *models.Train) {
			t.Status = models.StatusHalted
			t.Problem = "Signal failure near Ode (scenario)."
			t.DelayMinutes += signalFailureDelayMinutes
		})
		e.addEventLocked("Scenario: signal failure near Ode.", models.EventOperator)
	case models.ScenarioMaintenance:
		each(inBand(maintenanceFrom, maintenanceTo), func(t *models.Train) {
			t.Status = models.StatusWaiting
			t.Problem = "Maintenance block near Uttarsanda (scenario)."
			t.DelayMinutes += maintenanceDelayMinutes
		})
		e.addEventLocked("Scenario: maintenance block near Uttarsanda.", models.EventOperator)
	case models.ScenarioClearAll:
		e.trains = Baseline()
		e.addEventLocked("Scenarios cleared. Baseline restored.", models.EventOperator)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, kind)
	}

	e.evaluateLocked(false)
	return nil
}
