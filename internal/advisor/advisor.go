// Package advisor inspects the train set and derives ranked dispatch
// recommendations. It never mutates trains; callers apply accepted effects.
//
// Rules run in a fixed order and append in detection order:
//
//  1. Head-on conflicts between opposing running trains.
//  2. Up freight blocking a faster express close behind it.
//  3. Waiting trains delayed 45 minutes or more.
//  4. Halted trains whose own direction is clear.
//
// Only rules 1 and 2 count towards the published conflict total.
package advisor

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"corridor_dispatch/internal/corridor"
	"corridor_dispatch/internal/models"
	"corridor_dispatch/internal/priority"
)

const (
	// Guard bands keep trains about to clear the section out of the
	// head-on scan.
	upGuardPosition   = 850
	downGuardPosition = 150

	headOnWindow      = 300
	overtakeWindow    = 150
	freightMinPos     = 200
	longDelayMinutes  = 45
	resumeClearWindow = 150
)

// IDFunc mints recommendation ids.
type IDFunc func() string

// Result is one evaluation pass.
type Result struct {
	Recommendations []models.Recommendation
	Conflicts       int
}

// Generator evaluates train sets. The zero value mints uuid ids.
type Generator struct {
	NewID IDFunc
}

func New() *Generator {
	return &Generator{NewID: uuid.NewString}
}

// Generate runs every rule against trains using the supplied weights.
func (g *Generator) Generate(trains []models.Train, w models.PriorityWeights) Result {
	newID := g.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	var running, up, down []models.Train
	for _, t := range trains {
		if t.Status != models.StatusRunning {
			continue
		}
		running = append(running, t)
		switch {
		case t.Direction == models.DirectionUp && t.Position < upGuardPosition:
			up = append(up, t)
		case t.Direction == models.DirectionDown && t.Position > downGuardPosition:
			down = append(down, t)
		}
	}

	var res Result
	add := func(r models.Recommendation) {
		r.ID = newID()
		r.ImpactSummary = ImpactSummary(r.Impact)
		res.Recommendations = append(res.Recommendations, r)
	}

	for _, u := range up {
		for _, d := range down {
			gap := d.Position - u.Position
			if gap <= 0 || gap >= headOnWindow {
				continue
			}
			res.Conflicts++
			winner, loser := HeadOnWinner(u, d, w)
			add(models.Recommendation{
				Kind:              models.ActionHold,
				TrainID:           loser.ID,
				TrainNumber:       loser.Number,
				CounterpartNumber: winner.Number,
				Action:            fmt.Sprintf("Hold/Divert %s %s", loser.Type, loser.Number),
				Justification: fmt.Sprintf("Conflict with %s %s near %s.",
					winner.Type, winner.Number, corridor.Locate(loser.Position)),
				Impact: models.ImpactSafetyCritical,
			})
		}
	}

	for _, slow := range up {
		if slow.Type != models.TrainFreight || slow.Position <= freightMinPos {
			continue
		}
		fast, ok := expressBehind(slow, up)
		if !ok {
			continue
		}
		if priority.Score(fast, w) <= priority.Score(slow, w) {
			continue
		}
		res.Conflicts++
		add(models.Recommendation{
			Kind:              models.ActionDivertLoop,
			TrainID:           slow.ID,
			TrainNumber:       slow.Number,
			CounterpartNumber: fast.Number,
			Action:            fmt.Sprintf("Divert Freight %s to loop", slow.Number),
			Justification: fmt.Sprintf("Freight is blocking Express %s near %s.",
				fast.Number, corridor.Locate(slow.Position)),
			Impact: models.ImpactHigh,
		})
	}

	for _, t := range trains {
		if t.Status != models.StatusWaiting || t.DelayMinutes < longDelayMinutes {
			continue
		}
		add(models.Recommendation{
			Kind:          models.ActionPrioritize,
			TrainID:       t.ID,
			TrainNumber:   t.Number,
			Action:        fmt.Sprintf("Prioritize departure: %s", t.Number),
			Justification: "45+ min late. Slot immediate departure with minimal knock-on effect.",
			Impact:        models.ImpactMedium,
		})
	}

	for _, t := range trains {
		if t.Status != models.StatusHalted || !directionClear(t, running) {
			continue
		}
		add(models.Recommendation{
			Kind:          models.ActionResume,
			TrainID:       t.ID,
			TrainNumber:   t.Number,
			Action:        fmt.Sprintf("Resume journey: %s", t.Number),
			Justification: "Track ahead is clear. Safe to resume.",
			Impact:        models.ImpactLow,
		})
	}

	return res
}

// HeadOnWinner picks which of an opposing pair keeps the line. Ties go to
// the up train, so the down train is held.
func HeadOnWinner(up, down models.Train, w models.PriorityWeights) (winner, loser models.Train) {
	if priority.Score(up, w) >= priority.Score(down, w) {
		return up, down
	}
	return down, up
}

// expressBehind returns the first up express in iteration order sitting
// less than the overtake window behind slow.
func expressBehind(slow models.Train, up []models.Train) (models.Train, bool) {
	for _, fast := range up {
		if fast.ID == slow.ID || fast.Type != models.TrainExpress {
			continue
		}
		gap := slow.Position - fast.Position
		if gap >= 0 && gap < overtakeWindow {
			return fast, true
		}
	}
	return models.Train{}, false
}

func directionClear(halted models.Train, running []models.Train) bool {
	for _, r := range running {
		if r.Direction == halted.Direction && math.Abs(r.Position-halted.Position) < resumeClearWindow {
			return false
		}
	}
	return true
}

// ImpactSummary is the operator-facing one-liner for an impact level.
func ImpactSummary(i models.Impact) string {
	switch i {
	case models.ImpactSafetyCritical:
		return "Avoids conflict and large delay ripple."
	case models.ImpactHigh:
		return "Improves express running and throughput."
	case models.ImpactMedium:
		return "Improves punctuality of delayed train."
	case models.ImpactLow:
		return "Recovers halted train with low side effects."
	default:
		return ""
	}
}
