package sim

import (
	"strings"

	"corridor_dispatch/internal/corridor"
	"corridor_dispatch/internal/models"
)

const (
	upTerminus = corridor.MaxPosition
	// Down services terminate at 100 rather than the corridor origin.
	downTerminus = 100.0

	fogPenalty = 0.5
)

func baseSpeed(tt models.TrainType) float64 {
	switch tt {
	case models.TrainExpress:
		return 15
	case models.TrainPassenger:
		return 10
	case models.TrainFreight:
		return 5
	default:
		return 10
	}
}

// speedFor returns position units per tick, halved while fog is reported.
func speedFor(t models.Train) float64 {
	s := baseSpeed(t.Type)
	if strings.Contains(strings.ToLower(t.Problem), "fog") {
		s *= fogPenalty
	}
	return s
}

// advance moves a running train one tick and reports whether it just
// completed. Trains in any other status are left untouched.
func advance(t *models.Train) bool {
	if t.Status != models.StatusRunning {
		return false
	}
	speed := speedFor(*t)
	if t.Direction == models.DirectionUp {
		t.Position = corridor.Clamp(t.Position + speed)
		if t.Position >= upTerminus {
			t.Status = models.StatusCompleted
			return true
		}
		return false
	}
	t.Position = corridor.Clamp(t.Position - speed)
	if t.Position <= downTerminus {
		t.Status = models.StatusCompleted
		return true
	}
	return false
}

func arrivalStation(d models.Direction) string {
	if d == models.DirectionUp {
		return corridor.Anand
	}
	return corridor.Nadiad
}
