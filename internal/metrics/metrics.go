// Package metrics derives the operator KPIs from the current train set.
//
// The figures are for display only; nothing in dispatch reads them back.
// Throughput is a deliberately noisy presentational value drawn from an
// injected source so callers can pin it down in tests.
package metrics

import (
	"math"

	"corridor_dispatch/internal/models"
)

const (
	throughputBase   = 10
	throughputSpread = 5
	onTimeMinutes    = 5
	improvedDelay    = 0.9
	improvedUtil     = 5
)

// Source is the randomness used for throughput. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Compute builds a snapshot over non-completed trains. improved is set when
// the refresh follows an accepted recommendation.
func Compute(trains []models.Train, conflicts int, improved bool, rng Source) models.Metrics {
	m := models.Metrics{Conflicts: conflicts}

	var active, runningCount, onTime, totalDelay int
	for _, t := range trains {
		if t.Status == models.StatusCompleted {
			continue
		}
		active++
		totalDelay += t.DelayMinutes
		if t.Status == models.StatusRunning {
			runningCount++
		}
		if t.DelayMinutes <= onTimeMinutes {
			onTime++
		}
	}
	if active == 0 {
		return m
	}

	m.Throughput = throughputBase + rng.Intn(throughputSpread)
	if improved {
		m.Throughput++
	}

	m.AvgDelay = round1(float64(totalDelay) / float64(active))
	if improved {
		m.AvgDelay = round1(m.AvgDelay * improvedDelay)
	}

	m.UtilizationPct = int(math.Floor(float64(runningCount) / float64(active) * 100))
	if improved {
		m.UtilizationPct = min(100, m.UtilizationPct+improvedUtil)
	}

	m.PunctualityPct = int(math.Round(float64(onTime) / float64(active) * 100))
	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
