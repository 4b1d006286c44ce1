package metrics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"corridor_dispatch/internal/models"
)

type fixedSource int

func (f fixedSource) Intn(n int) int { return int(f) % n }

func sample() []models.Train {
	return []models.Train{
		{Status: models.StatusRunning, DelayMinutes: 5},
		{Status: models.StatusRunning, DelayMinutes: 15},
		{Status: models.StatusWaiting, DelayMinutes: 0},
		{Status: models.StatusHalted, DelayMinutes: 10},
		{Status: models.StatusCompleted, DelayMinutes: 200},
	}
}

func TestComputeBaseline(t *testing.T) {
	m := Compute(sample(), 3, false, fixedSource(2))

	assert.Equal(t, 12, m.Throughput)
	assert.Equal(t, 7.5, m.AvgDelay)
	assert.Equal(t, 50, m.UtilizationPct)
	assert.Equal(t, 50, m.PunctualityPct)
	assert.Equal(t, 3, m.Conflicts)
}

func TestComputeImproved(t *testing.T) {
	m := Compute(sample(), 1, true, fixedSource(2))

	assert.Equal(t, 13, m.Throughput)
	assert.Equal(t, 6.8, m.AvgDelay)
	assert.Equal(t, 55, m.UtilizationPct)
	assert.Equal(t, 50, m.PunctualityPct)
}

func TestUtilizationImprovementCapped(t *testing.T) {
	trains := []models.Train{{Status: models.StatusRunning}, {Status: models.StatusRunning}}
	m := Compute(trains, 0, true, fixedSource(0))
	assert.Equal(t, 100, m.UtilizationPct)
}

func TestUtilizationFloorsAndPunctualityRounds(t *testing.T) {
	trains := []models.Train{
		{Status: models.StatusRunning, DelayMinutes: 0},
		{Status: models.StatusWaiting, DelayMinutes: 6},
		{Status: models.StatusWaiting, DelayMinutes: 1},
	}
	m := Compute(trains, 0, false, fixedSource(0))
	assert.Equal(t, 33, m.UtilizationPct)
	assert.Equal(t, 67, m.PunctualityPct)
	assert.Equal(t, 2.3, m.AvgDelay)
}

func TestThroughputStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		m := Compute(sample(), 0, false, rng)
		assert.GreaterOrEqual(t, m.Throughput, 10)
		assert.LessOrEqual(t, m.Throughput, 14)
	}
}

func TestEmptyOrCompletedSetIsNeutral(t *testing.T) {
	assert.Equal(t, models.Metrics{}, Compute(nil, 0, true, fixedSource(3)))

	done := []models.Train{{Status: models.StatusCompleted, DelayMinutes: 30}}
	assert.Equal(t, models.Metrics{Conflicts: 2}, Compute(done, 2, false, fixedSource(3)))
}
