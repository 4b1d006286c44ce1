package sim

import "corridor_dispatch/internal/models"

var baselineTrains = []models.Train{
	{ID: 1, Number: "12928", Type: models.TrainExpress, Direction: models.DirectionUp, Status: models.StatusRunning, Position: 250, DelayMinutes: 5, Problem: "High-priority train running 5 min late, approaching Kanjari.", LastUpdate: "10:30:00"},
	{ID: 2, Number: "59048", Type: models.TrainPassenger, Direction: models.DirectionUp, Status: models.StatusWaiting, Position: 100, DelayMinutes: 0, Problem: "Waiting at Nadiad for clearance. Potential conflict with 12928.", LastUpdate: "10:30:00"},
	{ID: 3, Number: "4321F", Type: models.TrainFreight, Direction: models.DirectionDown, Status: models.StatusHalted, Position: 750, DelayMinutes: 10, Problem: "Halted at Ode loop line due to signal issue.", LastUpdate: "10:28:00"},
	{ID: 4, Number: "19012", Type: models.TrainExpress, Direction: models.DirectionDown, Status: models.StatusRunning, Position: 800, DelayMinutes: 2, Problem: "Approaching Ode. Scheduled to meet 12928 near Uttarsanda.", LastUpdate: "10:30:00"},
	{ID: 5, Number: "22915", Type: models.TrainExpress, Direction: models.DirectionUp, Status: models.StatusRunning, Position: 400, DelayMinutes: 15, Problem: "Heavy fog reported ahead. Speed restricted to 30km/h.", LastUpdate: "10:25:00"},
	{ID: 6, Number: "69101", Type: models.TrainPassenger, Direction: models.DirectionDown, Status: models.StatusRunning, Position: 650, DelayMinutes: 0, Problem: "Running on time. Must be prioritized after Express trains.", LastUpdate: "10:29:00"},
	{ID: 7, Number: "8877F", Type: models.TrainFreight, Direction: models.DirectionUp, Status: models.StatusRunning, Position: 550, DelayMinutes: 0, Problem: "Slow moving. Blocking 22915 behind it.", LastUpdate: "10:29:00"},
	{ID: 8, Number: "12267", Type: models.TrainExpress, Direction: models.DirectionDown, Status: models.StatusWaiting, Position: 900, DelayMinutes: 45, Problem: "45+ min late due to earlier maintenance. Needs re-slotting.", LastUpdate: "10:20:00"},
	{ID: 9, Number: "3344F", Type: models.TrainFreight, Direction: models.DirectionUp, Status: models.StatusRunning, Position: 450, DelayMinutes: 5, Problem: "Freight near Uttarsanda. Should yield to express.", LastUpdate: "10:30:00"},
	{ID: 10, Number: "59049", Type: models.TrainPassenger, Direction: models.DirectionDown, Status: models.StatusRunning, Position: 350, DelayMinutes: 0, Problem: "On same segment as 12928 in opposing direction.", LastUpdate: "10:30:00"},
	{ID: 11, Number: "9901X", Type: models.TrainFreight, Direction: models.DirectionDown, Status: models.StatusWaiting, Position: 900, DelayMinutes: 0, Problem: "Waiting at Anand. Slot only after 12267 departs.", LastUpdate: "10:30:00"},
	{ID: 12, Number: "12952", Type: models.TrainExpress, Direction: models.DirectionUp, Status: models.StatusRunning, Position: 50, DelayMinutes: 0, Problem: "Entering section. Needs clear path.", LastUpdate: "10:30:00"},
}

// Baseline returns a fresh copy of the canonical 12-train timetable.
func Baseline() []models.Train {
	out := make([]models.Train, len(baselineTrains))
	copy(out, baselineTrains)
	return out
}
