// Package corridor maps positions on the single-track section to the five
// named stations along it.
package corridor

const (
	MinPosition = 0.0
	MaxPosition = 900.0
)

const (
	Nadiad     = "Nadiad"
	Kanjari    = "Kanjari"
	Uttarsanda = "Uttarsanda"
	Ode        = "Ode"
	Anand      = "Anand"
)

// Station is a named stop and the upper bound of the position bin it owns.
type Station struct {
	Name  string  `json:"name"`
	Upper float64 `json:"upper"`
}

// Stations lists the bins in corridor order. The first bin is closed at 0,
// every other bin is (previous upper, upper].
var Stations = []Station{
	{Name: Nadiad, Upper: 200},
	{Name: Kanjari, Upper: 400},
	{Name: Uttarsanda, Upper: 600},
	{Name: Ode, Upper: 800},
	{Name: Anand, Upper: MaxPosition},
}

// Locate returns the station owning position. Positions beyond the last
// bound still resolve to the terminal station.
func Locate(position float64) string {
	for _, s := range Stations {
		if position <= s.Upper {
			return s.Name
		}
	}
	return Stations[len(Stations)-1].Name
}

// Clamp keeps position inside the corridor.
func Clamp(position float64) float64 {
	if position < MinPosition {
		return MinPosition
	}
	if position > MaxPosition {
		return MaxPosition
	}
	return position
}
