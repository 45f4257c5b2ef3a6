package metrics

import "math"

// EnergyDrift tracks the largest relative departure of an energy column
// from its value on the first observed row.
type EnergyDrift struct {
	column        string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(column string) *EnergyDrift {
	return &EnergyDrift{column: column}
}

func (e *EnergyDrift) Column() string { return e.column }

// Observe feeds one row. Rows without the column are ignored.
func (e *EnergyDrift) Observe(columns []string, values []float64) {
	energy, ok := pick(columns, values, e.column)
	if !ok || math.IsNaN(energy) || math.IsInf(energy, 0) {
		return
	}

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

// Current is the drift of the latest sample.
func (e *EnergyDrift) Current() float64 {
	if e.samples == 0 || e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

func pick(columns []string, values []float64, name string) (float64, bool) {
	for i, c := range columns {
		if c == name && i < len(values) {
			return values[i], true
		}
	}
	return 0, false
}
