package thermo

import "fmt"

type roleSlot int

const (
	slotTemp roleSlot = iota
	slotPress
	slotPressVector
	slotPE
	numSlots
)

func (s roleSlot) quantity() Quantity {
	switch s {
	case slotPress, slotPressVector:
		return QuantityPressure
	case slotPE:
		return QuantityPotentialEnergy
	}
	return QuantityTemperature
}

func (s roleSlot) kind() Kind {
	if s == slotPressVector {
		return KindVector
	}
	return KindScalar
}

type evalContext struct {
	reg   *Registry
	roles *[numSlots]int
	snap  *Snapshot
	sess  *Session
	field *Field

	// provider is the keyword form of the last provider touched, for errors.
	provider string
}

func (ec *evalContext) current(idx int) (Provider, error) {
	b := ec.reg.Binding(idx)
	ec.provider = b.Name()
	p, err := ec.reg.Provider(idx)
	if err != nil {
		return nil, err
	}
	if !p.Current() {
		return nil, fmt.Errorf("%w: %s %s", ErrNotCurrent, b.Role, b.ID)
	}
	return p, nil
}

func (ec *evalContext) role(s roleSlot) (Provider, error) {
	idx := ec.roles[s]
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotBound, s.quantity())
	}
	return ec.current(idx)
}

func (ec *evalContext) units() Units {
	if ec.snap.Units == (Units{}) {
		return LJUnits
	}
	return ec.snap.Units
}

func (ec *evalContext) first() bool { return ec.sess.Reports == 0 }

func snapFloat(fn func(*Snapshot) float64) evalFunc {
	return func(ec *evalContext) (Value, error) { return FloatValue(fn(ec.snap)), nil }
}

func snapBig(fn func(*Snapshot) int64) evalFunc {
	return func(ec *evalContext) (Value, error) { return BigValue(fn(ec.snap)), nil }
}

func roleScalar(s roleSlot) evalFunc {
	return func(ec *evalContext) (Value, error) {
		p, err := ec.role(s)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(p.Scalar()), nil
	}
}

// tally reads force-field energy tallies; the potential energy compute
// being current guarantees they were tallied this step.
func tally(fn func(Energies) float64) evalFunc {
	return func(ec *evalContext) (Value, error) {
		if _, err := ec.role(slotPE); err != nil {
			return Value{}, err
		}
		return FloatValue(fn(ec.snap.Energy)), nil
	}
}

func pressComponent(i int) evalFunc {
	return func(ec *evalContext) (Value, error) {
		p, err := ec.role(slotPressVector)
		if err != nil {
			return Value{}, err
		}
		if n := p.VectorLen(); n >= 0 && i >= n {
			return Value{}, fmt.Errorf("%w: pressure vector has %d components", ErrIndexRange, n)
		}
		return FloatValue(p.VectorAt(i)), nil
	}
}

func cellParam(i int) evalFunc {
	return func(ec *evalContext) (Value, error) {
		a, b, c, alpha, beta, gamma := ec.snap.cell()
		return FloatValue([6]float64{a, b, c, alpha, beta, gamma}[i]), nil
	}
}

func evalStep(ec *evalContext) (Value, error) { return BigValue(ec.snap.Step), nil }

func evalElapsed(ec *evalContext) (Value, error) {
	return BigValue(ec.snap.Step - ec.sess.FirstStep), nil
}

func evalElaplong(ec *evalContext) (Value, error) {
	return BigValue(ec.snap.Step - ec.snap.BeginStep), nil
}

func evalCPU(ec *evalContext) (Value, error) {
	if ec.first() {
		return FloatValue(0), nil
	}
	return FloatValue(ec.snap.CPU), nil
}

func evalTpcpu(ec *evalContext) (Value, error) {
	v, cpu := 0.0, 0.0
	if !ec.first() {
		cpu = ec.snap.CPU
		cpuDiff := cpu - ec.sess.PrevTPCPU
		timeDiff := ec.snap.Time - ec.sess.PrevTime
		if timeDiff > 0 && cpuDiff > 0 {
			v = timeDiff / cpuDiff
		}
	}
	ec.sess.PrevTime = ec.snap.Time
	ec.sess.PrevTPCPU = cpu
	return FloatValue(v), nil
}

func evalSpcpu(ec *evalContext) (Value, error) {
	v, cpu := 0.0, 0.0
	if !ec.first() {
		cpu = ec.snap.CPU
		cpuDiff := cpu - ec.sess.PrevSPCPU
		stepDiff := ec.snap.Step - ec.sess.PrevStep
		if stepDiff > 0 && cpuDiff > 0 {
			v = float64(stepDiff) / cpuDiff
		}
	}
	ec.sess.PrevStep = ec.snap.Step
	ec.sess.PrevSPCPU = cpu
	return FloatValue(v), nil
}

func evalCpuremain(ec *evalContext) (Value, error) {
	done := ec.snap.Step - ec.sess.FirstStep
	if ec.first() || done <= 0 {
		return FloatValue(0), nil
	}
	left := ec.sess.LastStep - ec.snap.Step
	return FloatValue(ec.snap.CPU * float64(left) / float64(done)), nil
}

func (ec *evalContext) kineticEnergy() (float64, error) {
	p, err := ec.role(slotTemp)
	if err != nil {
		return 0, err
	}
	dim := float64(ec.snap.dimension())
	dof := dim*float64(ec.snap.Atoms) - dim
	if dp, ok := p.(DOFProvider); ok {
		dof = dp.DegreesOfFreedom()
	}
	return p.Scalar() * 0.5 * dof * ec.units().Boltz, nil
}

func (ec *evalContext) totalEnergy() (float64, error) {
	pe, err := ec.role(slotPE)
	if err != nil {
		return 0, err
	}
	ke, err := ec.kineticEnergy()
	if err != nil {
		return 0, err
	}
	return pe.Scalar() + ke, nil
}

func evalKe(ec *evalContext) (Value, error) {
	ke, err := ec.kineticEnergy()
	return FloatValue(ke), err
}

func evalEtotal(ec *evalContext) (Value, error) {
	e, err := ec.totalEnergy()
	return FloatValue(e), err
}

func evalEnthalpy(ec *evalContext) (Value, error) {
	e, err := ec.totalEnergy()
	if err != nil {
		return Value{}, err
	}
	press, err := ec.role(slotPress)
	if err != nil {
		return Value{}, err
	}
	vol := ec.snap.Box.Volume(ec.snap.dimension())
	return FloatValue(e + press.Scalar()*vol/ec.units().Nktv2p), nil
}

func evalEconserve(ec *evalContext) (Value, error) {
	e, err := ec.totalEnergy()
	return FloatValue(e + ec.snap.Ecouple), err
}

func evalDensity(ec *evalContext) (Value, error) {
	vol := ec.snap.Box.Volume(ec.snap.dimension())
	if vol == 0 {
		return FloatValue(0), nil
	}
	return FloatValue(ec.snap.Mass * ec.units().Mv2d / vol), nil
}

func evalProvider(ec *evalContext) (Value, error) {
	f := ec.field
	p, err := ec.current(f.binding)
	if err != nil {
		return Value{}, err
	}
	switch f.Kind {
	case KindVector:
		if n := p.VectorLen(); n >= 0 && f.Index1 > n {
			return Value{}, fmt.Errorf("%w: index %d, length %d", ErrIndexRange, f.Index1, n)
		}
		return FloatValue(p.VectorAt(f.Index1 - 1)), nil
	case KindArray:
		rows, cols := p.ArrayShape()
		if (rows >= 0 && f.Index1 > rows) || (cols >= 0 && f.Index2 > cols) {
			return Value{}, fmt.Errorf("%w: index [%d][%d], shape %dx%d", ErrIndexRange, f.Index1, f.Index2, rows, cols)
		}
		return FloatValue(p.ArrayAt(f.Index1-1, f.Index2-1)), nil
	}
	return FloatValue(p.Scalar()), nil
}
