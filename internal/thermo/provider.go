package thermo

import "fmt"

// Kind selects which result of a provider a binding reads.
type Kind int

const (
	KindScalar Kind = iota
	KindVector
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Role is the namespace a provider id lives in.
type Role int

const (
	RoleCompute Role = iota
	RoleFix
	RoleVariable
)

func (r Role) String() string {
	switch r {
	case RoleCompute:
		return "compute"
	case RoleFix:
		return "fix"
	case RoleVariable:
		return "variable"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Prefix is the keyword prefix that selects the role: c_, f_ or v_.
func (r Role) Prefix() string {
	switch r {
	case RoleCompute:
		return "c_"
	case RoleFix:
		return "f_"
	case RoleVariable:
		return "v_"
	}
	return ""
}

// Quantity is a well-known physical quantity a compute may declare.
type Quantity int

const (
	QuantityTemperature Quantity = iota
	QuantityPressure
	QuantityPotentialEnergy
)

func (q Quantity) String() string {
	switch q {
	case QuantityTemperature:
		return "temperature"
	case QuantityPressure:
		return "pressure"
	case QuantityPotentialEnergy:
		return "potential energy"
	}
	return fmt.Sprintf("quantity(%d)", int(q))
}

// Provider is the read-only query surface of a Compute, Fix or Variable.
// A length or shape below zero means the size is only known per step.
type Provider interface {
	HasScalar() bool
	Scalar() float64
	HasVector() bool
	VectorLen() int
	VectorAt(i int) float64
	HasArray() bool
	ArrayShape() (rows, cols int)
	ArrayAt(i, j int) float64
	// Current reports whether the values were computed for the current step.
	Current() bool
}

// QuantityProvider is implemented by computes that can serve the
// temperature, pressure or potential energy role.
type QuantityProvider interface {
	Computes(q Quantity) bool
}

// ExtensiveProvider marks results that scale with the number of atoms and
// are therefore eligible for per-atom normalization.
type ExtensiveProvider interface {
	Extensive(kind Kind) bool
}

// DOFProvider is implemented by temperature computes to convert a
// temperature into kinetic energy.
type DOFProvider interface {
	DegreesOfFreedom() float64
}

// Environment resolves provider ids. It owns the providers; thermo only
// borrows them for the length of a run.
type Environment interface {
	Lookup(role Role, id string) (Provider, bool)
}

// ProviderSet is a map backed Environment.
type ProviderSet map[Role]map[string]Provider

func NewProviderSet() ProviderSet {
	return ProviderSet{
		RoleCompute:  {},
		RoleFix:      {},
		RoleVariable: {},
	}
}

func (s ProviderSet) Add(role Role, id string, p Provider) {
	if s[role] == nil {
		s[role] = make(map[string]Provider)
	}
	s[role][id] = p
}

func (s ProviderSet) Remove(role Role, id string) {
	delete(s[role], id)
}

func (s ProviderSet) Lookup(role Role, id string) (Provider, bool) {
	p, ok := s[role][id]
	return p, ok
}

func supportsKind(p Provider, kind Kind) bool {
	switch kind {
	case KindScalar:
		return p.HasScalar()
	case KindVector:
		return p.HasVector()
	case KindArray:
		return p.HasArray()
	}
	return false
}

func computesQuantity(p Provider, q Quantity) bool {
	qp, ok := p.(QuantityProvider)
	return ok && qp.Computes(q)
}

func isExtensive(p Provider, kind Kind) bool {
	ep, ok := p.(ExtensiveProvider)
	return ok && ep.Extensive(kind)
}
