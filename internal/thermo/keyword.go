package thermo

import (
	"fmt"
	"sort"
)

// Need lists the role providers a keyword reads.
type Need uint8

const (
	NeedTemp Need = 1 << iota
	NeedPress
	NeedPressVector
	NeedPE
)

// KeywordID enumerates the keyword table.
type KeywordID int

const (
	KwStep KeywordID = iota
	KwElapsed
	KwElaplong
	KwDt
	KwTime
	KwCPU
	KwTpcpu
	KwSpcpu
	KwCpuremain
	KwPart
	KwTimeremain
	KwAtoms
	KwTemp
	KwPress
	KwPe
	KwKe
	KwEtotal
	KwEvdwl
	KwEcoul
	KwEpair
	KwEbond
	KwEangle
	KwEdihed
	KwEimp
	KwEmol
	KwElong
	KwEtail
	KwEnthalpy
	KwEcouple
	KwEconserve
	KwVol
	KwDensity
	KwLx
	KwLy
	KwLz
	KwXlo
	KwXhi
	KwYlo
	KwYhi
	KwZlo
	KwZhi
	KwXy
	KwXz
	KwYz
	KwXlat
	KwYlat
	KwZlat
	KwBonds
	KwAngles
	KwDihedrals
	KwImpropers
	KwPxx
	KwPyy
	KwPzz
	KwPxy
	KwPxz
	KwPyz
	KwFmax
	KwFnorm
	KwNbuild
	KwNdanger
	KwCella
	KwCellb
	KwCellc
	KwCellalpha
	KwCellbeta
	KwCellgamma
	KwCompute
	KwFix
	KwVariable
	numKeywords
)

type evalFunc func(ec *evalContext) (Value, error)

// Keyword describes one entry of the keyword table.
type Keyword struct {
	ID   KeywordID
	Name string
	Type ValueType
	Help string

	Needs Need
	// Extensive keywords are divided by the atom count when normalizing.
	Extensive bool
	// TimeBased keywords are undefined between runs.
	TimeBased bool

	eval evalFunc
}

var (
	keywords [numKeywords]Keyword
	byName   map[string]*Keyword
)

func init() {
	keywords = [numKeywords]Keyword{
		KwStep:       {Name: "step", Type: TypeBigInt, Help: "timestep", eval: evalStep},
		KwElapsed:    {Name: "elapsed", Type: TypeBigInt, TimeBased: true, Help: "timesteps since start of this run", eval: evalElapsed},
		KwElaplong:   {Name: "elaplong", Type: TypeBigInt, TimeBased: true, Help: "timesteps since start of initial run in a series", eval: evalElaplong},
		KwDt:         {Name: "dt", Type: TypeFloat, Help: "timestep size", eval: snapFloat(func(s *Snapshot) float64 { return s.Dt })},
		KwTime:       {Name: "time", Type: TypeFloat, Help: "simulation time", eval: snapFloat(func(s *Snapshot) float64 { return s.Time })},
		KwCPU:        {Name: "cpu", Type: TypeFloat, TimeBased: true, Help: "elapsed wall time in seconds", eval: evalCPU},
		KwTpcpu:      {Name: "tpcpu", Type: TypeFloat, TimeBased: true, Help: "simulation time per wall second", eval: evalTpcpu},
		KwSpcpu:      {Name: "spcpu", Type: TypeFloat, TimeBased: true, Help: "timesteps per wall second", eval: evalSpcpu},
		KwCpuremain:  {Name: "cpuremain", Type: TypeFloat, TimeBased: true, Help: "estimated wall seconds until run ends", eval: evalCpuremain},
		KwPart:       {Name: "part", Type: TypeInt, Help: "partition index", eval: func(ec *evalContext) (Value, error) { return IntValue(ec.snap.Partition), nil }},
		KwTimeremain: {Name: "timeremain", Type: TypeFloat, TimeBased: true, Help: "seconds until the run timeout", eval: snapFloat(func(s *Snapshot) float64 { return s.TimeRemaining })},
		KwAtoms:      {Name: "atoms", Type: TypeBigInt, Help: "number of atoms", eval: snapBig(func(s *Snapshot) int64 { return s.Atoms })},

		KwTemp:      {Name: "temp", Type: TypeFloat, Needs: NeedTemp, Help: "temperature", eval: roleScalar(slotTemp)},
		KwPress:     {Name: "press", Type: TypeFloat, Needs: NeedTemp | NeedPress, Help: "pressure", eval: roleScalar(slotPress)},
		KwPe:        {Name: "pe", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "potential energy", eval: roleScalar(slotPE)},
		KwKe:        {Name: "ke", Type: TypeFloat, Needs: NeedTemp, Extensive: true, Help: "kinetic energy", eval: evalKe},
		KwEtotal:    {Name: "etotal", Type: TypeFloat, Needs: NeedTemp | NeedPE, Extensive: true, Help: "total energy (pe + ke)", eval: evalEtotal},
		KwEvdwl:     {Name: "evdwl", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "van der Waals pairwise energy", eval: tally(func(e Energies) float64 { return e.Vdwl + e.Tail })},
		KwEcoul:     {Name: "ecoul", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "Coulombic pairwise energy", eval: tally(func(e Energies) float64 { return e.Coul })},
		KwEpair:     {Name: "epair", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "pairwise energy (evdwl + ecoul + elong)", eval: tally(func(e Energies) float64 { return e.Vdwl + e.Coul + e.Long + e.Tail })},
		KwEbond:     {Name: "ebond", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "bond energy", eval: tally(func(e Energies) float64 { return e.Bond })},
		KwEangle:    {Name: "eangle", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "angle energy", eval: tally(func(e Energies) float64 { return e.Angle })},
		KwEdihed:    {Name: "edihed", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "dihedral energy", eval: tally(func(e Energies) float64 { return e.Dihedral })},
		KwEimp:      {Name: "eimp", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "improper energy", eval: tally(func(e Energies) float64 { return e.Improper })},
		KwEmol:      {Name: "emol", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "molecular energy (bond + angle + dihedral + improper)", eval: tally(func(e Energies) float64 { return e.Bond + e.Angle + e.Dihedral + e.Improper })},
		KwElong:     {Name: "elong", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "long-range kspace energy", eval: tally(func(e Energies) float64 { return e.Long })},
		KwEtail:     {Name: "etail", Type: TypeFloat, Needs: NeedPE, Extensive: true, Help: "van der Waals energy long-range tail correction", eval: tally(func(e Energies) float64 { return e.Tail })},
		KwEnthalpy:  {Name: "enthalpy", Type: TypeFloat, Needs: NeedTemp | NeedPress | NeedPE, Extensive: true, Help: "enthalpy (etotal + press*vol)", eval: evalEnthalpy},
		KwEcouple:   {Name: "ecouple", Type: TypeFloat, Extensive: true, Help: "cumulative energy change due to thermostats and barostats", eval: snapFloat(func(s *Snapshot) float64 { return s.Ecouple })},
		KwEconserve: {Name: "econserve", Type: TypeFloat, Needs: NeedTemp | NeedPE, Extensive: true, Help: "pe + ke + ecouple", eval: evalEconserve},

		KwVol:     {Name: "vol", Type: TypeFloat, Help: "volume", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Volume(s.dimension()) })},
		KwDensity: {Name: "density", Type: TypeFloat, Help: "mass density of system", eval: evalDensity},
		KwLx:      {Name: "lx", Type: TypeFloat, Help: "box length in x", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Hi[0] - s.Box.Lo[0] })},
		KwLy:      {Name: "ly", Type: TypeFloat, Help: "box length in y", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Hi[1] - s.Box.Lo[1] })},
		KwLz:      {Name: "lz", Type: TypeFloat, Help: "box length in z", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Hi[2] - s.Box.Lo[2] })},
		KwXlo:     {Name: "xlo", Type: TypeFloat, Help: "box lower bound in x", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Lo[0] })},
		KwXhi:     {Name: "xhi", Type: TypeFloat, Help: "box upper bound in x", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Hi[0] })},
		KwYlo:     {Name: "ylo", Type: TypeFloat, Help: "box lower bound in y", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Lo[1] })},
		KwYhi:     {Name: "yhi", Type: TypeFloat, Help: "box upper bound in y", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Hi[1] })},
		KwZlo:     {Name: "zlo", Type: TypeFloat, Help: "box lower bound in z", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Lo[2] })},
		KwZhi:     {Name: "zhi", Type: TypeFloat, Help: "box upper bound in z", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.Hi[2] })},
		KwXy:      {Name: "xy", Type: TypeFloat, Help: "box tilt for triclinic (non-orthogonal) boxes", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.XY })},
		KwXz:      {Name: "xz", Type: TypeFloat, Help: "box tilt for triclinic (non-orthogonal) boxes", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.XZ })},
		KwYz:      {Name: "yz", Type: TypeFloat, Help: "box tilt for triclinic (non-orthogonal) boxes", eval: snapFloat(func(s *Snapshot) float64 { return s.Box.YZ })},
		KwXlat:    {Name: "xlat", Type: TypeFloat, Help: "lattice spacing in x", eval: snapFloat(func(s *Snapshot) float64 { return s.Lattice[0] })},
		KwYlat:    {Name: "ylat", Type: TypeFloat, Help: "lattice spacing in y", eval: snapFloat(func(s *Snapshot) float64 { return s.Lattice[1] })},
		KwZlat:    {Name: "zlat", Type: TypeFloat, Help: "lattice spacing in z", eval: snapFloat(func(s *Snapshot) float64 { return s.Lattice[2] })},

		KwBonds:     {Name: "bonds", Type: TypeBigInt, Help: "number of bonds", eval: snapBig(func(s *Snapshot) int64 { return s.Bonds })},
		KwAngles:    {Name: "angles", Type: TypeBigInt, Help: "number of angles", eval: snapBig(func(s *Snapshot) int64 { return s.Angles })},
		KwDihedrals: {Name: "dihedrals", Type: TypeBigInt, Help: "number of dihedrals", eval: snapBig(func(s *Snapshot) int64 { return s.Dihedrals })},
		KwImpropers: {Name: "impropers", Type: TypeBigInt, Help: "number of impropers", eval: snapBig(func(s *Snapshot) int64 { return s.Impropers })},

		KwPxx: {Name: "pxx", Type: TypeFloat, Needs: NeedTemp | NeedPressVector, Help: "xx component of pressure tensor", eval: pressComponent(0)},
		KwPyy: {Name: "pyy", Type: TypeFloat, Needs: NeedTemp | NeedPressVector, Help: "yy component of pressure tensor", eval: pressComponent(1)},
		KwPzz: {Name: "pzz", Type: TypeFloat, Needs: NeedTemp | NeedPressVector, Help: "zz component of pressure tensor", eval: pressComponent(2)},
		KwPxy: {Name: "pxy", Type: TypeFloat, Needs: NeedTemp | NeedPressVector, Help: "xy component of pressure tensor", eval: pressComponent(3)},
		KwPxz: {Name: "pxz", Type: TypeFloat, Needs: NeedTemp | NeedPressVector, Help: "xz component of pressure tensor", eval: pressComponent(4)},
		KwPyz: {Name: "pyz", Type: TypeFloat, Needs: NeedTemp | NeedPressVector, Help: "yz component of pressure tensor", eval: pressComponent(5)},

		KwFmax:    {Name: "fmax", Type: TypeFloat, Help: "max component of force on any atom in any dimension", eval: snapFloat(func(s *Snapshot) float64 { return s.Fmax })},
		KwFnorm:   {Name: "fnorm", Type: TypeFloat, Help: "length of force vector for all atoms", eval: snapFloat(func(s *Snapshot) float64 { return s.Fnorm })},
		KwNbuild:  {Name: "nbuild", Type: TypeBigInt, Help: "number of neighbor list builds", eval: snapBig(func(s *Snapshot) int64 { return s.Nbuild })},
		KwNdanger: {Name: "ndanger", Type: TypeBigInt, Help: "number of dangerous neighbor list builds", eval: snapBig(func(s *Snapshot) int64 { return s.Ndanger })},

		KwCella:     {Name: "cella", Type: TypeFloat, Help: "periodic cell lattice constant a", eval: cellParam(0)},
		KwCellb:     {Name: "cellb", Type: TypeFloat, Help: "periodic cell lattice constant b", eval: cellParam(1)},
		KwCellc:     {Name: "cellc", Type: TypeFloat, Help: "periodic cell lattice constant c", eval: cellParam(2)},
		KwCellalpha: {Name: "cellalpha", Type: TypeFloat, Help: "periodic cell angle alpha", eval: cellParam(3)},
		KwCellbeta:  {Name: "cellbeta", Type: TypeFloat, Help: "periodic cell angle beta", eval: cellParam(4)},
		KwCellgamma: {Name: "cellgamma", Type: TypeFloat, Help: "periodic cell angle gamma", eval: cellParam(5)},

		KwCompute:  {Name: "c_ID", Type: TypeFloat, Help: "global scalar, vector element or array element of a compute", eval: evalProvider},
		KwFix:      {Name: "f_ID", Type: TypeFloat, Help: "global scalar, vector element or array element of a fix", eval: evalProvider},
		KwVariable: {Name: "v_NAME", Type: TypeFloat, Help: "value of an equal-style or element of a vector-style variable", eval: evalProvider},
	}

	byName = make(map[string]*Keyword, numKeywords)
	for i := range keywords {
		keywords[i].ID = KeywordID(i)
		if keywords[i].eval == nil {
			panic(fmt.Sprintf("thermo: keyword %d has no callback", i))
		}
		if i < int(KwCompute) {
			byName[keywords[i].Name] = &keywords[i]
		}
	}
}

// Lookup returns the descriptor of a plain keyword. Provider forms (c_, f_,
// v_) are not found here; the field parser resolves them.
func Lookup(name string) (*Keyword, bool) {
	kw, ok := byName[name]
	return kw, ok
}

// KeywordByID returns the table entry for id.
func KeywordByID(id KeywordID) *Keyword { return &keywords[id] }

// Keywords returns every table entry sorted by name.
func Keywords() []Keyword {
	out := make([]Keyword, len(keywords))
	copy(out, keywords[:])
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func providerKeyword(role Role) *Keyword {
	switch role {
	case RoleFix:
		return &keywords[KwFix]
	case RoleVariable:
		return &keywords[KwVariable]
	}
	return &keywords[KwCompute]
}
