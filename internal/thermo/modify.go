package thermo

import (
	"fmt"
	"strconv"
	"strings"
)

// Policy is the severity applied when a consistency check fails.
type Policy int

const (
	PolicyIgnore Policy = iota
	PolicyWarn
	PolicyError
)

func (p Policy) String() string {
	switch p {
	case PolicyIgnore:
		return "ignore"
	case PolicyWarn:
		return "warn"
	}
	return "error"
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "ignore":
		return PolicyIgnore, nil
	case "warn":
		return PolicyWarn, nil
	case "error":
		return PolicyError, nil
	}
	return 0, fmt.Errorf("%w: policy %q", ErrBadOption, s)
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", ErrBadOption, s)
}

// Default role provider ids.
const (
	DefaultTemperatureID = "thermo_temp"
	DefaultPressureID    = "thermo_press"
	DefaultEnergyID      = "thermo_pe"
)

type settings struct {
	normSet  bool
	norm     bool
	lost     Policy
	lostBond Policy
	style    LineStyle
	flush    bool
	roleID   [3]string

	lineFormat    []string
	typeFormat    [3]string
	columnFormat  map[int]string
	keywordFormat map[string]string
	columnName    map[int]string
	keywordName   map[string]string
}

func defaultSettings() settings {
	return settings{
		lost:          PolicyError,
		lostBond:      PolicyError,
		roleID:        [3]string{QuantityTemperature: DefaultTemperatureID, QuantityPressure: DefaultPressureID, QuantityPotentialEnergy: DefaultEnergyID},
		columnFormat:  map[int]string{},
		keywordFormat: map[string]string{},
		columnName:    map[int]string{},
		keywordName:   map[string]string{},
	}
}

func (s settings) clone() settings {
	c := s
	c.lineFormat = append([]string(nil), s.lineFormat...)
	c.columnFormat = make(map[int]string, len(s.columnFormat))
	for k, v := range s.columnFormat {
		c.columnFormat[k] = v
	}
	c.keywordFormat = make(map[string]string, len(s.keywordFormat))
	for k, v := range s.keywordFormat {
		c.keywordFormat[k] = v
	}
	c.columnName = make(map[int]string, len(s.columnName))
	for k, v := range s.columnName {
		c.columnName[k] = v
	}
	c.keywordName = make(map[string]string, len(s.keywordName))
	for k, v := range s.keywordName {
		c.keywordName[k] = v
	}
	return c
}

// Modify is a set of runtime options. Empty fields are left unchanged.
type Modify struct {
	TemperatureProvider     string            `yaml:"temperature_provider,omitempty"`
	PressureProvider        string            `yaml:"pressure_provider,omitempty"`
	PotentialEnergyProvider string            `yaml:"potential_energy_provider,omitempty"`
	Normalize               string            `yaml:"normalize,omitempty"`
	LostPolicy              string            `yaml:"lost_policy,omitempty"`
	LostBondsPolicy         string            `yaml:"lost_bonds_policy,omitempty"`
	LineFormat              *string           `yaml:"line_format,omitempty"`
	TypeFormat              map[string]string `yaml:"type_format,omitempty"`
	ColumnFormat            map[string]string `yaml:"column_format,omitempty"`
	ColumnName              map[string]string `yaml:"column_name,omitempty"`
	Line                    string            `yaml:"line,omitempty"`
	FormatReset             bool              `yaml:"format_reset,omitempty"`
	Flush                   string            `yaml:"flush,omitempty"`
}

// Modify validates every option and applies them together. On error
// nothing changes.
func (t *Thermo) Modify(m Modify) error {
	set := t.set.clone()
	roles := t.pipe.roles

	overrides := []struct {
		id string
		q  Quantity
	}{
		{m.TemperatureProvider, QuantityTemperature},
		{m.PressureProvider, QuantityPressure},
		{m.PotentialEnergyProvider, QuantityPotentialEnergy},
	}
	for _, o := range overrides {
		if o.id == "" {
			continue
		}
		if err := t.overrideRole(&roles, o.id, o.q); err != nil {
			return err
		}
		set.roleID[o.q] = o.id
	}

	switch m.Normalize {
	case "":
	case "default":
		set.normSet = false
	default:
		on, err := parseOnOff(m.Normalize)
		if err != nil {
			return configErr("normalize", "", err)
		}
		set.normSet, set.norm = true, on
	}

	if m.LostPolicy != "" {
		p, err := ParsePolicy(m.LostPolicy)
		if err != nil {
			return configErr("lost_policy", "", err)
		}
		set.lost = p
	}
	if m.LostBondsPolicy != "" {
		p, err := ParsePolicy(m.LostBondsPolicy)
		if err != nil {
			return configErr("lost_bonds_policy", "", err)
		}
		set.lostBond = p
	}
	if m.Line != "" {
		style, err := ParseLineStyle(m.Line)
		if err != nil {
			return configErr("line", "", err)
		}
		set.style = style
	}
	if m.Flush != "" {
		on, err := parseOnOff(m.Flush)
		if err != nil {
			return configErr("flush", "", err)
		}
		set.flush = on
	}

	if m.FormatReset {
		set.lineFormat = nil
		set.typeFormat = [3]string{}
		set.columnFormat = map[int]string{}
		set.keywordFormat = map[string]string{}
	}
	if m.LineFormat != nil {
		set.lineFormat = strings.Fields(*m.LineFormat)
		for _, w := range set.lineFormat {
			if _, err := parseVerb(w); err != nil {
				return configErr("line_format", "", err)
			}
		}
	}
	for k, v := range m.TypeFormat {
		typ, err := ParseValueType(k)
		if err != nil {
			return configErr("type_format", "", err)
		}
		if err := validateFormat(v, typ); err != nil {
			return configErr("type_format", "", err)
		}
		set.typeFormat[typ] = v
	}
	for k, v := range m.ColumnFormat {
		if _, err := parseVerb(v); err != nil {
			return configErr(k, "", err)
		}
		if err := t.setColumnOption(set.columnFormat, set.keywordFormat, k, v); err != nil {
			return err
		}
	}
	for k, v := range m.ColumnName {
		if v == "" {
			return configErr(k, "", fmt.Errorf("%w: empty column name", ErrBadOption))
		}
		if err := t.setColumnOption(set.columnName, set.keywordName, k, v); err != nil {
			return err
		}
	}

	formats, err := compileFormats(t.pipe.fields, &set)
	if err != nil {
		return err
	}

	t.set = set
	t.pipe.roles = roles
	t.formats = formats
	return nil
}

// setColumnOption stores v under a 1-based column index or a keyword name.
func (t *Thermo) setColumnOption(byIndex map[int]string, byKeyword map[string]string, key, v string) error {
	n := len(t.pipe.fields)
	if i, err := strconv.Atoi(key); err == nil {
		if i < 1 || (n > 0 && i > n) {
			return configErr(key, "", fmt.Errorf("%w: column %d out of range", ErrBadOption, i))
		}
		byIndex[i] = v
		return nil
	}
	if n > 0 && !t.hasField(key) {
		return configErr(key, "", fmt.Errorf("%w: no column named %q", ErrBadOption, key))
	}
	byKeyword[key] = v
	return nil
}

func (t *Thermo) hasField(name string) bool {
	for _, f := range t.pipe.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// overrideRole points the quantity at compute id, rebinding any slot the
// current pipeline already reads.
func (t *Thermo) overrideRole(roles *[numSlots]int, id string, q Quantity) error {
	p, ok := t.env.Lookup(RoleCompute, id)
	if !ok || p == nil {
		return configErr(q.String(), "c_"+id, fmt.Errorf("%w: compute %s", ErrProviderNotFound, id))
	}
	if !computesQuantity(p, q) {
		return configErr(q.String(), "c_"+id, fmt.Errorf("%w: compute %s does not compute %s", ErrWrongQuantity, id, q))
	}
	for s := roleSlot(0); s < numSlots; s++ {
		if s.quantity() != q || roles[s] < 0 {
			continue
		}
		idx, err := t.bindQuantity(id, s)
		if err != nil {
			return withKeyword(err, q.String())
		}
		roles[s] = idx
	}
	return nil
}
