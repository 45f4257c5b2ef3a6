package thermo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field is one configured output column.
type Field struct {
	// Name is the canonical column name, including index suffixes.
	Name    string
	Keyword *Keyword

	// Provider fields only.
	Role   Role
	ID     string
	Kind   Kind
	Index1 int
	Index2 int

	Extensive bool

	binding int
}

func (f *Field) Type() ValueType { return f.Keyword.Type }

type pipeline struct {
	fields []Field
	roles  [numSlots]int
}

func newPipeline() *pipeline {
	p := &pipeline{}
	for i := range p.roles {
		p.roles[i] = -1
	}
	return p
}

// bindings returns every registry index the pipeline reads.
func (p *pipeline) bindings() []int {
	var out []int
	for _, idx := range p.roles {
		if idx >= 0 {
			out = append(out, idx)
		}
	}
	for _, f := range p.fields {
		if f.binding >= 0 {
			out = append(out, f.binding)
		}
	}
	return out
}

var presets = map[string][]string{
	"one":   {"step", "temp", "epair", "emol", "etotal", "press"},
	"multi": {"etotal", "ke", "temp", "pe", "ebond", "eangle", "edihed", "eimp", "evdwl", "ecoul", "elong", "press"},
}

// Preset returns the keyword list of a named thermo style.
func Preset(name string) ([]string, bool) {
	words, ok := presets[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(words))
	copy(out, words)
	return out, true
}

func PresetNames() []string { return []string{"multi", "one"} }

// splitWord separates "c_ID[2][3]" into "c_ID" and {"2", "3"}.
func splitWord(word string) (string, []string, error) {
	open := strings.IndexByte(word, '[')
	if open < 0 {
		if strings.ContainsRune(word, ']') {
			return "", nil, fmt.Errorf("%w: unbalanced bracket", ErrMalformedIndex)
		}
		return word, nil, nil
	}
	base, rest := word[:open], word[open:]
	if base == "" {
		return "", nil, fmt.Errorf("%w: missing keyword before index", ErrMalformedIndex)
	}
	var idx []string
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("%w: trailing characters %q", ErrMalformedIndex, rest)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, fmt.Errorf("%w: unbalanced bracket", ErrMalformedIndex)
		}
		in := rest[1:end]
		if in == "" || strings.ContainsRune(in, '[') {
			return "", nil, fmt.Errorf("%w: empty index", ErrMalformedIndex)
		}
		idx = append(idx, in)
		rest = rest[end+1:]
	}
	if len(idx) > 2 {
		return "", nil, fmt.Errorf("%w: at most two indices allowed", ErrMalformedIndex)
	}
	return base, idx, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a positive integer", ErrMalformedIndex, s)
	}
	return n, nil
}

func providerPrefix(base string) (Role, string, bool) {
	for _, r := range []Role{RoleCompute, RoleFix, RoleVariable} {
		if strings.HasPrefix(base, r.Prefix()) {
			return r, base[len(r.Prefix()):], true
		}
	}
	return 0, "", false
}

func wildcardRange(s string, n int) (int, int, error) {
	star := strings.IndexByte(s, '*')
	lo, hi := 1, n
	var err error
	if left := s[:star]; left != "" {
		if lo, err = parseIndex(left); err != nil {
			return 0, 0, err
		}
	}
	if right := s[star+1:]; right != "" {
		if hi, err = parseIndex(right); err != nil {
			return 0, 0, err
		}
	}
	if lo > hi || hi > n {
		return 0, 0, fmt.Errorf("%w: wildcard %q over %d entries", ErrIndexRange, s, n)
	}
	return lo, hi, nil
}

// expand turns c_ID[*] style wildcards into one word per vector element, or
// per selected array column of each row when the provider has only an array.
func (t *Thermo) expand(word string) ([]string, error) {
	base, idx, err := splitWord(word)
	if err != nil {
		return nil, configErr(word, "", err)
	}
	if len(idx) != 1 || !strings.ContainsRune(idx[0], '*') {
		return []string{word}, nil
	}
	role, id, ok := providerPrefix(base)
	if !ok || role == RoleVariable {
		return nil, configErr(word, "", fmt.Errorf("%w: wildcard only allowed on compute or fix vectors", ErrMalformedIndex))
	}
	p, found := t.env.Lookup(role, id)
	if !found || p == nil {
		return nil, configErr(word, base, fmt.Errorf("%w: %s %s", ErrProviderNotFound, role, id))
	}
	if !p.HasVector() {
		if p.HasArray() {
			return expandArray(word, base, idx[0], p)
		}
		return nil, configErr(word, base, fmt.Errorf("%w: %s %s has no vector or array", ErrWrongKind, role, id))
	}
	n := p.VectorLen()
	if n < 0 {
		return nil, configErr(word, base, fmt.Errorf("%w: wildcard on variable length vector", ErrMalformedIndex))
	}
	lo, hi, err := wildcardRange(idx[0], n)
	if err != nil {
		return nil, configErr(word, base, err)
	}
	out := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, fmt.Sprintf("%s[%d]", base, i))
	}
	return out, nil
}

// expandArray selects array columns with the wildcard and emits them row by
// row as c_ID[i][k] elements.
func expandArray(word, base, wild string, p Provider) ([]string, error) {
	rows, cols := p.ArrayShape()
	lo, hi, err := wildcardRange(wild, cols)
	if err != nil {
		return nil, configErr(word, base, err)
	}
	out := make([]string, 0, rows*(hi-lo+1))
	for i := 1; i <= rows; i++ {
		for k := lo; k <= hi; k++ {
			out = append(out, fmt.Sprintf("%s[%d][%d]", base, i, k))
		}
	}
	return out, nil
}

func withKeyword(err error, word string) error {
	var ce *ConfigError
	if errors.As(err, &ce) {
		cp := *ce
		if cp.Keyword == "" {
			cp.Keyword = word
		}
		return &cp
	}
	return configErr(word, "", err)
}

// bindRole makes sure the pipeline reads the provider currently assigned
// to the slot's quantity.
func (t *Thermo) bindRole(pipe *pipeline, set *settings, s roleSlot) error {
	if pipe.roles[s] >= 0 {
		return nil
	}
	idx, err := t.bindQuantity(set.roleID[s.quantity()], s)
	if err != nil {
		return err
	}
	pipe.roles[s] = idx
	return nil
}

func (t *Thermo) bindQuantity(id string, s roleSlot) (int, error) {
	q := s.quantity()
	idx, err := t.reg.Bind(RoleCompute, id, s.kind())
	if err != nil {
		return -1, err
	}
	p, err := t.reg.Provider(idx)
	if err != nil {
		return -1, err
	}
	if !computesQuantity(p, q) {
		return -1, configErr("", "c_"+id, fmt.Errorf("%w: compute %s does not compute %s", ErrWrongQuantity, id, q))
	}
	if s == slotPressVector {
		if n := p.VectorLen(); n >= 0 && n < 6 {
			return -1, configErr("", "c_"+id, fmt.Errorf("%w: pressure vector has %d components", ErrIndexRange, n))
		}
	}
	return idx, nil
}

func (t *Thermo) buildField(pipe *pipeline, set *settings, word string) (Field, error) {
	base, idx, err := splitWord(word)
	if err != nil {
		return Field{}, configErr(word, "", err)
	}

	if role, id, ok := providerPrefix(base); ok && id != "" {
		return t.buildProviderField(word, role, id, idx)
	}
	if len(idx) > 0 {
		if _, ok := Lookup(base); ok {
			return Field{}, configErr(word, "", fmt.Errorf("%w: keyword takes no index", ErrMalformedIndex))
		}
	}
	kw, ok := Lookup(base)
	if !ok {
		return Field{}, configErr(word, "", ErrUnknownKeyword)
	}
	needs := []struct {
		need Need
		slot roleSlot
	}{
		{NeedTemp, slotTemp},
		{NeedPress, slotPress},
		{NeedPressVector, slotPressVector},
		{NeedPE, slotPE},
	}
	for _, n := range needs {
		if kw.Needs&n.need == 0 {
			continue
		}
		if err := t.bindRole(pipe, set, n.slot); err != nil {
			return Field{}, withKeyword(err, word)
		}
	}
	return Field{Name: word, Keyword: kw, Extensive: kw.Extensive, binding: -1}, nil
}

func (t *Thermo) buildProviderField(word string, role Role, id string, raw []string) (Field, error) {
	f := Field{Name: word, Keyword: providerKeyword(role), Role: role, ID: id, binding: -1}
	name := role.Prefix() + id
	var err error
	switch len(raw) {
	case 0:
		f.Kind = KindScalar
	case 1:
		f.Kind = KindVector
		if f.Index1, err = parseIndex(raw[0]); err != nil {
			return Field{}, configErr(word, name, err)
		}
	case 2:
		if role == RoleVariable {
			return Field{}, configErr(word, name, fmt.Errorf("%w: variable cannot have two indices", ErrMalformedIndex))
		}
		f.Kind = KindArray
		if f.Index1, err = parseIndex(raw[0]); err != nil {
			return Field{}, configErr(word, name, err)
		}
		if f.Index2, err = parseIndex(raw[1]); err != nil {
			return Field{}, configErr(word, name, err)
		}
	}

	f.binding, err = t.reg.Bind(role, id, f.Kind)
	if err != nil {
		return Field{}, withKeyword(err, word)
	}
	p, err := t.reg.Provider(f.binding)
	if err != nil {
		return Field{}, withKeyword(err, word)
	}
	switch f.Kind {
	case KindVector:
		if n := p.VectorLen(); n >= 0 && f.Index1 > n {
			return Field{}, configErr(word, name, fmt.Errorf("%w: index %d, length %d", ErrIndexRange, f.Index1, n))
		}
	case KindArray:
		rows, cols := p.ArrayShape()
		if (rows >= 0 && f.Index1 > rows) || (cols >= 0 && f.Index2 > cols) {
			return Field{}, configErr(word, name, fmt.Errorf("%w: index [%d][%d], shape %dx%d", ErrIndexRange, f.Index1, f.Index2, rows, cols))
		}
	}
	f.Extensive = isExtensive(p, f.Kind)
	return f, nil
}
