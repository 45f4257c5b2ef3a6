package thermo

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Logger is the diagnostic sink for warnings.
type Logger interface {
	Logf(format string, args ...any)
}

// NewLogf returns a safe log function. A nil Logger discards.
func NewLogf(l Logger) func(string, ...any) {
	if l == nil {
		return func(string, ...any) {}
	}
	return l.Logf
}

// MemoryProbe reports the memory footprint of the running process.
type MemoryProbe interface {
	MemoryMB() (float64, error)
}

// Observer receives every rendered row.
type Observer interface {
	OnRow(columns []string, row Row)
}

// Row is the result of one Report call.
type Row struct {
	Step        int64
	Values      []Value
	Text        string
	Diagnostics []string
}

// Session is the per-run state threaded through Report calls.
type Session struct {
	// InitialAtoms is the atom count at Setup; Atoms is the count the
	// lost-atom check compares against.
	InitialAtoms int64
	Atoms        int64

	FirstStep int64
	LastStep  int64
	Reports   int

	PrevStep  int64
	PrevTime  float64
	PrevTPCPU float64
	PrevSPCPU float64

	BondWarned bool
	Active     bool
}

type Options struct {
	Writer io.Writer
	Logger Logger
	Memory MemoryProbe
	// Procs is the worker count printed in the footer.
	Procs int
	// NormalizeDefault is the normalize mode "default" restores; true for
	// reduced (lj) units.
	NormalizeDefault bool
}

// Thermo renders periodic status lines for a stepped simulation. A Thermo is
// not safe for concurrent use; independent instances may run in parallel.
type Thermo struct {
	env         Environment
	reg         *Registry
	set         settings
	pipe        *pipeline
	formats     []string
	out         *bufio.Writer
	logf        func(string, ...any)
	mem         MemoryProbe
	procs       int
	normDefault bool
	observers   []Observer
}

func New(env Environment, opts Options) *Thermo {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	procs := opts.Procs
	if procs < 1 {
		procs = 1
	}
	return &Thermo{
		env:         env,
		reg:         NewRegistry(env),
		set:         defaultSettings(),
		pipe:        newPipeline(),
		out:         bufio.NewWriter(w),
		logf:        NewLogf(opts.Logger),
		mem:         opts.Memory,
		procs:       procs,
		normDefault: opts.NormalizeDefault,
	}
}

func (t *Thermo) AddObserver(o Observer) { t.observers = append(t.observers, o) }

func (t *Thermo) Registry() *Registry { return t.reg }

func (t *Thermo) LostPolicy() Policy     { return t.set.lost }
func (t *Thermo) LostBondPolicy() Policy { return t.set.lostBond }
func (t *Thermo) LineStyle() LineStyle   { return t.set.style }

// Fields returns a copy of the configured pipeline.
func (t *Thermo) Fields() []Field {
	return append([]Field(nil), t.pipe.fields...)
}

// Columns returns the header names, honoring column_name overrides.
func (t *Thermo) Columns() []string {
	names := make([]string, len(t.pipe.fields))
	for i := range t.pipe.fields {
		names[i] = t.set.nameFor(i, &t.pipe.fields[i])
	}
	return names
}

// Formats returns the effective format string of every column.
func (t *Thermo) Formats() []string { return append([]string(nil), t.formats...) }

// Configure rebuilds the pipeline from a keyword list. A single preset name
// ("one", "multi") expands to its keywords. Format and name overrides set
// by column index apply to the first pipeline only and are dropped when an
// existing one is replaced. On error the previous pipeline and settings stay
// in place.
func (t *Thermo) Configure(words []string) error {
	if len(words) == 1 {
		if preset, ok := Preset(words[0]); ok {
			words = preset
		}
	}
	if len(words) == 0 {
		return configErr("", "", fmt.Errorf("%w: empty keyword list", ErrBadOption))
	}

	pipe := newPipeline()
	for _, word := range words {
		expanded, err := t.expand(word)
		if err != nil {
			return err
		}
		for _, w := range expanded {
			f, err := t.buildField(pipe, &t.set, w)
			if err != nil {
				return err
			}
			pipe.fields = append(pipe.fields, f)
		}
	}
	// Overrides keyed by column position do not carry over to a new layout.
	set := t.set.clone()
	if len(t.pipe.fields) > 0 {
		set.columnFormat = map[int]string{}
		set.columnName = map[int]string{}
	}
	formats, err := compileFormats(pipe.fields, &set)
	if err != nil {
		return err
	}
	t.set = set
	t.pipe = pipe
	t.formats = formats
	return nil
}

// Setup starts a run: provider handles are re-resolved, the header is
// written and the initial Session returned.
func (t *Thermo) Setup(snap Snapshot) (Session, error) {
	if len(t.pipe.fields) == 0 {
		return Session{}, ErrNotSetup
	}
	if err := t.reg.Refresh(t.pipe.bindings()); err != nil {
		return Session{}, err
	}
	sess := Session{
		InitialAtoms: snap.Atoms,
		Atoms:        snap.Atoms,
		FirstStep:    snap.Step,
		LastStep:     snap.LastStep,
		PrevStep:     snap.Step,
		PrevTime:     snap.Time,
		Active:       true,
	}
	if sess.LastStep < sess.FirstStep {
		sess.LastStep = sess.FirstStep
	}

	header, err := t.renderHeader()
	if err != nil {
		return Session{}, err
	}
	if t.mem != nil && t.set.style != LineYAML {
		if mb, err := t.mem.MemoryMB(); err == nil {
			header = fmt.Sprintf("Per process memory allocation = %.4g Mbytes\n", mb) + header
		}
	}
	if err := t.write(header); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Report runs the lost-atom check, evaluates every field and renders the
// row. The returned Session must be passed to the next call.
func (t *Thermo) Report(snap Snapshot, sess Session) (Row, Session, error) {
	row := Row{Step: snap.Step}
	if !sess.Active {
		return row, sess, ErrNotSetup
	}

	next, diags, err := t.checkLost(&snap, sess)
	for _, d := range diags {
		t.logf("WARNING: %s", d)
	}
	row.Diagnostics = diags
	if err != nil {
		t.logf("ERROR: %s", err)
		return row, next, err
	}

	// A failed row keeps the lost-atom bookkeeping so warnings are not repeated.
	checked := next
	values, next, err := t.dispatch(&snap, next)
	if err != nil {
		return row, checked, err
	}
	text, err := t.renderRow(values, &snap, &next)
	if err != nil {
		return row, checked, err
	}
	row.Values = values
	row.Text = text
	next.Reports++

	if err := t.write(text); err != nil {
		return row, next, err
	}
	cols := t.Columns()
	for _, o := range t.observers {
		o.OnRow(cols, row)
	}
	return row, next, nil
}

// Footer writes the loop summary and flushes the output.
func (t *Thermo) Footer(snap Snapshot, sess Session) error {
	if _, err := t.out.WriteString(t.renderFooter(&snap, &sess)); err != nil {
		return err
	}
	return t.out.Flush()
}

func (t *Thermo) Flush() error { return t.out.Flush() }

func (t *Thermo) write(s string) error {
	if _, err := t.out.WriteString(s); err != nil {
		return err
	}
	if t.set.flush {
		return t.out.Flush()
	}
	return nil
}

func (t *Thermo) normalize(atoms int64) bool {
	if atoms == 0 {
		return false
	}
	if t.set.normSet {
		return t.set.norm
	}
	return t.normDefault
}

func (t *Thermo) dispatch(snap *Snapshot, sess Session) ([]Value, Session, error) {
	ec := &evalContext{reg: t.reg, roles: &t.pipe.roles, snap: snap, sess: &sess}
	norm := t.normalize(snap.Atoms)
	values := make([]Value, len(t.pipe.fields))
	for i := range t.pipe.fields {
		f := &t.pipe.fields[i]
		if f.Keyword.TimeBased && !snap.Running {
			return nil, sess, configErr(f.Name, "", ErrBetweenRuns)
		}
		ec.field = f
		ec.provider = ""
		v, err := f.Keyword.eval(ec)
		if err != nil {
			if IsConfig(err) {
				return nil, sess, withKeyword(err, f.Name)
			}
			return nil, sess, &UnavailableError{Column: i, Keyword: f.Name, Provider: ec.provider, Step: snap.Step, Err: err}
		}
		if norm && f.Extensive && v.Type == TypeFloat {
			v.Float /= float64(snap.Atoms)
		}
		values[i] = v
	}
	return values, sess, nil
}

// Evaluate computes a single plain keyword for host-side expressions. Only
// role providers the current pipeline already reads may be used, and the
// session is not advanced.
func (t *Thermo) Evaluate(word string, snap Snapshot, sess Session) (float64, error) {
	kw, ok := Lookup(word)
	if !ok {
		return 0, configErr(word, "", ErrUnknownKeyword)
	}
	if kw.TimeBased && !snap.Running {
		return 0, configErr(word, "", ErrBetweenRuns)
	}
	f := Field{Name: word, Keyword: kw, Extensive: kw.Extensive, binding: -1}
	ec := &evalContext{reg: t.reg, roles: &t.pipe.roles, snap: &snap, sess: &sess, field: &f}
	v, err := kw.eval(ec)
	switch {
	case err == nil:
	case IsConfig(err):
		return 0, withKeyword(err, word)
	case isRoleNotBound(err):
		return 0, configErr(word, "", err)
	default:
		return 0, &UnavailableError{Column: -1, Keyword: word, Provider: ec.provider, Step: snap.Step, Err: err}
	}
	out := v.Float64()
	if t.normalize(snap.Atoms) && f.Extensive && v.Type == TypeFloat {
		out /= float64(snap.Atoms)
	}
	return out, nil
}
