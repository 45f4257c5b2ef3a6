package thermo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LineStyle selects how rows are laid out.
type LineStyle int

const (
	LineOne LineStyle = iota
	LineMulti
	LineYAML
)

func (s LineStyle) String() string {
	switch s {
	case LineMulti:
		return "multi"
	case LineYAML:
		return "yaml"
	}
	return "one"
}

func ParseLineStyle(s string) (LineStyle, error) {
	switch s {
	case "one":
		return LineOne, nil
	case "multi":
		return LineMulti, nil
	case "yaml":
		return LineYAML, nil
	}
	return 0, fmt.Errorf("%w: line style %q", ErrBadOption, s)
}

var defaultFormats = map[LineStyle][3]string{
	LineOne:   {TypeInt: "%10d", TypeFloat: "%14.8g", TypeBigInt: "%10d"},
	LineMulti: {TypeInt: "%14d", TypeFloat: "%14.4f", TypeBigInt: "%14d"},
	LineYAML:  {TypeInt: "%d", TypeFloat: "%.15g", TypeBigInt: "%d"},
}

var verbRE = regexp.MustCompile(`%[-+# 0]*(\d+)?(\.\d+)?([a-zA-Z%])`)

type verb struct {
	char  byte
	width int
}

func parseVerb(f string) (verb, error) {
	var found []verb
	for _, m := range verbRE.FindAllStringSubmatch(f, -1) {
		if m[3] == "%" {
			continue
		}
		v := verb{char: m[3][0]}
		if m[1] != "" {
			v.width, _ = strconv.Atoi(m[1])
		}
		found = append(found, v)
	}
	if strings.ContainsRune(verbRE.ReplaceAllString(f, ""), '%') {
		return verb{}, fmt.Errorf("%w: %q has a stray %%", ErrBadFormat, f)
	}
	if len(found) != 1 {
		return verb{}, fmt.Errorf("%w: %q must contain exactly one conversion", ErrBadFormat, f)
	}
	return found[0], nil
}

func validateFormat(f string, typ ValueType) error {
	v, err := parseVerb(f)
	if err != nil {
		return err
	}
	switch typ {
	case TypeInt, TypeBigInt:
		if !strings.ContainsRune("dxXob", rune(v.char)) {
			return fmt.Errorf("%w: %s format %q has no integer conversion", ErrBadFormat, typ, f)
		}
	case TypeFloat:
		if !strings.ContainsRune("eEfFgG", rune(v.char)) {
			return fmt.Errorf("%w: float format %q has no floating point conversion", ErrBadFormat, f)
		}
	}
	return nil
}

func formatWidth(f string) int {
	v, err := parseVerb(f)
	if err != nil {
		return 0
	}
	return v.width
}

func (s *settings) formatFor(i int, f *Field) string {
	if v, ok := s.columnFormat[i+1]; ok {
		return v
	}
	if v, ok := s.keywordFormat[f.Name]; ok {
		return v
	}
	if i < len(s.lineFormat) {
		return s.lineFormat[i]
	}
	if v := s.typeFormat[f.Type()]; v != "" {
		return v
	}
	return defaultFormats[s.style][f.Type()]
}

func (s *settings) nameFor(i int, f *Field) string {
	if v, ok := s.columnName[i+1]; ok {
		return v
	}
	if v, ok := s.keywordName[f.Name]; ok {
		return v
	}
	return f.Name
}

// compileFormats resolves the effective format of every column.
func compileFormats(fields []Field, set *settings) ([]string, error) {
	out := make([]string, len(fields))
	for i := range fields {
		f := &fields[i]
		fm := set.formatFor(i, f)
		if err := validateFormat(fm, f.Type()); err != nil {
			return nil, configErr(f.Name, "", err)
		}
		out[i] = fm
	}
	return out, nil
}

func (t *Thermo) renderHeader() (string, error) {
	names := t.Columns()
	switch t.set.style {
	case LineMulti:
		return "", nil
	case LineYAML:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, n := range names {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n})
		}
		doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "keywords"}, seq,
		}}
		b, err := yaml.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("thermo: yaml header: %w", err)
		}
		return "---\n" + string(b) + "data:\n", nil
	}
	cols := make([]string, len(names))
	for i, n := range names {
		cols[i] = fmt.Sprintf("%*s", formatWidth(t.formats[i]), n)
	}
	return strings.Join(cols, " ") + "\n", nil
}

func (t *Thermo) renderRow(values []Value, snap *Snapshot, sess *Session) (string, error) {
	switch t.set.style {
	case LineMulti:
		return t.renderMulti(values, snap, sess), nil
	case LineYAML:
		return renderYAML(values, t.formats)
	}
	cols := make([]string, len(values))
	for i, v := range values {
		cols[i] = v.format(t.formats[i])
	}
	return strings.Join(cols, " ") + "\n", nil
}

func (t *Thermo) renderMulti(values []Value, snap *Snapshot, sess *Session) string {
	var b strings.Builder
	cpu := snap.CPU
	if sess.Reports == 0 {
		cpu = 0
	}
	fmt.Fprintf(&b, "------------ Step %14d ----- CPU = %12.7g (sec) -------------", snap.Step, cpu)
	names := t.Columns()
	for i, v := range values {
		if i%3 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%-8s = %s", names[i], v.format(t.formats[i]))
	}
	b.WriteString("\n")
	return b.String()
}

func renderYAML(values []Value, formats []string) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for i, v := range values {
		n := &yaml.Node{Kind: yaml.ScalarNode, Value: strings.TrimSpace(v.format(formats[i]))}
		if v.Type == TypeFloat {
			switch {
			case math.IsNaN(v.Float):
				n.Value = ".nan"
			case math.IsInf(v.Float, 1):
				n.Value = ".inf"
			case math.IsInf(v.Float, -1):
				n.Value = "-.inf"
			}
		}
		seq.Content = append(seq.Content, n)
	}
	b, err := yaml.Marshal(seq)
	if err != nil {
		return "", fmt.Errorf("thermo: yaml row: %w", err)
	}
	return "  - " + string(b), nil
}

func (t *Thermo) renderFooter(snap *Snapshot, sess *Session) string {
	var b strings.Builder
	if t.set.style == LineYAML {
		b.WriteString("...\n")
	}
	steps := snap.Step - sess.FirstStep
	fmt.Fprintf(&b, "Loop time of %g on %d procs for %d steps with %d atoms\n", snap.CPU, t.procs, steps, snap.Atoms)
	if snap.CPU > 0 && steps > 0 {
		fmt.Fprintf(&b, "\nPerformance: %.3f timesteps/s\n", float64(steps)/snap.CPU)
	}
	if t.mem != nil {
		if mb, err := t.mem.MemoryMB(); err == nil {
			fmt.Fprintf(&b, "Total process memory usage = %.4g Mbytes\n", mb)
		}
	}
	return b.String()
}
