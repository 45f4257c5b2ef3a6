package thermo

import (
	"fmt"
	"strings"
)

// ValueType is the semantic type of a column.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeFloat
	TypeBigInt
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBigInt:
		return "extended"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(s) {
	case "integer", "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "extended", "bigint":
		return TypeBigInt, nil
	}
	return 0, fmt.Errorf("%w: value type %q", ErrBadOption, s)
}

// Value is one computed column. Only the slot selected by Type is set.
type Value struct {
	Type  ValueType
	Int   int
	Float float64
	Big   int64
}

func IntValue(v int) Value       { return Value{Type: TypeInt, Int: v} }
func FloatValue(v float64) Value { return Value{Type: TypeFloat, Float: v} }
func BigValue(v int64) Value     { return Value{Type: TypeBigInt, Big: v} }

// Float64 converts any value to float64.
func (v Value) Float64() float64 {
	switch v.Type {
	case TypeInt:
		return float64(v.Int)
	case TypeBigInt:
		return float64(v.Big)
	}
	return v.Float
}

func (v Value) format(f string) string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf(f, v.Int)
	case TypeBigInt:
		return fmt.Sprintf(f, v.Big)
	}
	return fmt.Sprintf(f, v.Float)
}

func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprint(v.Int)
	case TypeBigInt:
		return fmt.Sprint(v.Big)
	}
	return fmt.Sprint(v.Float)
}
