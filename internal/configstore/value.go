package configstore

import (
	"fmt"
	"math"
	"strconv"

	"github.com/transientskp/tkpcat/internal/errors"
)

// ErrConfigType is returned for a value or stored type tag outside the
// supported set.
var ErrConfigType = errors.NewStd("unsupported configuration value type")

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// Type tags stored in the config table.
const (
	TagString = "str"
	TagInt    = "int"
	TagFloat  = "float"
	TagBool   = "bool"
)

// Tag returns the stored type tag of k.
func (k Kind) Tag() string {
	switch k {
	case KindString:
		return TagString
	case KindInt:
		return TagInt
	case KindFloat:
		return TagFloat
	case KindBool:
		return TagBool
	}
	return "unknown"
}

// Value is a configuration value: a string, an integer, a float or a bool.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Tag returns the stored type tag of v.
func (v Value) Tag() string { return v.kind.Tag() }

// AsString returns the string held by v, or "" for other kinds.
func (v Value) AsString() string { return v.s }

// AsInt returns the integer held by v, or 0 for other kinds.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the float held by v, or 0 for other kinds.
func (v Value) AsFloat() float64 { return v.f }

// AsBool returns the bool held by v, or false for other kinds.
func (v Value) AsBool() bool { return v.b }

// ValueOf wraps a Go value. Any type other than string, the integer types,
// float32, float64 and bool fails with ErrConfigType.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return Value{}, typeError("unsigned value %d overflows int", v)
		}
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, typeError("unsigned value %d overflows int", v)
		}
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case Value:
		return v, nil
	}
	return Value{}, typeError("value %v has type %T, supported are str, int, float and bool", x, x)
}

// Interface returns the held value as string, int64, float64 or bool.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	}
	return v.s
}

// Encode renders the value for the config table. Floats use the shortest
// representation that parses back to the same value.
func (v Value) Encode() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return v.s
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return v.Encode()
}

// Decode parses a stored value with its type tag.
func Decode(value, tag string) (Value, error) {
	switch tag {
	case TagString:
		return String(value), nil
	case TagInt:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return Value{}, decodeError(value, tag, err)
		}
		return Int(i), nil
	case TagFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Value{}, decodeError(value, tag, err)
		}
		return Float(f), nil
	case TagBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return Value{}, decodeError(value, tag, err)
		}
		return Bool(b), nil
	}
	return Value{}, typeError("stored type %q is not one of str, int, float, bool", tag)
}

func typeError(format string, args ...any) error {
	return errors.New(fmt.Errorf("%w: "+format, append([]any{ErrConfigType}, args...)...)).
		Component("configstore").
		Category(errors.CategoryConfigType).
		Build()
}

func decodeError(value, tag string, err error) error {
	return errors.New(fmt.Errorf("%w: cannot read %q as %s: %w", ErrConfigType, value, tag, err)).
		Component("configstore").
		Category(errors.CategoryConfigType).
		Build()
}
