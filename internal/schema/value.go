package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"ormlite/internal/errs"
)

// ValueKind tags a condition value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindInt
	KindText
)

// Value is a condition value: either a 64-bit integer or a string.
// The zero Value is invalid and fails binding.
type Value struct {
	kind ValueKind
	i    int64
	s    string
}

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// Int64 returns the integer payload.
func (v Value) Int64() (int64, bool) { return v.i, v.kind == KindInt }

// Str returns the text payload.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindText }

// String renders the value for logs.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindText:
		return strconv.Quote(v.s)
	default:
		return "<invalid>"
	}
}

// ValueOf converts a dynamically typed value into a Value. Integers, named
// integer types included, become Int; strings, named string types and
// fmt.Stringers become Text. Anything else cannot be bound and yields
// ErrParameterBind.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
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
		return uintValue(uint64(v), x)
	case uint64:
		return uintValue(v, x)
	case string:
		return Text(v), nil
	case []byte:
		return Text(string(v)), nil
	case nil:
		return Value{}, errs.Newf(errs.ErrParameterBind, "value", "", "nil condition value")
	}

	// Named types: the underlying kind decides, before any String method.
	rv := reflect.ValueOf(x)
	switch {
	case rv.CanInt():
		return Int(rv.Int()), nil
	case rv.CanUint():
		return uintValue(rv.Uint(), x)
	case rv.Kind() == reflect.String:
		return Text(rv.String()), nil
	}
	if s, ok := x.(fmt.Stringer); ok {
		return Text(s.String()), nil
	}
	return Value{}, errs.Newf(errs.ErrParameterBind, "value", "", "cannot bind %T as integer or text", x)
}

func uintValue(u uint64, x any) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, errs.Newf(errs.ErrParameterBind, "value", "", "%T %d overflows int64", x, u)
	}
	return Int(int64(u)), nil
}
