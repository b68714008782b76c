package hydrate

import (
	"fmt"
	"reflect"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
)

// Hydrate builds one T from the cursor's current row. Slot i of the target
// is read from ordinal i+1 using the reader that matches its kind, then
// converted to the parameter type. A panic raised by the constructor is
// recovered and reported as ErrRowHydration.
func Hydrate[T any](cur Cursor, tgt *schema.Target) (out T, err error) {
	if tgt == nil || !tgt.Fn.IsValid() {
		return out, errs.Newf(errs.ErrRowHydration, "hydrate", typeName[T](), "no row constructor")
	}
	if w := cur.Width(); w < tgt.Arity() {
		return out, errs.Newf(errs.ErrRowHydration, "hydrate", typeName[T](),
			"row has %d columns, constructor takes %d", w, tgt.Arity())
	}

	args := make([]reflect.Value, tgt.Arity())
	for i, s := range tgt.Slots {
		v, err := readSlot(cur, i+1, s)
		if err != nil {
			return out, errs.Newf(errs.ErrRowHydration, "hydrate", typeName[T](), "parameter %d: %w", i+1, err)
		}
		args[i] = v
	}

	res, err := call(tgt, args)
	if err != nil {
		return out, errs.New(errs.ErrRowHydration, "hydrate", typeName[T](), err)
	}
	return as[T](res)
}

// All drains the cursor. The first failure stops the loop; rows built up to
// that point are returned along with the error.
func All[T any](cur Cursor, tgt *schema.Target) ([]T, error) {
	var out []T
	for cur.Next() {
		v, err := Hydrate[T](cur, tgt)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

func readSlot(cur Cursor, ord int, s schema.Slot) (reflect.Value, error) {
	dst := reflect.New(s.Type).Elem()
	switch s.Kind {
	case schema.SlotInteger:
		n, err := cur.ReadInt(ord)
		if err != nil {
			return dst, err
		}
		return dst, setInt(dst, int64(n))
	case schema.SlotLong:
		n, err := cur.ReadLong(ord)
		if err != nil {
			return dst, err
		}
		return dst, setInt(dst, n)
	case schema.SlotString:
		str, err := cur.ReadString(ord)
		if err != nil {
			return dst, err
		}
		dst.SetString(str)
		return dst, nil
	default:
		v, err := cur.ReadAny(ord)
		if err != nil {
			return dst, err
		}
		return dst, setAny(dst, v)
	}
}

func setInt(dst reflect.Value, n int64) error {
	switch {
	case dst.CanInt():
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	case dst.CanUint():
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))
	default:
		return fmt.Errorf("cannot store integer in %s", dst.Type())
	}
	return nil
}

func setAny(dst reflect.Value, v any) error {
	if v == nil {
		return nil
	}
	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case dst.Kind() == reflect.Pointer && src.Type().ConvertibleTo(dst.Type().Elem()):
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(src.Convert(dst.Type().Elem()))
		dst.Set(p)
	case src.Type().ConvertibleTo(dst.Type()) && !numericToString(src, dst):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot store %T in %s", v, dst.Type())
	}
	return nil
}

// numericToString reports the integer-to-string conversion reflect allows
// but which yields a rune rather than digits.
func numericToString(src, dst reflect.Value) bool {
	return dst.Kind() == reflect.String && (src.CanInt() || src.CanUint())
}

func call(tgt *schema.Target, args []reflect.Value) (res reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row constructor panicked: %v", r)
		}
	}()
	out := tgt.Fn.Call(args)
	if tgt.ReturnsErr && len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}

// as converts the constructor result into T, bridging T and *T.
func as[T any](res reflect.Value) (T, error) {
	var zero T
	want := reflect.TypeOf((*T)(nil)).Elem()
	switch {
	case res.Type() == want:
		return res.Interface().(T), nil
	case res.Kind() == reflect.Pointer && res.Type().Elem() == want:
		if res.IsNil() {
			return zero, errs.Newf(errs.ErrRowHydration, "hydrate", want.String(), "row constructor returned nil")
		}
		return res.Elem().Interface().(T), nil
	case want.Kind() == reflect.Pointer && want.Elem() == res.Type():
		p := reflect.New(res.Type())
		p.Elem().Set(res)
		return p.Interface().(T), nil
	default:
		return zero, errs.Newf(errs.ErrRowHydration, "hydrate", want.String(), "row constructor returns %s", res.Type())
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
