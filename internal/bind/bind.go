// Package bind transfers condition values into the positional parameter
// slots of a prepared statement.
package bind

import (
	"ormlite/internal/errs"
	"ormlite/internal/schema"
)

// ParamSetter is the positional parameter interface of a prepared
// statement. Positions are 1-based.
type ParamSetter interface {
	SetInt(pos int, v int64) error
	SetText(pos int, v string) error
}

// Bind sets one parameter per condition: condition i goes to position i+1.
// Binding stops at the first failure.
func Bind(ps ParamSetter, conds []schema.Condition) error {
	for i, c := range conds {
		pos := i + 1
		var err error
		switch c.Value.Kind() {
		case schema.KindInt:
			v, _ := c.Value.Int64()
			err = ps.SetInt(pos, v)
		case schema.KindText:
			v, _ := c.Value.Str()
			err = ps.SetText(pos, v)
		default:
			return errs.Newf(errs.ErrParameterBind, "bind", c.Column.Name,
				"position %d: condition value is unset", pos)
		}
		if err != nil {
			return errs.Newf(errs.ErrParameterBind, "bind", c.Column.Name, "position %d: %w", pos, err)
		}
	}
	return nil
}

// ArgList is a ParamSetter that collects database/sql arguments.
type ArgList []any

// SetInt stores v at pos, growing the list as needed.
func (a *ArgList) SetInt(pos int, v int64) error { return a.set(pos, v) }

// SetText stores v at pos, growing the list as needed.
func (a *ArgList) SetText(pos int, v string) error { return a.set(pos, v) }

func (a *ArgList) set(pos int, v any) error {
	if pos < 1 {
		return errs.Newf(errs.ErrParameterBind, "bind", "", "invalid position %d", pos)
	}
	for len(*a) < pos {
		*a = append(*a, nil)
	}
	(*a)[pos-1] = v
	return nil
}

// Args binds conds into a fresh argument list for database/sql. The result
// holds exactly len(conds) int64 or string values in condition order.
func Args(conds []schema.Condition) ([]any, error) {
	args := make(ArgList, 0, len(conds))
	if err := Bind(&args, conds); err != nil {
		return nil, err
	}
	return args, nil
}

// Values converts dynamically typed boundary values into condition values.
func Values(raw ...any) ([]schema.Value, error) {
	out := make([]schema.Value, len(raw))
	for i, r := range raw {
		v, err := schema.ValueOf(r)
		if err != nil {
			return nil, errs.Newf(errs.ErrParameterBind, "bind", "", "position %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
