package schema

import (
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"

	"ormlite/internal/errs"
)

// Tabler is the table marker: a mapped type names its table.
type Tabler interface {
	TableName() string
}

// RowConstructor is the hydration marker: a mapped type designates the
// function that builds a value from one result row. The returned value must
// be a func whose parameters line up with the mapped columns, in order, and
// which returns the mapped type (or a pointer to it), optionally followed by
// an error.
type RowConstructor interface {
	RowConstructor() any
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// For extracts the table descriptor of T.
func For[T any]() (*Table, error) {
	return ExtractType(reflect.TypeOf((*T)(nil)).Elem())
}

// Extract extracts the table descriptor of the dynamic type of v.
func Extract(v any) (*Table, error) {
	return ExtractType(reflect.TypeOf(v))
}

// ExtractType derives the full table descriptor of a mapped struct type (or a
// pointer to one), row constructor included:
//
//   - the table name comes from TableName(); absent or empty is
//     ErrMissingTableMetadata;
//   - columns are the fields tagged `orm:"..."`, in declaration order;
//   - the row constructor comes from RowConstructor(); absent or malformed
//     is ErrMissingConstructorMetadata, and a parameter count that differs
//     from the column count is ErrArityMismatch.
//
// A struct without tagged fields extracts fine; SQL generation reports it.
func ExtractType(rt reflect.Type) (*Table, error) {
	t, err := ExtractTable(rt)
	if err != nil {
		return nil, err
	}
	if _, err := t.HydrationTarget(); err != nil {
		return nil, err
	}
	return t, nil
}

// ExtractTable derives the table metadata of a mapped struct type: its name
// and columns. Constructor problems do not fail extraction; they are kept on
// the descriptor and reported by HydrationTarget, so a type without a
// RowConstructor still gets DDL.
func ExtractTable(rt reflect.Type) (*Table, error) {
	if rt == nil {
		return nil, errs.Newf(errs.ErrMissingTableMetadata, "extract", "", "nil type")
	}
	base := rt
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	entity := base.String()
	if base.Kind() != reflect.Struct {
		return nil, errs.Newf(errs.ErrMissingTableMetadata, "extract", entity, "%s is not a struct", base.Kind())
	}

	// The pointer method set covers both value and pointer receivers.
	zero := reflect.New(base).Interface()

	tabler, ok := zero.(Tabler)
	if !ok {
		return nil, errs.Newf(errs.ErrMissingTableMetadata, "extract", entity, "type has no TableName method")
	}
	name := strings.TrimSpace(tabler.TableName())
	if name == "" {
		return nil, errs.Newf(errs.ErrMissingTableMetadata, "extract", entity, "TableName returned an empty name")
	}

	t := &Table{
		Name:    name,
		Columns: columns(base),
		GoType:  base,
	}

	tgt, err := target(zero, base)
	switch {
	case err != nil:
		t.targetErr = err
	case tgt.Arity() != len(t.Columns):
		t.targetErr = errs.Newf(errs.ErrArityMismatch, "extract", entity,
			"constructor takes %d parameters, table %s maps %d columns", tgt.Arity(), name, len(t.Columns))
	default:
		t.Target = tgt
	}
	return t, nil
}

// columns scans the declared fields of a struct in order and returns one
// descriptor per tagged field.
func columns(base reflect.Type) []Column {
	var cols []Column
	for i := 0; i < base.NumField(); i++ {
		sf := base.Field(i)
		raw, ok := sf.Tag.Lookup(tagName)
		if !ok {
			continue
		}
		ct := parseTag(raw)
		if ct.omit {
			continue
		}

		name := ct.name
		if name == "" {
			name = inflect.Underscore(sf.Name)
		}
		typ := ReduceType(sf.Type)
		if ct.declType != "" {
			typ = ParseDeclaredType(ct.declType)
		}

		cols = append(cols, Column{
			Name:       name,
			Field:      sf.Name,
			Type:       typ,
			NotNull:    !ct.nullable,
			PrimaryKey: ct.pk,
			Default:    ct.def,
			Length:     ct.length,
		})
	}
	return cols
}

// target resolves and validates the designated row constructor.
func target(zero any, base reflect.Type) (*Target, error) {
	entity := base.String()
	rc, ok := zero.(RowConstructor)
	if !ok {
		return nil, errs.Newf(errs.ErrMissingConstructorMetadata, "extract", entity, "type has no RowConstructor method")
	}
	raw := rc.RowConstructor()
	if raw == nil {
		return nil, errs.Newf(errs.ErrMissingConstructorMetadata, "extract", entity, "RowConstructor returned nil")
	}
	fn := reflect.ValueOf(raw)
	ft := fn.Type()
	if ft.Kind() != reflect.Func || fn.IsNil() {
		return nil, errs.Newf(errs.ErrMissingConstructorMetadata, "extract", entity, "RowConstructor returned %s, want a func", ft)
	}
	if ft.IsVariadic() {
		return nil, errs.Newf(errs.ErrMissingConstructorMetadata, "extract", entity, "row constructor must not be variadic")
	}

	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return nil, errs.Newf(errs.ErrMissingConstructorMetadata, "extract", entity,
			"row constructor %s must return %s or (%s, error)", ft, base, base)
	}
	out := ft.Out(0)
	if out != base && out != reflect.PointerTo(base) {
		return nil, errs.Newf(errs.ErrMissingConstructorMetadata, "extract", entity,
			"row constructor returns %s, want %s or *%s", out, base, base)
	}

	slots := make([]Slot, ft.NumIn())
	for i := range slots {
		in := ft.In(i)
		slots[i] = Slot{Kind: SlotKindOf(in), Type: in}
	}
	return &Target{
		Fn:         fn,
		Slots:      slots,
		Out:        out,
		ReturnsErr: ft.NumOut() == 2,
	}, nil
}
