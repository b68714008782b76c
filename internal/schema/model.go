// Package schema holds the metadata model of the mapping pipeline (tables,
// columns, conditions and row hydration targets) and the extractor that
// derives it from annotated Go structs.
//
// Descriptors are immutable once built. They may be shared freely between
// goroutines.
package schema

import (
	"reflect"
	"strings"

	"ormlite/internal/errs"
)

// LogicalType is the reduced SQL type class of a column.
type LogicalType uint8

const (
	// TypeText is the logical type of every non-integral value.
	TypeText LogicalType = iota
	// TypeInteger is the logical type of integral values.
	TypeInteger
)

// String returns the lower-case name of the logical type.
func (t LogicalType) String() string {
	if t == TypeInteger {
		return "integer"
	}
	return "text"
}

// ReduceType maps a Go type onto its logical type: every integral kind is
// TypeInteger, everything else is TypeText. Pointers are dereferenced.
func ReduceType(rt reflect.Type) LogicalType {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	default:
		return TypeText
	}
}

// ParseDeclaredType maps a declared data type name (as written in an orm tag)
// onto its logical type. Unknown names reduce to TypeText.
func ParseDeclaredType(kind string) LogicalType {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"long", "short", "byte", "bigint", "smallint", "tinyint":
		return TypeInteger
	default:
		return TypeText
	}
}

// Column describes one mapped column.
type Column struct {
	Name       string
	Field      string // Go field name; empty for hand-built columns
	Type       LogicalType
	NotNull    bool
	PrimaryKey bool
	Default    *string
	Length     int // advisory only
}

// HasDefault reports whether a default value is declared.
func (c Column) HasDefault() bool { return c.Default != nil && *c.Default != "" }

// IntColumn returns a NOT NULL integer column descriptor.
func IntColumn(name string) Column {
	return Column{Name: name, Type: TypeInteger, NotNull: true}
}

// TextColumn returns a NOT NULL text column descriptor.
func TextColumn(name string) Column {
	return Column{Name: name, Type: TypeText, NotNull: true}
}

// Table describes one mapped table.
type Table struct {
	Name    string
	Columns []Column

	// GoType is the mapped struct type; nil for tables built by hand.
	GoType reflect.Type
	// Target is the designated row constructor; nil for tables built by hand
	// and for types whose constructor could not be resolved.
	Target *Target

	targetErr error
}

// HydrationTarget returns the row constructor used to materialize query
// results. Table metadata alone is enough for DDL; only hydration needs a
// target, so a type without a usable constructor fails here and not at
// extraction.
func (t *Table) HydrationTarget() (*Target, error) {
	if t == nil {
		return nil, errs.New(errs.ErrMissingTableMetadata, "target", "", nil)
	}
	if t.targetErr != nil {
		return nil, t.targetErr
	}
	if t.Target == nil {
		return nil, errs.Newf(errs.ErrMissingConstructorMetadata, "target", t.entity(), "table %s has no row constructor", t.Name)
	}
	return t.Target, nil
}

// Validate reports whether the table can be rendered into SQL.
func (t *Table) Validate() error {
	if t == nil || strings.TrimSpace(t.Name) == "" {
		return errs.New(errs.ErrMissingTableMetadata, "validate", t.entity(), nil)
	}
	if len(t.Columns) == 0 {
		return errs.New(errs.ErrNoColumns, "validate", t.Name, nil)
	}
	return nil
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) entity() string {
	if t == nil {
		return ""
	}
	if t.GoType != nil {
		return t.GoType.String()
	}
	return t.Name
}

// SlotKind is the semantic type of one row constructor parameter.
type SlotKind uint8

const (
	SlotOther SlotKind = iota
	SlotInteger
	SlotLong
	SlotString
)

// String returns the slot kind name.
func (k SlotKind) String() string {
	switch k {
	case SlotInteger:
		return "integer"
	case SlotLong:
		return "long"
	case SlotString:
		return "string"
	default:
		return "other"
	}
}

// SlotKindOf classifies a constructor parameter type.
func SlotKindOf(rt reflect.Type) SlotKind {
	switch rt.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return SlotInteger
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return SlotLong
	case reflect.String:
		return SlotString
	default:
		return SlotOther
	}
}

// Slot is one positional parameter of a row constructor.
type Slot struct {
	Kind SlotKind
	Type reflect.Type
}

// Target is the designated row constructor of a mapped type. Slot i is fed
// from result column i+1.
type Target struct {
	Fn         reflect.Value
	Slots      []Slot
	Out        reflect.Type // first return value
	ReturnsErr bool         // constructor returns (T, error)
}

// Arity returns the number of parameter slots.
func (t *Target) Arity() int { return len(t.Slots) }
