package schema

// Condition is one equality predicate. A slice of conditions is combined
// with AND; an empty slice means no filter.
type Condition struct {
	Column Column
	Value  Value
}

// Eq returns a condition on the named column. The column's logical type
// follows the value.
func Eq(column string, v Value) Condition {
	col := TextColumn(column)
	if v.Kind() == KindInt {
		col = IntColumn(column)
	}
	return Condition{Column: col, Value: v}
}

// EqInt returns an integer equality condition.
func EqInt(column string, v int64) Condition { return Eq(column, Int(v)) }

// EqText returns a text equality condition.
func EqText(column string, v string) Condition { return Eq(column, Text(v)) }

// On returns a condition on an existing column descriptor.
func On(col Column, v Value) Condition { return Condition{Column: col, Value: v} }
