package schema

// ColumnOption adjusts a column declared through a Builder.
type ColumnOption func(*Column)

// PrimaryKey marks the column as the primary key.
func PrimaryKey() ColumnOption { return func(c *Column) { c.PrimaryKey = true } }

// Nullable drops the NOT NULL constraint.
func Nullable() ColumnOption { return func(c *Column) { c.NotNull = false } }

// Default sets the column default.
func Default(v string) ColumnOption { return func(c *Column) { c.Default = &v } }

// Length records the advisory column length.
func Length(n int) ColumnOption { return func(c *Column) { c.Length = n } }

// Builder declares a table without reflection:
//
//	t := schema.NewTable("ROLE").
//		Int("ID", schema.PrimaryKey()).
//		Text("NAME").
//		Table()
type Builder struct {
	t Table
}

// NewTable starts a table declaration.
func NewTable(name string) *Builder {
	return &Builder{t: Table{Name: name}}
}

// Int appends an integer column.
func (b *Builder) Int(name string, opts ...ColumnOption) *Builder {
	return b.add(IntColumn(name), opts)
}

// Text appends a text column.
func (b *Builder) Text(name string, opts ...ColumnOption) *Builder {
	return b.add(TextColumn(name), opts)
}

func (b *Builder) add(c Column, opts []ColumnOption) *Builder {
	for _, o := range opts {
		o(&c)
	}
	b.t.Columns = append(b.t.Columns, c)
	return b
}

// Table returns the declared table. The builder may keep being used; the
// returned descriptor does not alias its column slice.
func (b *Builder) Table() *Table {
	t := b.t
	t.Columns = append([]Column(nil), b.t.Columns...)
	return &t
}
