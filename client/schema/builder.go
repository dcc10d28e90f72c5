package schema

import (
	"errors"
	"fmt"
)

// Builder accumulates columns for a Schema.
//
//	var b schema.Builder
//	b.AddColumn("key").Type(schema.Binary).NotNull().HashPrimaryKey()
//	b.AddColumn("value").Type(schema.String)
//	s, err := b.Build()
type Builder struct {
	columns    []*ColumnSpec
	properties TableProperties
}

// ColumnSpec configures a single column added with Builder.AddColumn.
type ColumnSpec struct {
	col Column
}

// AddColumn appends a nullable column with the given name.
func (b *Builder) AddColumn(name string) *ColumnSpec {
	spec := &ColumnSpec{col: Column{Name: name, Nullable: true}}
	b.columns = append(b.columns, spec)
	return spec
}

// NumTablets declares the tablet count in the table properties.
func (b *Builder) NumTablets(n int32) *Builder {
	b.properties.NumTablets = n
	return b
}

// DefaultTimeToLive sets the table-wide TTL in milliseconds.
func (b *Builder) DefaultTimeToLive(ms int64) *Builder {
	b.properties.DefaultTimeToLive = ms
	return b
}

// Transactional marks the table as using distributed transactions.
func (b *Builder) Transactional(v bool) *Builder {
	b.properties.IsTransactional = v
	return b
}

func (c *ColumnSpec) Type(t DataType) *ColumnSpec {
	c.col.Type = t
	return c
}

func (c *ColumnSpec) NotNull() *ColumnSpec {
	c.col.Nullable = false
	return c
}

func (c *ColumnSpec) Nullable() *ColumnSpec {
	c.col.Nullable = true
	return c
}

// HashPrimaryKey makes the column part of the hash key. Key columns are never null.
func (c *ColumnSpec) HashPrimaryKey() *ColumnSpec {
	c.col.IsHashKey = true
	c.col.IsRangeKey = false
	c.col.Nullable = false
	return c
}

// PrimaryKey makes the column part of the range key.
func (c *ColumnSpec) PrimaryKey() *ColumnSpec {
	c.col.IsRangeKey = true
	c.col.IsHashKey = false
	c.col.Nullable = false
	return c
}

// Order sets the sort order of a range key column.
func (c *ColumnSpec) Order(o SortOrder) *ColumnSpec {
	c.col.Order = o
	return c
}

// Build validates the columns and returns the schema. Hash key columns are
// placed first, then range key columns, then value columns, each group
// keeping the order in which it was added.
func (b *Builder) Build() (*Schema, error) {
	if len(b.columns) == 0 {
		return nil, errors.New("schema has no columns")
	}
	seen := make(map[string]bool, len(b.columns))
	var hash, rng, vals []Column
	for _, spec := range b.columns {
		c := spec.col
		if c.Name == "" {
			return nil, errors.New("column with empty name")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if _, ok := wireTypes[c.Type]; !ok {
			return nil, fmt.Errorf("column %q: unsupported type %q", c.Name, c.Type)
		}
		if c.Order != SortDefault && !c.IsRangeKey {
			return nil, fmt.Errorf("column %q: sort order is only valid on range key columns", c.Name)
		}
		switch {
		case c.IsHashKey:
			hash = append(hash, c)
		case c.IsRangeKey:
			rng = append(rng, c)
		default:
			vals = append(vals, c)
		}
	}
	if len(hash)+len(rng) == 0 {
		return nil, errors.New("schema has no primary key columns")
	}
	if b.properties.NumTablets < 0 {
		return nil, fmt.Errorf("invalid tablet count %d", b.properties.NumTablets)
	}
	cols := make([]Column, 0, len(b.columns))
	cols = append(cols, hash...)
	cols = append(cols, rng...)
	cols = append(cols, vals...)
	return &Schema{columns: cols, properties: b.properties}, nil
}
