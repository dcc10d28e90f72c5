// Package schema defines client-side table schemas: ordered columns with key
// roles and table properties. A Schema converts to the wire format sent to
// the master and can be declared in YAML table files.
package schema

import (
	"fmt"

	"github.com/fastest963/yugabyte-db/master"
)

// DataType names a column type. The names match the ones accepted in YAML.
type DataType string

const (
	Int8      DataType = "int8"
	Int16     DataType = "int16"
	Int32     DataType = "int32"
	Int64     DataType = "int64"
	String    DataType = "string"
	Bool      DataType = "bool"
	Float     DataType = "float"
	Double    DataType = "double"
	Binary    DataType = "binary"
	Timestamp DataType = "timestamp"
	Decimal   DataType = "decimal"
	UUID      DataType = "uuid"
	JSONB     DataType = "jsonb"
)

var wireTypes = map[DataType]master.DataType{
	Int8:      master.DataTypeInt8,
	Int16:     master.DataTypeInt16,
	Int32:     master.DataTypeInt32,
	Int64:     master.DataTypeInt64,
	String:    master.DataTypeString,
	Bool:      master.DataTypeBool,
	Float:     master.DataTypeFloat,
	Double:    master.DataTypeDouble,
	Binary:    master.DataTypeBinary,
	Timestamp: master.DataTypeTimestamp,
	Decimal:   master.DataTypeDecimal,
	UUID:      master.DataTypeUUID,
	JSONB:     master.DataTypeJSONB,
}

// SortOrder of a range key column.
type SortOrder string

const (
	SortDefault SortOrder = ""
	SortAsc     SortOrder = "asc"
	SortDesc    SortOrder = "desc"
)

// Column describes one column of a table.
type Column struct {
	Name       string    `yaml:"name" json:"name"`
	Type       DataType  `yaml:"type" json:"type"`
	Nullable   bool      `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	IsHashKey  bool      `yaml:"hashKey,omitempty" json:"hashKey,omitempty"`
	IsRangeKey bool      `yaml:"rangeKey,omitempty" json:"rangeKey,omitempty"`
	Order      SortOrder `yaml:"order,omitempty" json:"order,omitempty"`
}

// IsKey reports whether the column is part of the primary key.
func (c Column) IsKey() bool {
	return c.IsHashKey || c.IsRangeKey
}

// TableProperties are table-wide settings carried with the schema.
type TableProperties struct {
	// NumTablets is the schema-declared tablet count; 0 leaves it to the client.
	NumTablets        int32 `yaml:"numTablets,omitempty" json:"numTablets,omitempty"`
	DefaultTimeToLive int64 `yaml:"defaultTimeToLive,omitempty" json:"defaultTimeToLive,omitempty"`
	IsTransactional   bool  `yaml:"transactional,omitempty" json:"transactional,omitempty"`
}

// Schema is a validated column layout. Build one with a Builder.
type Schema struct {
	columns    []Column
	properties TableProperties
}

// Columns returns a copy of the columns, key columns first.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Properties returns the table properties.
func (s *Schema) Properties() TableProperties {
	return s.properties
}

// NumKeyColumns returns the number of hash and range key columns.
func (s *Schema) NumKeyColumns() int {
	n := 0
	for _, c := range s.columns {
		if c.IsKey() {
			n++
		}
	}
	return n
}

// DeclaredNumTablets returns the tablet count set in the table properties.
func (s *Schema) DeclaredNumTablets() int32 {
	return s.properties.NumTablets
}

// ToPB converts the schema to its wire form.
func (s *Schema) ToPB() (*master.SchemaPB, error) {
	pb := &master.SchemaPB{
		Columns: make([]master.ColumnSchemaPB, 0, len(s.columns)),
		TableProperties: master.TablePropertiesPB{
			NumTablets:        s.properties.NumTablets,
			DefaultTimeToLive: s.properties.DefaultTimeToLive,
			IsTransactional:   s.properties.IsTransactional,
		},
	}
	for _, c := range s.columns {
		wt, ok := wireTypes[c.Type]
		if !ok {
			return nil, fmt.Errorf("column %q: unsupported type %q", c.Name, c.Type)
		}
		col := master.ColumnSchemaPB{
			Name:       c.Name,
			Type:       wt,
			IsNullable: c.Nullable,
			IsHashKey:  c.IsHashKey,
			IsKey:      c.IsKey(),
		}
		switch c.Order {
		case SortAsc:
			col.SortingType = master.SortingAscending
		case SortDesc:
			col.SortingType = master.SortingDescending
		}
		pb.Columns = append(pb.Columns, col)
	}
	return pb, nil
}
