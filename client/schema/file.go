package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the YAML form of a schema.
//
//	columns:
//	  - name: id
//	    type: int64
//	    hashKey: true
//	  - name: name
//	    type: string
//	properties:
//	  numTablets: 4
type Definition struct {
	Columns    []Column        `yaml:"columns" json:"columns"`
	Properties TableProperties `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Build validates the definition and returns the schema.
func (d Definition) Build() (*Schema, error) {
	var b Builder
	for _, c := range d.Columns {
		spec := b.AddColumn(c.Name).Type(c.Type)
		if !c.Nullable {
			spec.NotNull()
		}
		switch {
		case c.IsHashKey:
			spec.HashPrimaryKey()
		case c.IsRangeKey:
			spec.PrimaryKey().Order(c.Order)
		default:
			spec.Order(c.Order)
		}
	}
	b.properties = d.Properties
	return b.Build()
}

// LoadFile reads a YAML schema definition from path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
