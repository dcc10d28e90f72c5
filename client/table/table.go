package table

import (
	"fmt"

	"github.com/fastest963/yugabyte-db/master"
)

// Type is the client-facing table category.
type Type int

const (
	TypeYQL Type = iota
	TypeRedis
	TypePGSQL
	TypeTransactionStatus
)

// ToPB converts the client table type to the wire table type. Unknown
// types map to master.TableTypeUnknown, which Create rejects.
func (t Type) ToPB() master.TableType {
	switch t {
	case TypeYQL:
		return master.TableTypeYQL
	case TypeRedis:
		return master.TableTypeRedis
	case TypePGSQL:
		return master.TableTypePGSQL
	case TypeTransactionStatus:
		return master.TableTypeTransactionStatus
	default:
		return master.TableTypeUnknown
	}
}

// ParseType parses the names used in table files: "yql", "redis", "pgsql",
// "transaction_status".
func ParseType(s string) (Type, error) {
	switch s {
	case "", "yql", "cql":
		return TypeYQL, nil
	case "redis":
		return TypeRedis, nil
	case "pgsql", "ysql":
		return TypePGSQL, nil
	case "transaction_status":
		return TypeTransactionStatus, nil
	default:
		return 0, fmt.Errorf("unknown table type %q", s)
	}
}

// HashSchema selects the hash function for hash partitioning.
type HashSchema int

const (
	HashSchemaMultiColumn HashSchema = iota
	HashSchemaRedis
	HashSchemaPgsql
)

func (h HashSchema) ToPB() master.HashSchema {
	switch h {
	case HashSchemaRedis:
		return master.HashSchemaRedis
	case HashSchemaPgsql:
		return master.HashSchemaPgsql
	default:
		return master.HashSchemaMultiColumn
	}
}

// ParseHashSchema parses "multi_column", "redis" or "pgsql".
func ParseHashSchema(s string) (HashSchema, error) {
	switch s {
	case "multi_column":
		return HashSchemaMultiColumn, nil
	case "redis":
		return HashSchemaRedis, nil
	case "pgsql":
		return HashSchemaPgsql, nil
	default:
		return 0, fmt.Errorf("unknown hash schema %q", s)
	}
}
