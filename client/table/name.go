package table

import (
	"github.com/fastest963/yugabyte-db/master"
)

// Namespaces whose tables are created with a single tablet.
var systemNamespaces = map[string]bool{
	"system":             true,
	"system_schema":      true,
	"system_auth":        true,
	"system_distributed": true,
	"system_traces":      true,
	"system_platform":    true,
}

// Name is a table name qualified by its namespace.
// A namespace may be given by name, by id, or both.
type Name struct {
	NamespaceID   string
	NamespaceName string
	TableName     string
}

// NewName returns a Name in the given namespace.
func NewName(namespace, table string) Name {
	return Name{NamespaceName: namespace, TableName: table}
}

// IsSystem reports whether the table lives in a system namespace.
func (n Name) IsSystem() bool {
	return systemNamespaces[n.NamespaceName]
}

// NamespacePB returns the wire namespace identifier.
func (n Name) NamespacePB() master.NamespaceIdentifierPB {
	return master.NamespaceIdentifierPB{ID: n.NamespaceID, Name: n.NamespaceName}
}

func (n Name) String() string {
	ns := n.NamespaceName
	if ns == "" {
		ns = n.NamespaceID
	}
	if ns == "" {
		return n.TableName
	}
	return ns + "." + n.TableName
}
