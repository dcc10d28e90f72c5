// Package master defines the wire contract between clients and the catalog
// service (the master). The request and response types are plain structs so
// every backend, the Badger-backed local master or the DynamoDB-backed one,
// can serve the same client code.
package master

import (
	"context"
)

// Client is the interface for catalog operations used by table creation.
// It is satisfied by localmaster.Master and ddbmaster.Master.
type Client interface {
	CreateTable(ctx context.Context, req *CreateTableRequest) (*CreateTableResponse, error)
	IsCreateTableDone(ctx context.Context, req *IsCreateTableDoneRequest) (*IsCreateTableDoneResponse, error)
	ListTabletServers(ctx context.Context, req *ListTabletServersRequest) (*ListTabletServersResponse, error)
}
