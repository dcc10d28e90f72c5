// Package ddbmaster keeps catalog records in a DynamoDB table and serves
// the master.Client contract from them. Table placement is done elsewhere;
// the placement process reports progress through MarkRunning and Heartbeat.
//
// All records share one table keyed by the string attribute "pk":
//
//	table#<namespace>.<name>   the table record
//	tableid#<id>               alias from table id to the table record key
//	tserver#<uuid>             tablet server heartbeat
package ddbmaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fastest963/yugabyte-db/master"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by the master.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

const (
	keyAttr         = "pk"
	tablePrefix     = "table#"
	tableIDPrefix   = "tableid#"
	tserverPrefix   = "tserver#"
	stateCreating   = "CREATING"
	stateRunning    = "RUNNING"
	defaultTSExpiry = 60 * time.Second
)

// Options configures the DynamoDB master.
type Options struct {
	// TableName is the DynamoDB table holding the catalog.
	TableName string
	// TServerTimeout is how long a tablet server stays alive after its last
	// heartbeat. Defaults to 60s.
	TServerTimeout time.Duration
	// Now replaces time.Now.
	Now func() time.Time
	// NewTableID replaces the table id generator.
	NewTableID func() string
}

// Master serves catalog requests from a DynamoDB table.
type Master struct {
	ddb  DynamoDBAPI
	opts Options
}

var _ master.Client = (*Master)(nil)

func New(ddb DynamoDBAPI, opts Options) (*Master, error) {
	if opts.TableName == "" {
		return nil, errors.New("ddbmaster: table name is required")
	}
	if opts.TServerTimeout <= 0 {
		opts.TServerTimeout = defaultTSExpiry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewTableID == nil {
		opts.NewTableID = newTableID
	}
	return &Master{ddb: ddb, opts: opts}, nil
}

func (m *Master) tableName() *string {
	return &m.opts.TableName
}

func keyOf(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{keyAttr: &types.AttributeValueMemberS{Value: pk}}
}

func tableKey(ns master.NamespaceIdentifierPB, name string) string {
	return tablePrefix + ns.Key() + "." + name
}

// translate maps DynamoDB service errors onto catalog codes.
func translate(op string, err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s: %w", op, master.Errorf(master.CodeServiceUnavailable, "catalog table missing: %s", notFound.ErrorMessage()))
	}
	var throttled *types.ProvisionedThroughputExceededException
	if errors.As(err, &throttled) {
		return fmt.Errorf("%s: %w", op, master.Errorf(master.CodeServiceUnavailable, "catalog throttled: %s", throttled.ErrorMessage()))
	}
	return fmt.Errorf("%s: %w", op, err)
}
