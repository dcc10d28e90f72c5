package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fastest963/yugabyte-db/master"
	"github.com/fastest963/yugabyte-db/master/ddbmaster"
	"github.com/fastest963/yugabyte-db/master/localmaster"
)

// catalogTableWait bounds how long startup waits for a new catalog table.
const catalogTableWait = 2 * time.Minute

// Master is a catalog backend that also accepts tablet server heartbeats.
type Master interface {
	master.Client
	Heartbeat(ctx context.Context, id, host string, readReplica bool) (string, error)
}

// Backend is an opened catalog. Exactly one of Local and DynamoDB is set.
type Backend struct {
	Master
	Local    *localmaster.Master
	DynamoDB *ddbmaster.Master
	// AWS is the loaded AWS config when DynamoDB is set.
	AWS aws.Config
}

// Close releases the local database, if any.
func (b *Backend) Close() error {
	if b.Local != nil {
		return b.Local.Close()
	}
	return nil
}

// OpenMaster opens the backend selected by cfg.Master.Kind.
func OpenMaster(ctx context.Context, cfg MasterConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Kind {
	case "", MasterLocal:
		m, err := localmaster.Open(localmaster.Options{
			Path:           cfg.Local.DataDir,
			InMemory:       cfg.Local.InMemory,
			Logger:         BadgerLogger(logger),
			ReadyDelay:     cfg.Local.ReadyDelay,
			TServerTimeout: cfg.Local.TServerTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Master: m, Local: m}, nil

	case MasterDynamoDB:
		awsCfg, err := LoadAWSConfig(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		ddb := NewDynamoDBClient(awsCfg, cfg.DynamoDB)
		if cfg.DynamoDB.CreateTable {
			logger.Info("ensuring catalog table", "table", cfg.DynamoDB.TableName)
			if err := ddbmaster.EnsureCatalogTable(ctx, ddb, cfg.DynamoDB.TableName, catalogTableWait); err != nil {
				return nil, err
			}
		}
		m, err := ddbmaster.New(ddb, ddbmaster.Options{
			TableName:      cfg.DynamoDB.TableName,
			TServerTimeout: cfg.DynamoDB.TServerTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Master: m, DynamoDB: m, AWS: awsCfg}, nil
	}
	return nil, fmt.Errorf("unknown master kind %q", cfg.Kind)
}

// LoadAWSConfig loads the shared AWS config, applying the configured region.
func LoadAWSConfig(ctx context.Context, cfg DynamoDBConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewDynamoDBClient builds a DynamoDB client, pointing it at cfg.Endpoint
// when set.
func NewDynamoDBClient(awsCfg aws.Config, cfg DynamoDBConfig) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
}
