package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fastest963/yugabyte-db/client"
	"github.com/fastest963/yugabyte-db/client/schema"
	"github.com/fastest963/yugabyte-db/client/table"
	"github.com/fastest963/yugabyte-db/master"
	"gopkg.in/yaml.v3"
)

// TableFile is the YAML description of a table or index to create.
//
//	namespace: app
//	name: users
//	schema:
//	  columns:
//	    - name: id
//	      type: int64
//	      hashKey: true
type TableFile struct {
	Namespace   string `yaml:"namespace"`
	NamespaceID string `yaml:"namespaceId,omitempty"`
	Name        string `yaml:"name"`
	// Type is yql (default), redis, pgsql or transaction_status.
	Type        string `yaml:"type,omitempty"`
	TableID     string `yaml:"tableId,omitempty"`
	CreatorRole string `yaml:"creatorRole,omitempty"`
	Tablets     int32  `yaml:"tablets,omitempty"`
	HashSchema  string `yaml:"hashSchema,omitempty"`
	PgCatalog   bool   `yaml:"pgCatalog,omitempty"`
	PgShared    bool   `yaml:"pgShared,omitempty"`

	Timeout time.Duration `yaml:"timeout,omitempty"`
	NoWait  bool          `yaml:"noWait,omitempty"`

	Schema         *schema.Definition        `yaml:"schema,omitempty"`
	HashPartitions []HashPartitions          `yaml:"hashPartitions,omitempty"`
	RangeColumns   []string                  `yaml:"rangeColumns,omitempty"`
	Replication    *master.ReplicationInfoPB `yaml:"replication,omitempty"`
	Index          *IndexFile                `yaml:"index,omitempty"`
}

type HashPartitions struct {
	Columns []string `yaml:"columns"`
	Buckets int32    `yaml:"buckets"`
	Seed    int32    `yaml:"seed,omitempty"`
}

// IndexFile makes the table an index on Table.
type IndexFile struct {
	Table              string `yaml:"table"`
	Local              bool   `yaml:"local,omitempty"`
	Unique             bool   `yaml:"unique,omitempty"`
	MangledColumnNames bool   `yaml:"mangledColumnNames,omitempty"`
}

func loadTableFile(path string) (TableFile, error) {
	var tf TableFile
	data, err := os.ReadFile(path)
	if err != nil {
		return tf, err
	}
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return tf, fmt.Errorf("parse %s: %w", path, err)
	}
	return tf, nil
}

// Apply configures tc from the file.
func (tf TableFile) Apply(tc *client.TableCreator) error {
	tt, err := table.ParseType(tf.Type)
	if err != nil {
		return err
	}
	name := table.NewName(tf.Namespace, tf.Name)
	name.NamespaceID = tf.NamespaceID
	tc.TableName(name).TableType(tt)

	if tf.Schema != nil {
		if tt == table.TypeRedis || tt == table.TypeTransactionStatus {
			return fmt.Errorf("schema must not be set for %s tables", tt.ToPB())
		}
		s, err := tf.Schema.Build()
		if err != nil {
			return fmt.Errorf("schema: %w", err)
		}
		tc.Schema(s)
	}
	if tf.HashSchema != "" {
		hs, err := table.ParseHashSchema(tf.HashSchema)
		if err != nil {
			return err
		}
		tc.HashSchema(hs)
	}
	if tf.TableID != "" {
		tc.TableID(tf.TableID)
	}
	if tf.CreatorRole != "" {
		tc.CreatorRoleName(tf.CreatorRole)
	}
	if tf.Tablets > 0 {
		tc.NumTablets(tf.Tablets)
	}
	if tf.PgCatalog {
		tc.IsPgCatalogTable()
	}
	if tf.PgShared {
		tc.IsPgSharedTable()
	}
	for _, hp := range tf.HashPartitions {
		tc.AddHashPartitionsWithSeed(hp.Columns, hp.Buckets, hp.Seed)
	}
	if len(tf.RangeColumns) > 0 {
		tc.SetRangePartitionColumns(tf.RangeColumns)
	}
	if tf.Replication != nil {
		tc.ReplicationInfo(*tf.Replication)
	}
	if ix := tf.Index; ix != nil {
		if ix.Table == "" {
			return fmt.Errorf("index.table is required")
		}
		tc.IndexedTableID(ix.Table).
			IsLocalIndex(ix.Local).
			IsUniqueIndex(ix.Unique).
			UseMangledColumnName(ix.MangledColumnNames)
	}
	if tf.Timeout > 0 {
		tc.Timeout(tf.Timeout)
	}
	if tf.NoWait {
		tc.Wait(false)
	}
	return nil
}
