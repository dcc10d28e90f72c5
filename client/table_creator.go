package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fastest963/yugabyte-db/client/schema"
	"github.com/fastest963/yugabyte-db/client/table"
	"github.com/fastest963/yugabyte-db/master"
	"golang.org/x/exp/constraints"
)

// Name of the single key column of Redis and transaction status tables.
const redisKeyColumnName = "key"

// SchemaProvider is a table schema that can be sent to the master.
// *schema.Schema implements it.
type SchemaProvider interface {
	ToPB() (*master.SchemaPB, error)
	DeclaredNumTablets() int32
}

var _ SchemaProvider = (*schema.Schema)(nil)

// TableCreator accumulates the description of a table or index and creates
// it with Create. Setters never fail; the description is validated by Create.
// A TableCreator is used once and is not safe for concurrent use.
type TableCreator struct {
	client *Client

	tableName        table.Name
	tableType        master.TableType
	creatorRoleName  string
	tableID          string
	isPgCatalogTable *bool
	isPgSharedTable  *bool
	partitionSchema  master.PartitionSchemaPB
	replicationInfo  *master.ReplicationInfoPB
	indexInfo        master.IndexInfoPB
	schema           SchemaProvider
	numTablets       int32
	timeout          time.Duration
	wait             bool
}

// TableName sets the table or index name and its namespace.
func (tc *TableCreator) TableName(name table.Name) *TableCreator {
	tc.tableName = name
	return tc
}

// TableType sets the table category. Defaults to TypeYQL.
func (tc *TableCreator) TableType(t table.Type) *TableCreator {
	tc.tableType = t.ToPB()
	return tc
}

// CreatorRoleName records the role that owns the new table.
func (tc *TableCreator) CreatorRoleName(role string) *TableCreator {
	tc.creatorRoleName = role
	return tc
}

// TableID requests a specific table id instead of one assigned by the master.
func (tc *TableCreator) TableID(id string) *TableCreator {
	tc.tableID = id
	return tc
}

// IsPgCatalogTable explicitly marks the table as a PostgreSQL catalog table.
// When never called, the master decides.
func (tc *TableCreator) IsPgCatalogTable() *TableCreator {
	v := true
	tc.isPgCatalogTable = &v
	return tc
}

// IsPgSharedTable explicitly marks the table as shared across databases.
// When never called, the master decides.
func (tc *TableCreator) IsPgSharedTable() *TableCreator {
	v := true
	tc.isPgSharedTable = &v
	return tc
}

// HashSchema selects the hash function used for hash partitioning.
func (tc *TableCreator) HashSchema(h table.HashSchema) *TableCreator {
	tc.partitionSchema.HashSchema = h.ToPB()
	return tc
}

// NumTablets sets the tablet count explicitly. It takes precedence over the
// count declared in the schema.
func (tc *TableCreator) NumTablets(n int32) *TableCreator {
	tc.numTablets = n
	return tc
}

// Schema sets the column schema. Must not be set for Redis or transaction
// status tables, which get a single binary key column.
func (tc *TableCreator) Schema(s SchemaProvider) *TableCreator {
	tc.schema = s
	return tc
}

// AddHashPartitions adds a hash bucket schema over columns with seed 0.
func (tc *TableCreator) AddHashPartitions(columns []string, numBuckets int32) *TableCreator {
	return tc.AddHashPartitionsWithSeed(columns, numBuckets, 0)
}

// AddHashPartitionsWithSeed adds a hash bucket schema over columns.
func (tc *TableCreator) AddHashPartitionsWithSeed(columns []string, numBuckets, seed int32) *TableCreator {
	tc.partitionSchema.HashBucketSchemas = append(tc.partitionSchema.HashBucketSchemas, master.HashBucketSchemaPB{
		Columns:    append([]string(nil), columns...),
		NumBuckets: numBuckets,
		Seed:       seed,
	})
	return tc
}

// SetRangePartitionColumns replaces the range partition columns.
func (tc *TableCreator) SetRangePartitionColumns(columns []string) *TableCreator {
	tc.partitionSchema.RangeSchema = &master.RangeSchemaPB{Columns: append([]string(nil), columns...)}
	return tc
}

// ReplicationInfo sets the placement policy for the table's replicas.
func (tc *TableCreator) ReplicationInfo(ri master.ReplicationInfoPB) *TableCreator {
	tc.replicationInfo = &ri
	return tc
}

// IndexedTableID makes this an index on the given table.
func (tc *TableCreator) IndexedTableID(id string) *TableCreator {
	tc.indexInfo.IndexedTableID = id
	return tc
}

// IsLocalIndex marks the index as colocated with its table's tablets.
func (tc *TableCreator) IsLocalIndex(v bool) *TableCreator {
	tc.indexInfo.IsLocal = v
	return tc
}

// IsUniqueIndex makes the index enforce uniqueness of its key.
func (tc *TableCreator) IsUniqueIndex(v bool) *TableCreator {
	tc.indexInfo.IsUnique = v
	return tc
}

// UseMangledColumnName makes the index refer to mangled column names.
func (tc *TableCreator) UseMangledColumnName(v bool) *TableCreator {
	tc.indexInfo.UseMangledColumnName = v
	return tc
}

// Timeout bounds the whole Create call, including the wait for readiness.
// Defaults to the client's admin operation timeout.
func (tc *TableCreator) Timeout(d time.Duration) *TableCreator {
	tc.timeout = d
	return tc
}

// Wait controls whether Create blocks until the table accepts operations.
// Defaults to true.
func (tc *TableCreator) Wait(wait bool) *TableCreator {
	tc.wait = wait
	return tc
}

func (tc *TableCreator) isIndex() bool {
	return tc.indexInfo.IndexedTableID != ""
}

func (tc *TableCreator) objectType() string {
	if tc.isIndex() {
		return "index"
	}
	return "table"
}

// Create submits the table to the master and returns its id.
//
// A master reply saying the table already exists is treated as success so
// that a retried Create, whose first attempt the master honored after the
// client gave up, completes normally. Unless Wait(false) was set, Create
// then polls until the table is ready or the deadline passes, in which case
// the error wraps [ErrTimeout].
func (tc *TableCreator) Create(ctx context.Context) (string, error) {
	c := tc.client
	objectType := tc.objectType()
	if tc.tableName.TableName == "" {
		return "", invalidArgument("missing %s name", objectType)
	}
	if !tc.tableType.Valid() {
		return "", invalidArgument("unknown table type for %s %s", objectType, tc.tableName)
	}

	sch := tc.schema
	if tc.tableType == master.TableTypeRedis || tc.tableType == master.TableTypeTransactionStatus {
		if sch != nil {
			panic(fmt.Sprintf("schema should not be set for %s creation", tc.tableType))
		}
		sch = keyOnlySchema()
	}
	if sch == nil {
		return "", invalidArgument("missing schema")
	}

	numTablets, err := tc.resolveNumTablets(ctx, sch)
	if err != nil {
		return "", err
	}

	req, err := tc.buildRequest(sch, numTablets)
	if err != nil {
		return "", err
	}

	timeout := tc.timeout
	if timeout <= 0 {
		timeout = c.opts.adminOperationTimeout
	}
	deadline := c.opts.clock.Now().Add(timeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	tableID := tc.tableID
	created := true
	resp, err := c.master.CreateTable(ctx, req)
	switch {
	case err == nil:
		tableID = resp.TableID
	case master.IsAlreadyPresent(err):
		created = false
		if resp != nil && resp.TableID != "" {
			tableID = resp.TableID
		}
		c.opts.logger.DebugContext(ctx, "table already present", "object", objectType, "name", tc.tableName.String(), "table_id", tableID)
	default:
		return "", fmt.Errorf("error creating %s %s on the master: %w", objectType, tc.tableName, asTimeout(err))
	}

	// The catalog knowing about the table does not mean it can serve
	// requests yet. Waiting here keeps the first operation on the new table
	// from failing with "table not found".
	if tc.wait {
		if err := c.WaitForCreateTableToFinish(ctx, tc.tableName, tableID, deadline); err != nil {
			return "", err
		}
	}

	if created && !c.opts.suppressCreatedLogs {
		c.opts.logger.InfoContext(ctx, "created "+objectType,
			"name", tc.tableName.String(),
			"table_id", tableID,
			"table_type", tc.tableType.Name())
	}
	return tableID, nil
}

// keyOnlySchema is the schema of Redis and transaction status tables: a
// single binary hash key.
func keyOnlySchema() *schema.Schema {
	var b schema.Builder
	b.AddColumn(redisKeyColumnName).Type(schema.Binary).NotNull().HashPrimaryKey()
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("build key-only schema: %v", err))
	}
	return s
}

// resolveNumTablets picks the tablet count: explicit, then schema-declared,
// then one for system tables, then the recommendation for user tables.
func (tc *TableCreator) resolveNumTablets(ctx context.Context, sch SchemaProvider) (int32, error) {
	log := tc.client.opts.logger
	if n, ok := firstPositive(tc.numTablets, sch.DeclaredNumTablets()); ok {
		log.DebugContext(ctx, "num_tablets: number of tablets specified", "num_tablets", n)
		return n, nil
	}
	if tc.tableName.IsSystem() {
		log.DebugContext(ctx, "num_tablets=1: using one tablet for a system table", "name", tc.tableName.String())
		return 1, nil
	}
	return tc.client.NumTabletsForUserTable(ctx, tc.tableType)
}

func firstPositive[T constraints.Signed](vals ...T) (T, bool) {
	for _, v := range vals {
		if v > 0 {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (tc *TableCreator) buildRequest(sch SchemaProvider, numTablets int32) (*master.CreateTableRequest, error) {
	schemaPB, err := sch.ToPB()
	if err != nil {
		return nil, fmt.Errorf("convert schema of %s %s: %w", tc.objectType(), tc.tableName, err)
	}
	schemaPB.TableProperties.NumTablets = numTablets

	req := &master.CreateTableRequest{
		Name:            tc.tableName.TableName,
		Namespace:       tc.tableName.NamespacePB(),
		TableType:       tc.tableType,
		CreatorRoleName: tc.creatorRoleName,
		TableID:         tc.tableID,
		Schema:          *schemaPB,
		NumTablets:      numTablets,
		PartitionSchema: clonePartitionSchema(tc.partitionSchema),
	}
	if tc.isPgCatalogTable != nil {
		v := *tc.isPgCatalogTable
		req.IsPgCatalogTable = &v
	}
	if tc.isPgSharedTable != nil {
		v := *tc.isPgSharedTable
		req.IsPgSharedTable = &v
	}
	// The master checks that per-block min replicas fit within the total.
	if tc.replicationInfo != nil {
		ri := *tc.replicationInfo
		req.ReplicationInfo = &ri
	}
	if tc.isIndex() {
		info := tc.indexInfo
		req.IndexInfo = &info
		setLegacyIndexFields(req)
	}
	return req, nil
}

// setLegacyIndexFields copies IndexInfo into the scalar fields that masters
// predating IndexInfo read. Remove once no such masters can be reached
// during a rolling upgrade.
func setLegacyIndexFields(req *master.CreateTableRequest) {
	req.IndexedTableID = req.IndexInfo.IndexedTableID
	req.IsLocalIndex = req.IndexInfo.IsLocal
	req.IsUniqueIndex = req.IndexInfo.IsUnique
}

func clonePartitionSchema(ps master.PartitionSchemaPB) master.PartitionSchemaPB {
	out := master.PartitionSchemaPB{HashSchema: ps.HashSchema}
	for _, hb := range ps.HashBucketSchemas {
		hb.Columns = append([]string(nil), hb.Columns...)
		out.HashBucketSchemas = append(out.HashBucketSchemas, hb)
	}
	if ps.RangeSchema != nil {
		out.RangeSchema = &master.RangeSchemaPB{Columns: append([]string(nil), ps.RangeSchema.Columns...)}
	}
	return out
}
