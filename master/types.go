package master

import "time"

// TableType is the catalog's table category.
type TableType int

const (
	TableTypeUnknown TableType = 0
	TableTypeYQL     TableType = iota + 1
	TableTypeRedis
	TableTypePGSQL
	TableTypeTransactionStatus
)

// Name returns the wire name of the table type.
func (t TableType) Name() string {
	switch t {
	case TableTypeYQL:
		return "YQL_TABLE_TYPE"
	case TableTypeRedis:
		return "REDIS_TABLE_TYPE"
	case TableTypePGSQL:
		return "PGSQL_TABLE_TYPE"
	case TableTypeTransactionStatus:
		return "TRANSACTION_STATUS_TABLE_TYPE"
	default:
		return "UNKNOWN_TABLE_TYPE"
	}
}

func (t TableType) String() string { return t.Name() }

// Valid reports whether t is a known table type.
func (t TableType) Valid() bool {
	return t >= TableTypeYQL && t <= TableTypeTransactionStatus
}

// DataType is the wire column type.
type DataType int

const (
	DataTypeUnknown DataType = iota
	DataTypeInt8
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeString
	DataTypeBool
	DataTypeFloat
	DataTypeDouble
	DataTypeBinary
	DataTypeTimestamp
	DataTypeDecimal
	DataTypeUUID
	DataTypeJSONB
)

// HashSchema selects the hashing function used for hash partitioning.
type HashSchema int

const (
	HashSchemaUnset HashSchema = iota
	HashSchemaMultiColumn
	HashSchemaRedis
	HashSchemaPgsql
)

// SortingType of a range key column.
type SortingType int

const (
	SortingNotSpecified SortingType = iota
	SortingAscending
	SortingDescending
)

type NamespaceIdentifierPB struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Key returns the name, or the id when the name is unset.
func (ns NamespaceIdentifierPB) Key() string {
	if ns.Name != "" {
		return ns.Name
	}
	return ns.ID
}

type ColumnSchemaPB struct {
	Name        string      `json:"name"`
	Type        DataType    `json:"type"`
	IsNullable  bool        `json:"is_nullable"`
	IsHashKey   bool        `json:"is_hash_key"`
	IsKey       bool        `json:"is_key"`
	SortingType SortingType `json:"sorting_type,omitempty"`
}

type TablePropertiesPB struct {
	NumTablets        int32 `json:"num_tablets,omitempty"`
	DefaultTimeToLive int64 `json:"default_time_to_live,omitempty"`
	IsTransactional   bool  `json:"is_transactional,omitempty"`
}

type SchemaPB struct {
	Columns         []ColumnSchemaPB  `json:"columns"`
	TableProperties TablePropertiesPB `json:"table_properties"`
}

type HashBucketSchemaPB struct {
	Columns    []string `json:"columns"`
	NumBuckets int32    `json:"num_buckets"`
	Seed       int32    `json:"seed"`
}

type RangeSchemaPB struct {
	Columns []string `json:"columns"`
}

type PartitionSchemaPB struct {
	HashSchema        HashSchema           `json:"hash_schema,omitempty"`
	HashBucketSchemas []HashBucketSchemaPB `json:"hash_bucket_schemas,omitempty"`
	RangeSchema       *RangeSchemaPB       `json:"range_schema,omitempty"`
}

type CloudInfoPB struct {
	Cloud  string `json:"placement_cloud" yaml:"cloud"`
	Region string `json:"placement_region" yaml:"region"`
	Zone   string `json:"placement_zone" yaml:"zone"`
}

type PlacementBlockPB struct {
	CloudInfo      CloudInfoPB `json:"cloud_info" yaml:"cloudInfo"`
	MinNumReplicas int32       `json:"min_num_replicas" yaml:"minNumReplicas"`
}

type PlacementInfoPB struct {
	NumReplicas     int32              `json:"num_replicas" yaml:"numReplicas"`
	PlacementBlocks []PlacementBlockPB `json:"placement_blocks,omitempty" yaml:"placementBlocks,omitempty"`
	PlacementUUID   string             `json:"placement_uuid,omitempty" yaml:"placementUUID,omitempty"`
}

type ReplicationInfoPB struct {
	LivePlacementInfo  PlacementInfoPB   `json:"live_replicas" yaml:"liveReplicas"`
	ReadReplicas       []PlacementInfoPB `json:"read_replicas,omitempty" yaml:"readReplicas,omitempty"`
	AffinitizedLeaders []CloudInfoPB     `json:"affinitized_leaders,omitempty" yaml:"affinitizedLeaders,omitempty"`
}

type IndexInfoPB struct {
	IndexedTableID       string `json:"indexed_table_id,omitempty"`
	IsLocal              bool   `json:"is_local,omitempty"`
	IsUnique             bool   `json:"is_unique,omitempty"`
	UseMangledColumnName bool   `json:"use_mangled_column_name,omitempty"`
}

type CreateTableRequest struct {
	Name             string                `json:"name"`
	Namespace        NamespaceIdentifierPB `json:"namespace"`
	TableType        TableType             `json:"table_type"`
	CreatorRoleName  string                `json:"creator_role_name,omitempty"`
	TableID          string                `json:"table_id,omitempty"`
	IsPgCatalogTable *bool                 `json:"is_pg_catalog_table,omitempty"`
	IsPgSharedTable  *bool                 `json:"is_pg_shared_table,omitempty"`
	ReplicationInfo  *ReplicationInfoPB    `json:"replication_info,omitempty"`
	Schema           SchemaPB              `json:"schema"`
	NumTablets       int32                 `json:"num_tablets"`
	PartitionSchema  PartitionSchemaPB     `json:"partition_schema"`
	IndexInfo        *IndexInfoPB          `json:"index_info,omitempty"`

	// Pre-IndexInfo fields. Older masters only read these.
	IndexedTableID string `json:"indexed_table_id,omitempty"`
	IsLocalIndex   bool   `json:"is_local_index,omitempty"`
	IsUniqueIndex  bool   `json:"is_unique_index,omitempty"`
}

// CreateTableResponse carries the assigned table id. On an AlreadyPresent
// error the catalog fills TableID with the id of the existing table.
type CreateTableResponse struct {
	TableID string `json:"table_id"`
}

// IsCreateTableDoneRequest identifies the table by id, or by name when the
// id is empty.
type IsCreateTableDoneRequest struct {
	TableID   string                `json:"table_id,omitempty"`
	Namespace NamespaceIdentifierPB `json:"namespace"`
	TableName string                `json:"table_name,omitempty"`
}

type IsCreateTableDoneResponse struct {
	Done bool `json:"done"`
}

type ListTabletServersRequest struct {
	// PrimaryOnly excludes read replica servers.
	PrimaryOnly bool `json:"primary_only"`
}

type TabletServerPB struct {
	UUID          string    `json:"uuid"`
	Host          string    `json:"host"`
	Alive         bool      `json:"alive"`
	ReadReplica   bool      `json:"read_replica,omitempty"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

type ListTabletServersResponse struct {
	Servers []TabletServerPB `json:"servers"`
}

// LiveCount returns the number of servers reported alive.
func (r *ListTabletServersResponse) LiveCount() int {
	n := 0
	for _, s := range r.Servers {
		if s.Alive {
			n++
		}
	}
	return n
}
