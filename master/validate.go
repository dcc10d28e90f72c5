package master

// ValidateCreateTable performs the checks every master applies before
// recording a table.
func ValidateCreateTable(req *CreateTableRequest) error {
	if req == nil {
		return Errorf(CodeInvalidArgument, "request is required")
	}
	if req.Name == "" {
		return Errorf(CodeInvalidArgument, "table name is required")
	}
	if req.Namespace.Key() == "" {
		return Errorf(CodeInvalidArgument, "namespace is required for table %s", req.Name)
	}
	if !req.TableType.Valid() {
		return Errorf(CodeInvalidArgument, "invalid table type %d", req.TableType)
	}
	if len(req.Schema.Columns) == 0 {
		return Errorf(CodeInvalidArgument, "schema of table %s has no columns", req.Name)
	}
	if req.NumTablets <= 0 {
		return Errorf(CodeInvalidArgument, "invalid number of tablets %d", req.NumTablets)
	}
	if ri := req.ReplicationInfo; ri != nil {
		var minReplicas int32
		for _, pb := range ri.LivePlacementInfo.PlacementBlocks {
			minReplicas += pb.MinNumReplicas
		}
		if minReplicas > ri.LivePlacementInfo.NumReplicas {
			return Errorf(CodeInvalidArgument,
				"sum of min replicas per placement block (%d) exceeds total replicas (%d)", minReplicas, ri.LivePlacementInfo.NumReplicas)
		}
	}
	return nil
}

// UpgradeIndexInfo fills IndexInfo from the scalar index fields sent by
// clients that predate it.
func UpgradeIndexInfo(req *CreateTableRequest) *CreateTableRequest {
	if req.IndexInfo != nil || req.IndexedTableID == "" {
		return req
	}
	out := *req
	out.IndexInfo = &IndexInfoPB{
		IndexedTableID: req.IndexedTableID,
		IsLocal:        req.IsLocalIndex,
		IsUnique:       req.IsUniqueIndex,
	}
	return &out
}
