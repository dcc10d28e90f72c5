package localmaster

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fastest963/yugabyte-db/master"
	"github.com/google/uuid"
)

// CreateTable records a new table. A table with the same qualified name, or
// a requested id already in use, yields an AlreadyPresent error whose
// response carries the existing table id.
func (m *Master) CreateTable(ctx context.Context, req *master.CreateTableRequest) (*master.CreateTableResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := master.ValidateCreateTable(req); err != nil {
		return nil, err
	}
	req = master.UpgradeIndexInfo(req)

	resp := &master.CreateTableResponse{}
	err := m.update(func(txn *badger.Txn) error {
		nameKey := tableNameKey(req.Namespace, req.Name)
		existing, found, err := getValue(txn, nameKey)
		if err != nil {
			return err
		}
		if found {
			resp.TableID = string(existing)
			return master.Errorf(master.CodeAlreadyPresent, "table %s.%s already exists", namespaceKey(req.Namespace), req.Name)
		}

		id := req.TableID
		if id != "" {
			if _, found, err := getValue(txn, tableIDKey(id)); err != nil {
				return err
			} else if found {
				resp.TableID = id
				return master.Errorf(master.CodeAlreadyPresent, "table id %s already in use", id)
			}
		} else {
			id = newTableID()
		}

		if req.IndexInfo != nil {
			if _, found, err := getValue(txn, tableIDKey(req.IndexInfo.IndexedTableID)); err != nil {
				return err
			} else if !found {
				return master.Errorf(master.CodeNotFound, "indexed table %s not found", req.IndexInfo.IndexedTableID)
			}
		}

		rec := tableRecord{
			ID:        id,
			State:     StateCreating,
			CreatedAt: m.opts.Now(),
			Request:   *req,
		}
		if m.opts.ReadyDelay <= 0 {
			rec.State = StateRunning
		}
		if err := setJSON(txn, tableIDKey(id), rec); err != nil {
			return err
		}
		if err := txn.Set(nameKey, []byte(id)); err != nil {
			return err
		}
		resp.TableID = id
		return nil
	})
	if err != nil {
		if master.IsAlreadyPresent(err) {
			return resp, err
		}
		return nil, err
	}
	return resp, nil
}

// newTableID returns a 32 hex digit id.
func newTableID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsCreateTableDone reports whether the table is ready. Tables become ready
// once ReadyDelay has passed since their creation.
func (m *Master) IsCreateTableDone(ctx context.Context, req *master.IsCreateTableDoneRequest) (*master.IsCreateTableDoneResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := false
	err := m.update(func(txn *badger.Txn) error {
		rec, err := m.lookupTable(txn, req)
		if err != nil {
			return err
		}
		if rec.State == StateRunning {
			done = true
			return nil
		}
		if m.opts.Now().Sub(rec.CreatedAt) < m.opts.ReadyDelay {
			return nil
		}
		rec.State = StateRunning
		done = true
		return setJSON(txn, tableIDKey(rec.ID), rec)
	})
	if err != nil {
		return nil, err
	}
	return &master.IsCreateTableDoneResponse{Done: done}, nil
}

func (m *Master) lookupTable(txn *badger.Txn, req *master.IsCreateTableDoneRequest) (*tableRecord, error) {
	id := req.TableID
	if id == "" {
		val, found, err := getValue(txn, tableNameKey(req.Namespace, req.TableName))
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, master.Errorf(master.CodeNotFound, "table %s.%s not found", namespaceKey(req.Namespace), req.TableName)
		}
		id = string(val)
	}
	var rec tableRecord
	found, err := getJSON(txn, tableIDKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, master.Errorf(master.CodeNotFound, "table id %s not found", id)
	}
	return &rec, nil
}

// TableInfo summarizes a table in the local catalog.
type TableInfo struct {
	ID         string
	Namespace  string
	Name       string
	Type       master.TableType
	State      TableState
	NumTablets int32
	IndexedID  string
	CreatedAt  time.Time
}

// ListTables returns all tables ordered by namespace and name.
func (m *Master) ListTables(ctx context.Context) ([]TableInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tables []TableInfo
	err := m.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, tableIDPrefix, func(_ string, rec tableRecord) error {
			info := TableInfo{
				ID:         rec.ID,
				Namespace:  namespaceKey(rec.Request.Namespace),
				Name:       rec.Request.Name,
				Type:       rec.Request.TableType,
				State:      rec.State,
				NumTablets: rec.Request.NumTablets,
				CreatedAt:  rec.CreatedAt,
			}
			if rec.Request.IndexInfo != nil {
				info.IndexedID = rec.Request.IndexInfo.IndexedTableID
			}
			tables = append(tables, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Namespace != tables[j].Namespace {
			return tables[i].Namespace < tables[j].Namespace
		}
		return tables[i].Name < tables[j].Name
	})
	return tables, nil
}
