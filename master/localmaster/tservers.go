package localmaster

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/fastest963/yugabyte-db/master"
	"github.com/google/uuid"
)

// Heartbeat registers a tablet server or refreshes its liveness. An empty
// id registers a new server; the id in use is returned.
func (m *Master) Heartbeat(ctx context.Context, id, host string, readReplica bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}
	ts := master.TabletServerPB{
		UUID:          id,
		Host:          host,
		ReadReplica:   readReplica,
		LastHeartbeat: m.opts.Now(),
	}
	if err := m.update(func(txn *badger.Txn) error {
		return setJSON(txn, tserverKey(id), ts)
	}); err != nil {
		return "", err
	}
	return id, nil
}

// ListTabletServers returns the known tablet servers. A server is alive when
// it heartbeated within TServerTimeout.
func (m *Master) ListTabletServers(ctx context.Context, req *master.ListTabletServersRequest) (*master.ListTabletServersResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.opts.Now()
	resp := &master.ListTabletServersResponse{}
	err := m.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, tserverPrefix, func(_ string, ts master.TabletServerPB) error {
			if req != nil && req.PrimaryOnly && ts.ReadReplica {
				return nil
			}
			ts.Alive = now.Sub(ts.LastHeartbeat) <= m.opts.TServerTimeout
			resp.Servers = append(resp.Servers, ts)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(resp.Servers, func(i, j int) bool { return resp.Servers[i].UUID < resp.Servers[j].UUID })
	return resp, nil
}
