package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fastest963/yugabyte-db/master"
)

// fakeMaster records calls and keeps created tables by qualified name.
type fakeMaster struct {
	mu sync.Mutex

	tables   map[string]string // qualified name -> table id
	requests []*master.CreateTableRequest
	polls    []*master.IsCreateTableDoneRequest
	lists    int
	nextID   int

	// createFn replaces the default create behavior when set.
	createFn func(ctx context.Context, req *master.CreateTableRequest) (*master.CreateTableResponse, error)
	// readyAfter is the number of polls answered with Done=false first.
	readyAfter int
	// neverReady keeps every poll answering Done=false.
	neverReady bool
	doneErrs   []error
	servers    []master.TabletServerPB
	listErr    error
}

var _ master.Client = (*fakeMaster)(nil)

func newFakeMaster() *fakeMaster {
	return &fakeMaster{
		tables: make(map[string]string),
		servers: []master.TabletServerPB{
			{UUID: "ts-1", Alive: true},
			{UUID: "ts-2", Alive: true},
			{UUID: "ts-3", Alive: true},
			{UUID: "ts-dead"},
		},
	}
}

func qualified(ns master.NamespaceIdentifierPB, name string) string {
	return ns.Name + "." + name
}

func (m *fakeMaster) CreateTable(ctx context.Context, req *master.CreateTableRequest) (*master.CreateTableResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fn := m.createFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return m.commit(req)
}

// commit stores the table, reporting AlreadyPresent for a known name.
func (m *fakeMaster) commit(req *master.CreateTableRequest) (*master.CreateTableResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := qualified(req.Namespace, req.Name)
	if id, ok := m.tables[key]; ok {
		return &master.CreateTableResponse{TableID: id}, master.Errorf(master.CodeAlreadyPresent, "table %s already exists", key)
	}
	id := req.TableID
	if id == "" {
		m.nextID++
		id = fmt.Sprintf("table-%d", m.nextID)
	}
	m.tables[key] = id
	return &master.CreateTableResponse{TableID: id}, nil
}

func (m *fakeMaster) IsCreateTableDone(ctx context.Context, req *master.IsCreateTableDoneRequest) (*master.IsCreateTableDoneResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls = append(m.polls, req)
	if len(m.doneErrs) > 0 {
		err := m.doneErrs[0]
		m.doneErrs = m.doneErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if m.neverReady || len(m.polls) <= m.readyAfter {
		return &master.IsCreateTableDoneResponse{}, nil
	}
	return &master.IsCreateTableDoneResponse{Done: true}, nil
}

func (m *fakeMaster) ListTabletServers(ctx context.Context, req *master.ListTabletServersRequest) (*master.ListTabletServersResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &master.ListTabletServersResponse{Servers: m.servers}, nil
}

func (m *fakeMaster) lastRequest() *master.CreateTableRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *fakeMaster) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests) + len(m.polls) + m.lists
}

// fakeClock advances only when slept on.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return nil
}

// fakeSchema is a SchemaProvider with controllable conversion.
type fakeSchema struct {
	declared int32
	err      error
}

func (s fakeSchema) ToPB() (*master.SchemaPB, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &master.SchemaPB{
		Columns:         []master.ColumnSchemaPB{{Name: "id", Type: master.DataTypeInt64, IsHashKey: true, IsKey: true}},
		TableProperties: master.TablePropertiesPB{NumTablets: s.declared},
	}, nil
}

func (s fakeSchema) DeclaredNumTablets() int32 { return s.declared }
