// Package localmaster is a single-process catalog backed by BadgerDB. It
// serves the master.Client contract for local development and integration
// tests, persisting table records and tablet server heartbeats on disk or
// in memory.
package localmaster

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fastest963/yugabyte-db/master"
)

// Options configures the local master.
type Options struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger for BadgerDB. If nil, logging is disabled.
	Logger badger.Logger
	// ReadyDelay is how long a new table reports not done before it becomes
	// ready. Zero makes tables ready on the first poll.
	ReadyDelay time.Duration
	// TServerTimeout is how long a tablet server stays alive after its last
	// heartbeat. Defaults to 60s.
	TServerTimeout time.Duration
	// Now replaces time.Now.
	Now func() time.Time
}

// Master is a BadgerDB-backed catalog.
type Master struct {
	db   *badger.DB
	opts Options
}

var _ master.Client = (*Master)(nil)

// Open opens or creates the local master database.
func Open(opts Options) (*Master, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)

	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	if opts.TServerTimeout <= 0 {
		opts.TServerTimeout = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Master{db: db, opts: opts}, nil
}

// Close closes the BadgerDB database.
func (m *Master) Close() error {
	return m.db.Close()
}

// maxConflictRetries bounds re-runs of a read-write transaction that lost a
// race with a concurrent writer.
const maxConflictRetries = 5

// update runs fn in a read-write transaction, re-running it when a
// concurrent transaction committed a conflicting write first.
func (m *Master) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = m.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return master.Errorf(master.CodeServiceUnavailable, "too many conflicting catalog writes: %v", err)
}
