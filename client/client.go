// Package client talks to the catalog (the master) on behalf of applications.
// Its main entry point is TableCreator, a fluent builder that submits a table
// or index creation request and waits for the new table to become usable.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastest963/yugabyte-db/master"
)

// DefaultAdminOperationTimeout bounds admin operations that were not given
// an explicit timeout.
const DefaultAdminOperationTimeout = 60 * time.Second

// New returns a client for the given master.
func New(m master.Client, opts ...Option) *Client {
	c := &Client{
		master: m,
		opts: clientOpts{
			logger:                slog.Default(),
			adminOperationTimeout: DefaultAdminOperationTimeout,
			clock:                 SystemClock,
			waitBackoff:           DefaultWaitBackoff,
			ycqlShardsPerTServer:  2,
			ysqlShardsPerTServer:  1,
		},
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Client is safe for concurrent use. Builders created from it are not.
type Client struct {
	master master.Client
	opts   clientOpts
}

// NewTableCreator starts a new table creation.
//
// Configure with method chaining, then call Create:
//
//	id, err := c.NewTableCreator().
//		TableName(table.NewName("app", "users")).
//		Schema(s).
//		NumTablets(4).
//		Create(ctx)
func (c *Client) NewTableCreator() *TableCreator {
	return &TableCreator{client: c, tableType: master.TableTypeYQL, wait: true}
}

// DefaultAdminOperationTimeout returns the timeout used by operations that
// were not given one.
func (c *Client) DefaultAdminOperationTimeout() time.Duration {
	return c.opts.adminOperationTimeout
}

// NumTabletsForUserTable recommends a tablet count for a new user table,
// scaling with the number of live tablet servers.
func (c *Client) NumTabletsForUserTable(ctx context.Context, tableType master.TableType) (int32, error) {
	resp, err := c.master.ListTabletServers(ctx, &master.ListTabletServersRequest{PrimaryOnly: true})
	if err != nil {
		return 0, fmt.Errorf("list tablet servers: %w", err)
	}
	live := resp.LiveCount()
	if live == 0 {
		return 0, master.Errorf(master.CodeServiceUnavailable, "no live tablet servers to size %s", tableType)
	}
	perServer := c.opts.ycqlShardsPerTServer
	if tableType == master.TableTypePGSQL {
		perServer = c.opts.ysqlShardsPerTServer
	}
	return int32(live) * perServer, nil
}

type clientOpts struct {
	logger                *slog.Logger
	suppressCreatedLogs   bool
	adminOperationTimeout time.Duration
	clock                 Clock
	waitBackoff           BackoffFunc
	ycqlShardsPerTServer  int32
	ysqlShardsPerTServer  int32
}

type Option func(*clientOpts)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOpts) {
		o.logger = l
	}
}

// WithSuppressCreatedLogs disables the informational record logged after a
// table is created.
func WithSuppressCreatedLogs(suppress bool) Option {
	return func(o *clientOpts) {
		o.suppressCreatedLogs = suppress
	}
}

// WithDefaultAdminOperationTimeout overrides [DefaultAdminOperationTimeout].
func WithDefaultAdminOperationTimeout(d time.Duration) Option {
	return func(o *clientOpts) {
		if d > 0 {
			o.adminOperationTimeout = d
		}
	}
}

// WithClock replaces the time source used for deadlines and poll sleeps.
func WithClock(c Clock) Option {
	return func(o *clientOpts) {
		o.clock = c
	}
}

// WithWaitBackoff sets the delay between readiness polls.
func WithWaitBackoff(fn BackoffFunc) Option {
	return func(o *clientOpts) {
		o.waitBackoff = fn
	}
}

// WithShardsPerTServer sets how many tablets per live tablet server a user
// table gets when no count is given. ysql applies to PGSQL tables, ycql to
// all other types.
func WithShardsPerTServer(ycql, ysql int32) Option {
	return func(o *clientOpts) {
		if ycql > 0 {
			o.ycqlShardsPerTServer = ycql
		}
		if ysql > 0 {
			o.ysqlShardsPerTServer = ysql
		}
	}
}
