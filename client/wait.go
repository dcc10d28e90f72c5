package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fastest963/yugabyte-db/client/table"
	"github.com/fastest963/yugabyte-db/master"
)

// WaitForCreateTableToFinish polls the master until the table accepts
// operations or the deadline passes. The table is looked up by id, or by
// name when tableID is empty.
//
// No poll is issued at or after the deadline; sleeps between polls are cut
// short to end at the deadline. Expiry returns an error wrapping
// [ErrTimeout]. A NotFound reply is polled again since the master may not
// have made the table visible yet.
func (c *Client) WaitForCreateTableToFinish(ctx context.Context, name table.Name, tableID string, deadline time.Time) error {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	req := &master.IsCreateTableDoneRequest{TableID: tableID}
	if tableID == "" {
		req.Namespace = name.NamespacePB()
		req.TableName = name.TableName
	}
	clock := c.opts.clock
	for attempt := 0; ; attempt++ {
		if !clock.Now().Before(deadline) {
			return fmt.Errorf("%w: waiting for table %s to be ready after %d polls", ErrTimeout, name, attempt)
		}
		resp, err := c.master.IsCreateTableDone(ctx, req)
		switch {
		case err == nil && resp.Done:
			return nil
		case err == nil, master.IsNotFound(err):
		default:
			return fmt.Errorf("waiting for table %s: %w", name, asTimeout(err))
		}

		wait := c.opts.waitBackoff(attempt)
		if remaining := deadline.Sub(clock.Now()); wait > remaining {
			wait = remaining
		}
		if err := clock.Sleep(ctx, wait); err != nil {
			return fmt.Errorf("waiting for table %s: %w", name, asTimeout(err))
		}
	}
}
