package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastest963/yugabyte-db/master"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForCreateTableToFinish(t *testing.T) {
	t.Run("ready after polls", func(t *testing.T) {
		fm := newFakeMaster()
		fm.readyAfter = 3
		clock := newFakeClock()
		c, _ := newTestClient(fm, WithClock(clock), WithWaitBackoff(ExponentialBackoff(10*time.Millisecond, 2, time.Second)))

		err := c.WaitForCreateTableToFinish(context.Background(), usersTable, "id-1", clock.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Len(t, fm.polls, 4)
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, clock.sleeps)
	})

	t.Run("not found is polled again", func(t *testing.T) {
		fm := newFakeMaster()
		fm.doneErrs = []error{master.Errorf(master.CodeNotFound, "no table"), master.Errorf(master.CodeNotFound, "no table")}
		clock := newFakeClock()
		c, _ := newTestClient(fm, WithClock(clock))

		err := c.WaitForCreateTableToFinish(context.Background(), usersTable, "id-1", clock.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Len(t, fm.polls, 3)
	})

	t.Run("other errors are returned", func(t *testing.T) {
		fm := newFakeMaster()
		boom := master.Errorf(master.CodeInternal, "catalog unavailable")
		fm.doneErrs = []error{boom}
		clock := newFakeClock()
		c, _ := newTestClient(fm, WithClock(clock))

		err := c.WaitForCreateTableToFinish(context.Background(), usersTable, "id-1", clock.Now().Add(time.Minute))
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrTimeout)
		assert.Len(t, fm.polls, 1)
	})

	t.Run("expired deadline issues no poll", func(t *testing.T) {
		fm := newFakeMaster()
		clock := newFakeClock()
		c, _ := newTestClient(fm, WithClock(clock))

		err := c.WaitForCreateTableToFinish(context.Background(), usersTable, "id-1", clock.Now())
		require.ErrorIs(t, err, ErrTimeout)
		assert.Empty(t, fm.polls)
	})

	t.Run("polls never pass the deadline", func(t *testing.T) {
		fm := newFakeMaster()
		fm.neverReady = true
		clock := newFakeClock()
		c, _ := newTestClient(fm, WithClock(clock), WithWaitBackoff(ExponentialBackoff(100*time.Millisecond, 3, 10*time.Second)))

		deadline := clock.Now().Add(2 * time.Second)
		var pollTimes []time.Time
		c.master = pollRecorder{Client: fm, clock: clock, times: &pollTimes}

		err := c.WaitForCreateTableToFinish(context.Background(), usersTable, "id-1", deadline)
		require.ErrorIs(t, err, ErrTimeout)
		require.NotEmpty(t, pollTimes)
		for _, pt := range pollTimes {
			assert.True(t, pt.Before(deadline), "poll at %v is not before deadline %v", pt, deadline)
		}
		assert.Equal(t, deadline, clock.Now())
	})

	t.Run("by name when id is unknown", func(t *testing.T) {
		fm := newFakeMaster()
		c, _ := newTestClient(fm)
		err := c.WaitForCreateTableToFinish(context.Background(), usersTable, "", time.Now().Add(time.Minute))
		require.NoError(t, err)
		require.Len(t, fm.polls, 1)
		assert.Equal(t, &master.IsCreateTableDoneRequest{
			Namespace: master.NamespaceIdentifierPB{Name: "app"},
			TableName: "users",
		}, fm.polls[0])
	})

	t.Run("context deadline during poll", func(t *testing.T) {
		fm := newFakeMaster()
		c, _ := newTestClient(fm)
		c.master = blockingPoller{fm}
		err := c.WaitForCreateTableToFinish(context.Background(), usersTable, "id-1", time.Now().Add(20*time.Millisecond))
		require.ErrorIs(t, err, ErrTimeout)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

type pollRecorder struct {
	master.Client
	clock *fakeClock
	times *[]time.Time
}

func (p pollRecorder) IsCreateTableDone(ctx context.Context, req *master.IsCreateTableDoneRequest) (*master.IsCreateTableDoneResponse, error) {
	*p.times = append(*p.times, p.clock.Now())
	return p.Client.IsCreateTableDone(ctx, req)
}

type blockingPoller struct {
	master.Client
}

func (blockingPoller) IsCreateTableDone(ctx context.Context, _ *master.IsCreateTableDoneRequest) (*master.IsCreateTableDoneResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(50*time.Millisecond, 2, time.Second)
	assert.Equal(t, 50*time.Millisecond, b(0))
	assert.Equal(t, 100*time.Millisecond, b(1))
	assert.Equal(t, 800*time.Millisecond, b(4))
	assert.Equal(t, time.Second, b(5))
	assert.Equal(t, time.Second, b(1000))
	assert.Equal(t, 7*time.Millisecond, ConstantBackoff(7*time.Millisecond)(99))
}

func TestSystemClockSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, SystemClock.Sleep(ctx, time.Millisecond))
	require.NoError(t, SystemClock.Sleep(ctx, 0))
	cancel()
	require.ErrorIs(t, SystemClock.Sleep(ctx, time.Hour), context.Canceled)
}
