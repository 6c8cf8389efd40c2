package uploads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, task *Task) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish in time")
	}
}

func TestScheduleRunsToCompletion(t *testing.T) {
	id := Schedule(Job{
		Kind: "leads",
		Parse: func(ctx context.Context) (interface{}, error) {
			return []string{"row1", "row2", "row3"}, nil
		},
		Process: func(ctx context.Context, parsed interface{}) (*Result, error) {
			rows := parsed.([]string)
			return &Result{
				Processed: len(rows),
				Created:   2,
				Updated:   0,
				Skipped:   1,
				Errors:    []RowError{{Row: 2, Message: "missing ZIP"}},
			}, nil
		},
	})
	require.NotEmpty(t, id)

	task, ok := Get(id)
	require.True(t, ok)
	waitDone(t, task)

	state, res, err := task.Status()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, state)
	require.NotNil(t, res)

	// processed - created - updated == skipped == len(errors)
	assert.Equal(t, res.Skipped, res.Processed-res.Created-res.Updated)
	assert.Equal(t, len(res.Errors), res.Skipped)
}

func TestScheduleReturnsImmediately(t *testing.T) {
	release := make(chan struct{})
	start := time.Now()
	id := Schedule(Job{
		Kind: "quotes",
		Parse: func(ctx context.Context) (interface{}, error) {
			<-release
			return nil, nil
		},
		Process: func(ctx context.Context, parsed interface{}) (*Result, error) {
			return &Result{}, nil
		},
	})
	// Scheduling is fire-and-forget: it must not wait for the phases.
	assert.Less(t, time.Since(start), time.Second)

	// The task survives with no one watching it.
	task, ok := Get(id)
	require.True(t, ok)
	close(release)
	waitDone(t, task)

	state, _, err := task.Status()
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, state)
}

func TestParseTimeoutReportedDistinctly(t *testing.T) {
	id := Schedule(Job{
		Kind: "leads",
		Parse: func(ctx context.Context) (interface{}, error) {
			return nil, context.DeadlineExceeded
		},
		Process: func(ctx context.Context, parsed interface{}) (*Result, error) {
			t.Error("process must not run after a parse timeout")
			return nil, nil
		},
	})
	task, ok := Get(id)
	require.True(t, ok)
	waitDone(t, task)

	state, _, err := task.Status()
	assert.Equal(t, StateFailed, state)
	assert.ErrorIs(t, err, ErrParseTimeout)
}

func TestParseErrorFailsTask(t *testing.T) {
	id := Schedule(Job{
		Kind: "sales",
		Parse: func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("file has no data rows")
		},
		Process: func(ctx context.Context, parsed interface{}) (*Result, error) {
			return &Result{}, nil
		},
	})
	task, _ := Get(id)
	waitDone(t, task)

	state, _, err := task.Status()
	assert.Equal(t, StateFailed, state)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrParseTimeout)
}

func TestOnCompleteFires(t *testing.T) {
	fired := make(chan *Result, 1)
	Schedule(Job{
		Kind: "leads",
		Parse: func(ctx context.Context) (interface{}, error) {
			return nil, nil
		},
		Process: func(ctx context.Context, parsed interface{}) (*Result, error) {
			return &Result{Processed: 1, Created: 1}, nil
		},
		OnComplete: func(id string, res *Result, err error) {
			fired <- res
		},
	})

	select {
	case res := <-fired:
		assert.Equal(t, 1, res.Created)
	case <-time.After(5 * time.Second):
		t.Fatal("OnComplete did not fire")
	}
}

func TestDispose(t *testing.T) {
	release := make(chan struct{})
	id := Schedule(Job{
		Kind: "leads",
		Parse: func(ctx context.Context) (interface{}, error) {
			<-release
			return nil, nil
		},
		Process: func(ctx context.Context, parsed interface{}) (*Result, error) {
			return &Result{}, nil
		},
	})

	// In-flight tasks cannot be disposed, they run to completion.
	assert.False(t, Dispose(id))

	close(release)
	task, _ := Get(id)
	waitDone(t, task)

	assert.True(t, Dispose(id))
	_, ok := Get(id)
	assert.False(t, ok)

	// Unknown ids are a no-op.
	assert.False(t, Dispose("nope"))
}
