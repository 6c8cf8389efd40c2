package uploads

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"AgencyFunnelCRM/api/constants"
	"AgencyFunnelCRM/internal/logger"
)

// State is the lifecycle of one background upload.
type State string

const (
	StateIdle      State = "idle"
	StateParsing   State = "parsing"
	StateUploading State = "uploading"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// ErrParseTimeout marks a parse phase that exceeded its bound. It is reported
// distinctly from a parse error so the operator knows to retry with a smaller
// file rather than fix data.
var ErrParseTimeout = errors.New(constants.ErrParseTimeout)

// RowError tags a row-level failure with the row's 1-based index.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result summarizes one ingestion run. Invariant:
// Processed - Created - Updated == Skipped == len(Errors).
type Result struct {
	Processed          int        `json:"processed"`
	Created            int        `json:"created"`
	Updated            int        `json:"updated"`
	Skipped            int        `json:"skipped"`
	Errors             []RowError `json:"errors"`
	UnmatchedProducers []string   `json:"unmatched_producers"`
	NeedsAttention     int        `json:"needs_attention"`
	Warnings           []string   `json:"warnings"`
}

// Job describes the two phases of an upload. Parse runs under the parse
// timeout and hands its payload to Process, which does the slow
// reconcile+persist batch. OnComplete fires once, whether the job completed
// or failed.
type Job struct {
	Kind       string
	Parse      func(ctx context.Context) (interface{}, error)
	Process    func(ctx context.Context, parsed interface{}) (*Result, error)
	OnComplete func(id string, res *Result, err error)
}

// Task is the registry entry for one scheduled upload. Its state outlives the
// HTTP request (and any UI dialog) that scheduled it.
type Task struct {
	ID   string
	Kind string

	mu     sync.Mutex
	state  State
	result *Result
	err    error
	done   chan struct{}
}

// Status returns a consistent snapshot of the task.
func (t *Task) Status() (State, *Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.result, t.err
}

// Done is closed when the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Task) finish(res *Result, err error) {
	t.mu.Lock()
	if err != nil {
		t.state = StateFailed
	} else {
		t.state = StateCompleted
	}
	t.result = res
	t.err = err
	t.mu.Unlock()
	close(t.done)
}

// Process-wide registry: upload state must live in a scope broader than the
// request that triggered it.
var (
	regMu    sync.RWMutex
	registry = make(map[string]*Task)
)

// Schedule registers the job and returns its upload id immediately; the work
// runs on a detached goroutine with no cancellation path. The background
// context deliberately ignores the scheduling request's lifetime.
func Schedule(job Job) string {
	task := &Task{
		ID:    uuid.New().String(),
		Kind:  job.Kind,
		state: StateIdle,
		done:  make(chan struct{}),
	}
	regMu.Lock()
	registry[task.ID] = task
	regMu.Unlock()

	go run(task, job)
	return task.ID
}

// Get looks up an in-flight or finished task.
func Get(id string) (*Task, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	t, ok := registry[id]
	return t, ok
}

// Dispose drops a finished task from the registry. In-flight tasks are kept:
// a batch always runs to completion.
func Dispose(id string) bool {
	regMu.Lock()
	defer regMu.Unlock()
	t, ok := registry[id]
	if !ok {
		return false
	}
	select {
	case <-t.done:
		delete(registry, id)
		return true
	default:
		return false
	}
}

func run(task *Task, job Job) {
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogUpload(task.ID, "scheduled kind="+job.Kind)
	}

	task.setState(StateParsing)
	parsed, err := runParse(job)
	if err != nil {
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogUpload(task.ID, "parse failed: "+err.Error())
		}
		task.finish(nil, err)
		if job.OnComplete != nil {
			job.OnComplete(task.ID, nil, err)
		}
		return
	}

	task.setState(StateUploading)
	// The upload phase has no timeout: it runs to completion or reports
	// per-row errors.
	res, err := job.Process(context.Background(), parsed)
	if logger.GlobalLogger != nil {
		if err != nil {
			logger.GlobalLogger.LogUpload(task.ID, "failed: "+err.Error())
		} else {
			logger.GlobalLogger.LogUpload(task.ID, fmt.Sprintf(
				"completed processed=%d created=%d updated=%d skipped=%d",
				res.Processed, res.Created, res.Updated, res.Skipped))
		}
	}
	task.finish(res, err)
	if job.OnComplete != nil {
		job.OnComplete(task.ID, res, err)
	}
}

// runParse bounds the parse phase. A deadline hit is surfaced as
// ErrParseTimeout even if the parse goroutine is still grinding.
func runParse(job Job) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ParseTimeout)
	defer cancel()

	type parseOut struct {
		payload interface{}
		err     error
	}
	ch := make(chan parseOut, 1)
	go func() {
		payload, err := job.Parse(ctx)
		ch <- parseOut{payload, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return out.payload, out.err
	case <-ctx.Done():
		return nil, ErrParseTimeout
	}
}
