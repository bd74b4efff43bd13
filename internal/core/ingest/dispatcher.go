package ingest

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

type TaskState string

const (
	TaskPending TaskState = "PENDING"
	TaskStarted TaskState = "STARTED"
	TaskSuccess TaskState = "SUCCESS"
	TaskFailure TaskState = "FAILURE"
)

// TaskStatus is the caller-pollable record of one ingestion job.
type TaskStatus struct {
	State  TaskState `json:"state"`
	Status string    `json:"status"`
}

// Runner is the unit of work a dispatched job executes.
type Runner interface {
	Run(ctx context.Context, path string) error
}

// Dispatcher runs one ingestion job per uploaded file on a bounded queue
// drained by parallel workers. A dispatched job has no mid-flight
// cancellation; it runs to a terminal SUCCESS or FAILURE state. At most one
// job per path is queued or running at a time: the upload handler and the
// uploads watcher both enqueue a fresh upload, and the second enqueue must
// join the first job instead of racing it into the store.
type Dispatcher struct {
	runner Runner
	jobs   chan job

	mu       sync.Mutex
	statuses map[string]TaskStatus
	inflight map[string]string
}

type job struct {
	id   string
	path string
}

// NewDispatcher constructs the dispatcher with a bounded job queue (64).
func NewDispatcher(runner Runner) *Dispatcher {
	return &Dispatcher{
		runner:   runner,
		jobs:     make(chan job, 64),
		statuses: make(map[string]TaskStatus),
		inflight: make(map[string]string),
	}
}

// Start launches numWorkers goroutines reading from the jobs channel.
func (d *Dispatcher) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Dispatcher: worker %d shutting down", w)
					return
				case j := <-d.jobs:
					d.process(ctx, w, j)
				}
			}
		}(w)
	}
}

// Enqueue schedules a file for ingestion and returns the task id to poll.
// A path that is already queued or running is not enqueued again; the
// existing job's task id is returned instead. If the queue is full, this
// call blocks until space frees up.
func (d *Dispatcher) Enqueue(path string) string {
	d.mu.Lock()
	if id, ok := d.inflight[path]; ok {
		d.mu.Unlock()
		return id
	}
	id := uuid.NewString()
	d.inflight[path] = id
	d.statuses[id] = TaskStatus{State: TaskPending, Status: "queued"}
	d.mu.Unlock()

	d.jobs <- job{id: id, path: path}
	return id
}

// Status reports the current state of a task id.
func (d *Dispatcher) Status(id string) (TaskStatus, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.statuses[id]
	return st, ok
}

func (d *Dispatcher) process(ctx context.Context, w int, j job) {
	name := filepath.Base(j.path)
	log.Printf("Dispatcher: worker %d processing %s (task %s)", w, name, j.id)
	d.setStatus(j.id, TaskStarted, "processing "+name)

	if err := d.runner.Run(ctx, j.path); err != nil {
		log.Printf("Dispatcher: task %s failed: %v", j.id, err)
		d.finish(j, TaskFailure, err.Error())
		return
	}
	d.finish(j, TaskSuccess, "file processed and embedded")
}

func (d *Dispatcher) setStatus(id string, state TaskState, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[id] = TaskStatus{State: state, Status: status}
}

// finish records the terminal state and releases the path for re-enqueueing
// in the same critical section, so a poller that sees the terminal state can
// rely on the path no longer being in flight.
func (d *Dispatcher) finish(j job, state TaskState, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[j.id] = TaskStatus{State: state, Status: status}
	delete(d.inflight, j.path)
}
