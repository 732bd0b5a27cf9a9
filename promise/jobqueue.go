// Package promise implements the PromiseObject state machine and microtask
// queue: Resolve/Reject/Then, cycle detection, settlement idempotence, and
// FIFO microtask draining.
package promise

import (
	"github.com/voskan/mjsvm/value"
	"github.com/voskan/mjsvm/vm"
)

// Job is one queued microtask: a function value invoked as
// `func.apply(thisVal, argv)` ("ExecuteMicrotasks").
type Job struct {
	Fn value.Value
	This value.Value
	Argv []value.Value
}

// JobQueue is a Context's microtask queue. It implements
// gcheap.RootSource directly (no adapter needed) so a Heap can be told
// `heap.AddRootSource(queue)` once at Context construction.
type JobQueue struct {
	jobs []Job
}

// NewJobQueue constructs an empty queue.
func NewJobQueue() *JobQueue {
	return &JobQueue{}
}

// Enqueue appends a job to the tail, preserving FIFO order.
func (q *JobQueue) Enqueue(j Job) {
	q.jobs = append(q.jobs, j)
}

// Len reports the number of jobs currently queued.
func (q *JobQueue) Len() int { return len(q.jobs) }

// IterateRoots implements gcheap.RootSource: a queued job's closure and
// arguments must survive until the job actually runs, even across a GC
// cycle that happens to land between enqueue and drain.
func (q *JobQueue) IterateRoots(visit func(*value.Value)) {
	for i := range q.jobs {
		visit(&q.jobs[i].Fn)
		visit(&q.jobs[i].This)
		for j := range q.jobs[i].Argv {
			visit(&q.jobs[i].Argv[j])
		}
	}
}

// Drain runs the ExecuteMicrotasks: FIFO until empty, including
// jobs a running job itself enqueues. A job's own exception does not stop
// the drain — Then's reaction thunks (see promise.go) are responsible for
// turning a thrown value into their child promise's rejection, matching "An
// exception from a job becomes the rejection reason of the child promise it
// was invoked on behalf of; it does not terminate the drain."
func (q *JobQueue) Drain(it *vm.Interpreter, stack *vm.Stack) {
	for len(q.jobs) > 0 {
		j := q.jobs[0]
		q.jobs = q.jobs[1:]
		it.Call(stack, j.Fn, j.This, j.Argv)
	}
}
