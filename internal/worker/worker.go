// Package worker runs fetch pipelines off the interactive caller's
// goroutine. Each submitted task is a sequence of steps executed in order
// by one worker; per task, exactly one terminal result is emitted, whether
// the steps succeed, fail, or panic.
package worker

import (
	"context"
	"fmt"
	"sync"
)

// Step is one unit of a task's pipeline.
type Step func(ctx context.Context) error

// Task is an ordered pipeline of steps for one storage key.
type Task struct {
	Key   string
	Steps []Step
}

// Result is the single terminal signal for one task. Err is nil on
// success. A step failure stops the remaining steps of its task, but
// whatever earlier steps already wrote stays cached: writes are
// incremental and idempotent.
type Result struct {
	Key string
	Err error
}

// Pool fans tasks out across a fixed number of workers. Fire-and-forget
// from the caller's side: submit, then drain Results.
type Pool struct {
	tasks   chan Task
	results chan Result
	wg      sync.WaitGroup
}

// NewPool starts workers goroutines consuming submitted tasks under ctx.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		tasks:   make(chan Task),
		results: make(chan Result, workers),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				p.results <- Result{Key: task.Key, Err: runTask(ctx, task)}
			}
		}()
	}
	return p
}

// Submit queues a task. It blocks while all workers are busy, which is
// acceptable at human-interaction pace.
func (p *Pool) Submit(t Task) {
	p.tasks <- t
}

// Results returns the terminal-signal channel. It is closed after Close
// once every submitted task has reported.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops accepting tasks and closes Results when the in-flight ones
// finish. Call exactly once, after the last Submit.
func (p *Pool) Close() {
	close(p.tasks)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// runTask executes the steps in order, stopping at the first error. A
// panic inside a step is confined to the task and reported as its
// failure, not allowed to take the process down.
func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch pipeline panicked: %v", r)
		}
	}()

	for _, step := range t.Steps {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
