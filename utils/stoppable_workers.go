package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers runs background loops, such as paced simulations, that share one cancellation.
type StoppableWorkers interface {
	AddWorkers(...func(context.Context))
	Stop()
	Context() context.Context
}

// stoppableWorkers is only handed out as a StoppableWorkers so its WaitGroup is never copied.
type stoppableWorkers struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStoppableWorkers starts each function in its own goroutine with a context that Stop cancels.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	ctx, cancel := context.WithCancel(context.Background())
	sw := &stoppableWorkers{ctx: ctx, cancel: cancel}
	sw.AddWorkers(funcs...)
	return sw
}

// AddWorkers starts more goroutines. It does nothing once Stop has been called.
func (sw *stoppableWorkers) AddWorkers(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.ctx.Err() != nil {
		return
	}
	for _, f := range funcs {
		f := f
		sw.wg.Add(1)
		goutils.PanicCapturingGo(func() {
			defer sw.wg.Done()
			f(sw.ctx)
		})
	}
}

// Stop cancels the workers' context and waits for all of them to return.
func (sw *stoppableWorkers) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cancel()
	sw.wg.Wait()
}

// Context returns the context handed to the workers.
func (sw *stoppableWorkers) Context() context.Context {
	return sw.ctx
}
