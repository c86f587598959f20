package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"NexoraPanel/models"
	"NexoraPanel/utils"

	"github.com/google/uuid"
)

var ErrAlreadyRunning = errors.New("module is already running")

// RunFunc is the body of a background run. Results returned on success are
// kept in the module state; progress is called for every delivery.
type RunFunc func(ctx context.Context, progress ProgressFunc) ([]models.DeliveryResult, error)

type runHandle struct {
	runID         string
	cancel        context.CancelFunc
	done          chan struct{}
	stopRequested bool
}

// Registry tracks one background run per module name: its cancel function,
// its status and a join handle. A module can only be started again after its
// previous run has exited.
type Registry struct {
	mu      sync.Mutex
	states  map[string]*models.ModuleRunState
	handles map[string]*runHandle
	metrics *Metrics
	now     func() time.Time
}

func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{
		states:  make(map[string]*models.ModuleRunState),
		handles: make(map[string]*runHandle),
		metrics: metrics,
		now:     time.Now,
	}
}

func (r *Registry) Start(module string, fn RunFunc) (models.ModuleRunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, alive := r.handles[module]; alive {
		return r.stateLocked(module), ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &runHandle{
		runID:  uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	now := r.now()
	r.handles[module] = h
	r.states[module] = &models.ModuleRunState{
		Module:    module,
		RunID:     h.runID,
		Status:    models.RunRunning,
		StartedAt: &now,
	}
	r.metrics.RunStarted(module)
	utils.WithFields(utils.Fields{"module": module, "run_id": h.runID}).Infof("run started")

	go r.run(ctx, module, h, fn)

	return r.stateLocked(module), nil
}

// Stop cancels the module's run and marks it stopped. It does not wait for
// the run to exit and is a no-op when nothing is running; the returned bool
// reports whether a live run was found.
func (r *Registry) Stop(module string) (models.ModuleRunState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, alive := r.handles[module]
	if !alive {
		return r.stateLocked(module), false
	}
	if !h.stopRequested {
		h.stopRequested = true
		h.cancel()
		now := r.now()
		st := r.states[module]
		st.Status = models.RunStopped
		st.StoppedAt = &now
		utils.WithFields(utils.Fields{"module": module, "run_id": h.runID}).Infof("stop requested")
	}
	return r.stateLocked(module), true
}

// Wait returns a channel closed when the module's current run exits. It is
// already closed when nothing is running.
func (r *Registry) Wait(module string) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, alive := r.handles[module]; alive {
		return h.done
	}
	done := make(chan struct{})
	close(done)
	return done
}

func (r *Registry) Running(module string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, alive := r.handles[module]
	return alive
}

func (r *Registry) Status(module string) models.ModuleRunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(module)
}

func (r *Registry) Snapshot() map[string]models.ModuleRunState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]models.ModuleRunState, len(r.states))
	for module := range r.states {
		out[module] = r.stateLocked(module)
	}
	return out
}

// Shutdown stops every live run and waits for them to exit or for ctx.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	modules := make([]string, 0, len(r.handles))
	for module := range r.handles {
		modules = append(modules, module)
	}
	r.mu.Unlock()

	waits := make([]<-chan struct{}, 0, len(modules))
	for _, module := range modules {
		waits = append(waits, r.Wait(module))
		r.Stop(module)
	}

	for _, done := range waits {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *Registry) stateLocked(module string) models.ModuleRunState {
	st, ok := r.states[module]
	if !ok {
		return models.ModuleRunState{Module: module, Status: models.RunIdle}
	}
	out := *st
	if st.LastResult != nil {
		last := *st.LastResult
		out.LastResult = &last
	}
	return out
}

func (r *Registry) run(ctx context.Context, module string, h *runHandle, fn RunFunc) {
	defer close(h.done)

	progress := func(result models.DeliveryResult) {
		r.mu.Lock()
		defer r.mu.Unlock()
		st, ok := r.states[module]
		if !ok || st.RunID != h.runID {
			return
		}
		if result.Succeeded() {
			st.Delivered++
		} else {
			st.Failed++
		}
		st.LastResult = &result
	}

	results, err := invoke(ctx, fn, progress)
	h.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handles[module] == h {
		delete(r.handles, module)
	}
	st, ok := r.states[module]
	if !ok || st.RunID != h.runID {
		return
	}

	now := r.now()
	log := utils.WithFields(utils.Fields{"module": module, "run_id": h.runID})
	switch {
	case h.stopRequested:
		st.Status = models.RunStopped
		st.Results = results
		log.Infof("run stopped after %d deliveries", st.Delivered+st.Failed)
	case err != nil:
		st.Status = models.RunError
		st.Error = err.Error()
		st.Results = results
		st.CompletedAt = &now
		log.Errorf("run failed: %v", err)
	default:
		st.Status = models.RunCompleted
		st.Results = results
		st.CompletedAt = &now
		log.Infof("run completed with %d results", len(results))
	}
	r.metrics.RunFinished(module, st.Status)
}

func invoke(ctx context.Context, fn RunFunc, progress ProgressFunc) (results []models.DeliveryResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, progress)
}
