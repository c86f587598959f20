package services

import (
	"context"
	"errors"

	"NexoraPanel/models"
	"NexoraPanel/publishers"
)

var ErrUnknownModule = errors.New("unknown module")

// Panel is what the HTTP layer talks to: the configured module runners, the
// direct posting engine and the registry that tracks their runs.
type Panel struct {
	order    []string
	runners  map[string]*BatchRunner
	cycle    *CycleEngine
	registry *Registry
}

func NewPanel(modules []models.ModuleConfig, resolver publishers.PageResolver, poster publishers.PagePoster, imageDir string, registry *Registry, metrics *Metrics) *Panel {
	p := &Panel{
		order:    make([]string, 0, len(modules)),
		runners:  make(map[string]*BatchRunner, len(modules)),
		cycle:    NewCycleEngine(resolver, NewDelivery(poster, NewImageLibrary(imageDir), metrics, models.DirectPostingModule)),
		registry: registry,
	}
	for _, cfg := range modules {
		p.order = append(p.order, cfg.Name)
		p.runners[cfg.Name] = NewBatchRunner(cfg, poster, metrics)
	}
	return p
}

func (p *Panel) Registry() *Registry {
	return p.registry
}

func (p *Panel) Cycle() *CycleEngine {
	return p.cycle
}

func (p *Panel) Runner(module string) (*BatchRunner, error) {
	runner, ok := p.runners[module]
	if !ok {
		return nil, ErrUnknownModule
	}
	return runner, nil
}

// Runners returns the module runners in configuration order.
func (p *Panel) Runners() []*BatchRunner {
	out := make([]*BatchRunner, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.runners[name])
	}
	return out
}

func (p *Panel) Modules() []models.ModuleInfo {
	infos := make([]models.ModuleInfo, 0, len(p.order))
	for _, runner := range p.Runners() {
		cfg := runner.Config()
		infos = append(infos, models.ModuleInfo{
			Config:          cfg,
			IntervalSeconds: int(cfg.Interval.Seconds()),
			State:           p.registry.Status(cfg.Name),
		})
	}
	return infos
}

func (p *Panel) StartModule(module string) (models.ModuleRunState, error) {
	runner, err := p.Runner(module)
	if err != nil {
		return models.ModuleRunState{}, err
	}
	return p.registry.Start(module, func(ctx context.Context, progress ProgressFunc) ([]models.DeliveryResult, error) {
		return nil, runner.Run(ctx, progress)
	})
}

func (p *Panel) StopModule(module string) (models.ModuleRunState, bool, error) {
	if _, err := p.Runner(module); err != nil {
		return models.ModuleRunState{}, false, err
	}
	state, wasRunning := p.registry.Stop(module)
	return state, wasRunning, nil
}

func (p *Panel) StartDirect(req CycleRequest) (models.ModuleRunState, error) {
	return p.registry.Start(models.DirectPostingModule, func(ctx context.Context, progress ProgressFunc) ([]models.DeliveryResult, error) {
		return p.cycle.RunCycle(ctx, req, progress)
	})
}

func (p *Panel) StopDirect() (models.ModuleRunState, bool) {
	return p.registry.Stop(models.DirectPostingModule)
}
