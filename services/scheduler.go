package services

import (
	"context"
	"fmt"

	"NexoraPanel/utils"

	"github.com/robfig/cron/v3"
)

// Scheduler fires PostOnce for every module that defines a PostSchedule.
// It is independent of the module's recurring run.
type Scheduler struct {
	cron    *cron.Cron
	runners []*BatchRunner
}

func NewScheduler(runners []*BatchRunner) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		runners: runners,
	}
}

// Register adds a cron entry per scheduled module. An invalid expression
// fails with the module name.
func (s *Scheduler) Register() (int, error) {
	count := 0
	for _, runner := range s.runners {
		cfg := runner.Config()
		if cfg.PostSchedule == "" {
			continue
		}

		r := runner
		_, err := s.cron.AddFunc(cfg.PostSchedule, func() {
			ok := r.PostOnce(context.Background())
			utils.WithFields(utils.Fields{"module": r.Config().Name, "success": ok}).Infof("scheduled post fired")
		})
		if err != nil {
			return count, fmt.Errorf("module %s: invalid post schedule %q: %w", cfg.Name, cfg.PostSchedule, err)
		}
		count++
	}
	return count, nil
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	utils.Infof("scheduler started with %d entries", s.Entries())
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
