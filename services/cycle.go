package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"NexoraPanel/models"
	"NexoraPanel/publishers"
)

const (
	DefaultRepeats         = 1
	DefaultIntervalSeconds = 60
)

// WaitFunc blocks for d or until ctx is done, whichever comes first.
type WaitFunc func(ctx context.Context, d time.Duration) error

// ProgressFunc receives each delivery result as soon as it is produced.
type ProgressFunc func(models.DeliveryResult)

func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ParseRepeats never rejects input: anything unparsable or below 1 becomes 1.
func ParseRepeats(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultRepeats
	}
	return normalizeRepeats(n)
}

// ParseInterval never rejects input: anything unparsable or below 1 becomes 60.
func ParseInterval(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultIntervalSeconds
	}
	return normalizeInterval(n)
}

func normalizeRepeats(n int) int {
	if n < 1 {
		return DefaultRepeats
	}
	return n
}

func normalizeInterval(n int) int {
	if n < 1 {
		return DefaultIntervalSeconds
	}
	return n
}

type CycleRequest struct {
	UserToken       string
	PageIDs         []string
	Message         string
	ImageURL        string
	Repeats         int
	IntervalSeconds int
}

// CycleEngine delivers one message to a set of pages for a number of rounds.
type CycleEngine struct {
	resolver publishers.PageResolver
	delivery *Delivery
	wait     WaitFunc
	now      func() time.Time
}

func NewCycleEngine(resolver publishers.PageResolver, delivery *Delivery) *CycleEngine {
	return &CycleEngine{
		resolver: resolver,
		delivery: delivery,
		wait:     SleepContext,
		now:      time.Now,
	}
}

// SetWait replaces the interval wait; tests use it to avoid real sleeps.
func (e *CycleEngine) SetWait(wait WaitFunc) {
	e.wait = wait
}

// RunCycle resolves the page directory once, then delivers the message to
// every selected page per round, waiting IntervalSeconds between rounds.
// A directory failure aborts with no results. Cancelling ctx stops the cycle
// before the next page or during a wait; in-flight requests are not aborted.
func (e *CycleEngine) RunCycle(ctx context.Context, req CycleRequest, progress ProgressFunc) ([]models.DeliveryResult, error) {
	repeats := normalizeRepeats(req.Repeats)
	interval := time.Duration(normalizeInterval(req.IntervalSeconds)) * time.Second
	requestCtx := context.WithoutCancel(ctx)

	pages, err := e.resolver.ResolvePages(requestCtx, req.UserToken)
	if err != nil {
		return nil, fmt.Errorf("resolve pages: %w", err)
	}

	post := models.PostRecord{Message: req.Message, ImageFilename: req.ImageURL}
	results := make([]models.DeliveryResult, 0, repeats*len(req.PageIDs))

	for round := 0; round < repeats; round++ {
		for _, pageID := range req.PageIDs {
			if err := ctx.Err(); err != nil {
				return results, err
			}

			var result models.DeliveryResult
			page, ok := pages[pageID]
			if !ok {
				result = models.DeliveryResult{
					PageID:    pageID,
					Status:    models.DeliveryPageNotFound,
					Error:     publishers.ErrPageNotFound.Error(),
					Timestamp: e.now(),
				}
				e.delivery.metrics.ObserveDelivery(e.delivery.module, result.Status)
			} else {
				result = e.delivery.Deliver(requestCtx, page, post)
			}

			results = append(results, result)
			if progress != nil {
				progress(result)
			}
		}

		if round < repeats-1 {
			if err := e.wait(ctx, interval); err != nil {
				return results, err
			}
		}
	}

	return results, nil
}
