package activity

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute

// Heartbeat logs the same activity once on Start and then every interval
// until Stop. It is tied to the lifetime of a view, not the process.
//
// Each tick runs in its own goroutine, so a slow store can make ticks
// overlap; completions may land out of order. Failures are logged and
// never reach the view.
type Heartbeat struct {
	svc      *Service
	interval time.Duration
	in       Input

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewHeartbeat prepares a heartbeat for in. A non-positive interval
// means DefaultInterval.
func (s *Service) NewHeartbeat(interval time.Duration, in Input) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Heartbeat{
		svc:      s,
		interval: interval,
		in:       in,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the schedule. ctx supplies the caller identity; canceling
// it stops future ticks just like Stop. Calling Start twice is a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	h.startOnce.Do(func() {
		// Ticks keep the identity but must not die with the request that
		// started them while in flight.
		tickCtx := context.WithoutCancel(ctx)

		h.tick(tickCtx)
		go h.loop(ctx, tickCtx)
	})
}

func (h *Heartbeat) loop(ctx, tickCtx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.tick(tickCtx)
		}
	}
}

func (h *Heartbeat) tick(ctx context.Context) {
	go func() {
		if _, err := h.svc.LogActivity(ctx, h.in); err != nil {
			h.svc.logger.Warn("heartbeat log failed",
				zap.String("activity_type", h.in.ActivityType),
				zap.Error(err),
			)
		}
	}()
}

// Stop cancels future ticks and waits for the schedule loop to exit.
// In-flight logs are left to finish. Safe to call more than once, and
// before Start.
func (h *Heartbeat) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })

	started := true
	h.startOnce.Do(func() { started = false })
	if started {
		<-h.done
	}
}
