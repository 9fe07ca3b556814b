package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/phuslu/log"
)

// SyncState represents the current state of the cache sync.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the outcome of the most recent sync run.
type SyncStatus struct {
	State      SyncState
	LastSync   time.Time
	LastResult string
	Error      error
	Runs       int
}

// Syncer performs one cache sync run.
type Syncer interface {
	SyncIssues(ctx context.Context) (string, error)
}

// syncTimeout is the maximum time allowed for a single sync run.
const syncTimeout = 2 * time.Minute

// defaultInterval applies when the poller is given a non-positive interval.
const defaultInterval = 120 * time.Second

// Poller runs the cache sync on a fixed interval. A failed run is logged
// and reported through Status; it is not retried before the next tick.
type Poller struct {
	syncer    Syncer
	interval  time.Duration
	logger    *log.Logger
	triggerCh chan struct{}

	mu      gosync.Mutex
	running bool
	status  SyncStatus
}

// New creates a Poller for syncer.
func New(syncer Syncer, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Poller{
		syncer:    syncer,
		interval:  interval,
		logger:    logger,
		triggerCh: make(chan struct{}, 1),
	}
}

// Run syncs immediately, then on every tick or Trigger, until ctx is
// done. Only one Run may be active at a time; a second call returns
// immediately.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.syncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.syncOnce(ctx)
		case <-p.triggerCh:
			p.syncOnce(ctx)
		}
	}
}

// Trigger requests an immediate sync. It never blocks; a trigger already
// pending absorbs this one.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the outcome of the most recent run.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) syncOnce(parent context.Context) {
	p.setState(SyncRunning)

	ctx, cancel := context.WithTimeout(parent, syncTimeout)
	defer cancel()

	summary, err := p.syncer.SyncIssues(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.Runs++
	if err != nil {
		p.status.State = SyncError
		p.status.Error = err
		p.logger.Error().Err(err).Msg("scheduled sync failed")
		return
	}

	p.status.State = SyncIdle
	p.status.Error = nil
	p.status.LastResult = summary
	p.status.LastSync = time.Now()
	p.logger.Info().Str("result", summary).Msg("scheduled sync finished")
}

func (p *Poller) setState(state SyncState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = state
}
