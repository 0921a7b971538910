package usage

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/token-monitor-tui/internal/logger"
	"github.com/j-veylop/token-monitor-tui/internal/models"
)

// Fetcher runs the ccusage subcommands the service needs.
type Fetcher interface {
	Blocks(ctx context.Context) (*BlocksResponse, error)
	Daily(ctx context.Context) (*DailyResponse, error)
}

// Snapshot is the result of one refresh.
type Snapshot struct {
	FetchedAt time.Time
	Stats     *models.UsageStats
	Summary   *models.UsageSummary
	Period    models.Period
	Daily     []models.DailyUsage
}

// Event represents a usage service event.
type Event struct {
	Error    error
	Snapshot *Snapshot
	Type     EventType
}

// EventType defines the type of usage event.
type EventType int

const (
	// EventUsageUpdated indicates that a new snapshot is available.
	EventUsageUpdated EventType = iota
	// EventUsageRefreshing indicates that ccusage is being queried.
	EventUsageRefreshing
	// EventUsageError indicates that a refresh failed.
	EventUsageError
)

// Config holds configuration for the usage service.
type Config struct {
	PollInterval time.Duration
	Period       models.Period
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: 60 * time.Second,
		Period:       models.PeriodDay,
	}
}

// Service polls ccusage and caches the latest snapshot.
type Service struct {
	fetcher   Fetcher
	latest    *Snapshot
	lastDaily *DailyResponse
	eventChan chan Event
	stopChan  chan struct{}
	now       func() time.Time
	config    Config
	refreshMu sync.Mutex
	mu        sync.RWMutex
	startOnce sync.Once
	closeOnce sync.Once
}

// New creates a usage service. Call Start to begin polling.
func New(fetcher Fetcher, config Config) *Service {
	defaults := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.Period == "" {
		config.Period = defaults.Period
	}

	return &Service{
		fetcher:   fetcher,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		now:       time.Now,
		config:    config,
	}
}

// Start launches the polling goroutine. It is safe to call more than once.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		go s.poll()
	})
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Latest returns the most recent snapshot, or nil before the first
// successful refresh.
func (s *Service) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Period returns the period used for summaries.
func (s *Service) Period() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Period
}

// SetPeriod changes the summary period. When daily data is cached the
// summary is recomputed immediately and an update event is sent.
func (s *Service) SetPeriod(p models.Period) {
	s.mu.Lock()
	s.config.Period = p
	if s.latest == nil || s.lastDaily == nil {
		s.mu.Unlock()
		return
	}
	snap := *s.latest
	snap.Period = p
	snap.Summary = Summarize(s.lastDaily, p, s.now())
	s.latest = &snap
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventUsageUpdated, Snapshot: &snap})
}

// Refresh queries ccusage and publishes a new snapshot. Concurrent calls
// are serialized.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.sendEvent(Event{Type: EventUsageRefreshing})

	blocks, err := s.fetcher.Blocks(ctx)
	if err != nil {
		return nil, s.handleError(err)
	}
	daily, err := s.fetcher.Daily(ctx)
	if err != nil {
		return nil, s.handleError(err)
	}

	now := s.now()
	snap := &Snapshot{
		FetchedAt: now,
		Stats:     BuildStats(blocks, daily, now),
		Daily:     DailyRecords(daily),
	}

	// The period is read under the same lock that publishes the snapshot so
	// a concurrent SetPeriod is never overwritten by a stale summary.
	s.mu.Lock()
	snap.Period = s.config.Period
	snap.Summary = Summarize(daily, snap.Period, now)
	s.latest = snap
	s.lastDaily = daily
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventUsageUpdated, Snapshot: snap})
	return snap, nil
}

func (s *Service) handleError(err error) error {
	logger.Error("failed to refresh usage", "error", err)
	s.sendEvent(Event{Type: EventUsageError, Error: err})
	return err
}

// poll runs the background polling goroutine.
func (s *Service) poll() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	_, _ = s.Refresh(ctx)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the service.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	return nil
}
