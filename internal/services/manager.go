// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/config"
	"github.com/j-veylop/token-monitor-tui/internal/db"
	"github.com/j-veylop/token-monitor-tui/internal/logger"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/services/usage"
	"github.com/j-veylop/token-monitor-tui/internal/services/watcher"
)

// Store tuning.
const (
	patternWindowDays = 7
	snapshotRetention = 30 * 24 * time.Hour
)

type (
	// UsageUpdatedEvent is emitted when a new usage snapshot is available.
	UsageUpdatedEvent struct {
		Snapshot *usage.Snapshot
		// Pattern is nil until at least one past day is recorded.
		Pattern *models.UsagePattern
	}

	// RefreshingEvent is emitted when ccusage is being queried.
	RefreshingEvent struct{}

	// ActivityEvent is emitted when a session transcript changes on disk.
	ActivityEvent struct {
		Path string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (UsageUpdatedEvent) isServiceEvent() {}
func (RefreshingEvent) isServiceEvent()   {}
func (ActivityEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()        {}

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(title, body string) error
	Alert(title, body string) error
}

type desktopNotifier struct{}

func (desktopNotifier) Notify(title, body string) error { return beeep.Notify(title, body, "") }
func (desktopNotifier) Alert(title, body string) error  { return beeep.Alert(title, body, "") }

// notifyState remembers what was last announced so notifications fire on
// transitions only.
type notifyState struct {
	primed bool
	level  models.WarningLevel
	urgent bool
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	usage       *usage.Service
	watcher     *watcher.Service
	database    *db.DB
	notifier    Notifier
	paths       usage.Paths
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	latest      *usage.Snapshot
	pattern     *models.UsagePattern
	persistedAt time.Time
	pruned      int64
	notified    notifyState
	now         func() time.Time
	startOnce   sync.Once
	closeOnce   sync.Once
}

// NewManager creates a new service manager. Call Start to begin polling.
func NewManager(cfg *config.Config) (*Manager, error) {
	client := usage.NewClient(usage.ClientConfig{
		NodePath:    cfg.NodePath,
		CcusagePath: cfg.CcusagePath,
	})

	var notifier Notifier
	if cfg.DesktopNotifications {
		notifier = desktopNotifier{}
	}

	m, err := newManager(cfg, client, notifier)
	if err != nil {
		return nil, err
	}
	m.paths = client.Paths()

	if cfg.ClaudeDataDir != "" {
		w, err := watcher.New(cfg.ClaudeDataDir, watcher.DefaultDebounce)
		if err != nil {
			logger.Warn("transcript watcher disabled", "path", cfg.ClaudeDataDir, "error", err)
		} else {
			m.watcher = w
		}
	}

	return m, nil
}

// newManager wires the store and usage service without starting them.
func newManager(cfg *config.Config, fetcher usage.Fetcher, notifier Notifier) (*Manager, error) {
	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	usageConfig := usage.DefaultConfig()
	usageConfig.PollInterval = cfg.RefreshInterval
	if cfg.DefaultPeriod != "" {
		usageConfig.Period = cfg.DefaultPeriod
	}

	return &Manager{
		usage:     usage.New(fetcher, usageConfig),
		database:  database,
		notifier:  notifier,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}, nil
}

// Start loads the stored usage pattern, then starts event routing and
// polling. It is safe to call more than once.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		if _, err := m.refreshPattern(); err != nil {
			logger.Warn("failed to load usage pattern", "error", err)
		}
		go m.routeEvents()
		m.usage.Start()
	})
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	var watchEvents <-chan watcher.Event
	if m.watcher != nil {
		watchEvents = m.watcher.Events()
	}

	for {
		select {
		case event := <-m.usage.Events():
			m.handleUsageEvent(event)

		case event := <-watchEvents:
			m.handleWatchEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleUsageEvent(event usage.Event) {
	switch event.Type {
	case usage.EventUsageRefreshing:
		m.broadcast(RefreshingEvent{})

	case usage.EventUsageUpdated:
		if event.Snapshot == nil {
			return
		}
		m.persist(event.Snapshot)

		pattern, err := m.refreshPattern()
		if err != nil {
			logger.Warn("failed to compute usage pattern", "error", err)
		}

		m.mu.Lock()
		m.latest = event.Snapshot
		m.mu.Unlock()

		m.broadcast(UsageUpdatedEvent{Snapshot: event.Snapshot, Pattern: pattern})
		m.checkNotifications(event.Snapshot)

	case usage.EventUsageError:
		m.broadcast(ErrorEvent{Service: "usage", Error: event.Error})
	}
}

func (m *Manager) handleWatchEvent(event watcher.Event) {
	switch event.Type {
	case watcher.EventChanged:
		m.broadcast(ActivityEvent{Path: event.Path})
		m.Refresh()

	case watcher.EventError:
		m.broadcast(ErrorEvent{Service: "watcher", Error: event.Error})
	}
}

// persist records daily history and, once per fetch, a usage snapshot.
func (m *Manager) persist(snap *usage.Snapshot) {
	if err := m.database.UpsertDailyUsage(snap.Daily); err != nil {
		logger.Error("failed to store daily usage", "error", err)
	}

	m.mu.Lock()
	fresh := !snap.FetchedAt.Equal(m.persistedAt)
	m.persistedAt = snap.FetchedAt
	m.mu.Unlock()

	if !fresh || snap.Stats == nil {
		return
	}

	if err := m.database.InsertSnapshot(&models.Snapshot{CapturedAt: snap.FetchedAt, Stats: *snap.Stats}); err != nil {
		logger.Error("failed to store usage snapshot", "error", err)
	}
	if n, err := m.database.PruneSnapshots(snap.FetchedAt.Add(-snapshotRetention)); err != nil {
		logger.Error("failed to prune snapshots", "error", err)
	} else if n > 0 {
		logger.Debug("pruned usage snapshots", "count", n)
		m.mu.Lock()
		m.pruned += n
		m.mu.Unlock()
	}
}

// refreshPattern recomputes the usage pattern from the recorded days
// before today.
func (m *Manager) refreshPattern() (*models.UsagePattern, error) {
	records, err := m.database.GetTrailingDailyUsage(m.now(), patternWindowDays)
	if err != nil {
		return nil, err
	}

	var pattern *models.UsagePattern
	if len(records) > 0 {
		p := analytics.AnalyzeUsagePattern(records)
		pattern = &p
	}

	m.mu.Lock()
	m.pattern = pattern
	m.mu.Unlock()
	return pattern, nil
}

// checkNotifications announces a rise in warning level and the moment the
// urgent gate opens. The first snapshot after start or a period change
// only primes the state.
func (m *Manager) checkNotifications(snap *usage.Snapshot) {
	a := analytics.Assess(snap.Period, snap.Stats, snap.Summary, nil, false)

	m.mu.Lock()
	prev := m.notified
	m.notified = notifyState{primed: true, level: a.Level, urgent: a.Urgent}
	notifier := m.notifier
	m.mu.Unlock()

	if notifier == nil || !prev.primed {
		return
	}

	label := analytics.PeriodLabel(snap.Period)
	if a.Urgent && !prev.urgent {
		body := a.Advanced
		if body == "" {
			body = fmt.Sprintf("Time to limit: %s", a.TimeToLimit)
		}
		if err := notifier.Alert(fmt.Sprintf("Token limit imminent (%s)", label), body); err != nil {
			logger.Warn("failed to send alert", "error", err)
		}
		return
	}

	if a.Level > prev.level && a.Level != models.LevelSafe {
		title := fmt.Sprintf("Token usage %s (%s)", a.Level, label)
		if err := notifier.Notify(title, a.Message); err != nil {
			logger.Warn("failed to send notification", "error", err)
		}
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel. A
// closed channel yields nil.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Refresh asks ccusage for fresh numbers in the background.
func (m *Manager) Refresh() {
	go func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-m.stopChan:
				cancel()
			case <-ctx.Done():
			}
		}()
		_, _ = m.usage.Refresh(ctx)
	}()
}

// RefreshNow queries ccusage synchronously. Used for one-shot reports.
func (m *Manager) RefreshNow(ctx context.Context) (*usage.Snapshot, error) {
	snap, err := m.usage.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	m.persist(snap)
	if _, err := m.refreshPattern(); err != nil {
		logger.Warn("failed to compute usage pattern", "error", err)
	}
	m.mu.Lock()
	m.latest = snap
	m.mu.Unlock()
	return snap, nil
}

// SetPeriod switches the summary period.
func (m *Manager) SetPeriod(p models.Period) {
	m.mu.Lock()
	m.notified = notifyState{}
	m.mu.Unlock()
	m.usage.SetPeriod(p)
}

// Period returns the active summary period.
func (m *Manager) Period() models.Period {
	return m.usage.Period()
}

// Latest returns the most recent snapshot and usage pattern. Either may
// be nil.
func (m *Manager) Latest() (*usage.Snapshot, *models.UsagePattern) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.pattern
}

// LastRecorded returns the newest stored snapshot from a previous run.
func (m *Manager) LastRecorded() (*models.Snapshot, error) {
	return m.database.GetLatestSnapshot()
}

// History returns recorded daily usage for the last days days, today
// included.
func (m *Manager) History(days int) ([]models.DailyUsage, error) {
	if days <= 0 {
		return nil, nil
	}
	now := m.now()
	return m.database.GetDailyUsage(now.AddDate(0, 0, -(days - 1)), now)
}

// SnapshotsSince returns the stored snapshots captured at or after since.
func (m *Manager) SnapshotsSince(since time.Time) ([]models.Snapshot, error) {
	return m.database.GetSnapshotsSince(since)
}

// Paths returns the node and ccusage executables in use.
func (m *Manager) Paths() usage.Paths {
	return m.paths
}

// WatchedDir returns the transcript directory being watched, or "" when
// the watcher is disabled.
func (m *Manager) WatchedDir() string {
	if m.watcher == nil {
		return ""
	}
	return m.watcher.Root()
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.usage.Close(); err != nil {
			errs = append(errs, err)
		}

		if m.watcher != nil {
			if err := m.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		if m.database != nil {
			m.mu.RLock()
			pruned := m.pruned
			m.mu.RUnlock()
			if pruned > 0 {
				if err := m.database.Vacuum(); err != nil {
					logger.Warn("failed to vacuum database", "error", err)
				}
			}
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}
