// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/services/usage"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Usage   bool
	History bool
}

// State is shared by the root model and every tab.
type State struct {
	mu sync.RWMutex

	snapshot *usage.Snapshot
	pattern  *models.UsagePattern
	recorded *models.Snapshot
	period    models.Period
	adaptive  bool
	lastErr   error
	formatter analytics.Formatter

	Loading LoadingState

	LastUpdated  time.Time
	LastActivity time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState returns a state showing today with adaptive insights on.
func NewState() *State {
	return &State{
		period:        models.PeriodDay,
		adaptive:      true,
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetUsage stores a fresh snapshot and the pattern computed with it. It
// ends the initial load and clears any previous error.
func (s *State) SetUsage(snap *usage.Snapshot, pattern *models.UsagePattern) {
	if snap == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	s.pattern = pattern
	s.lastErr = nil
	s.Loading.Initial = false
	s.Loading.Usage = false
	s.LastUpdated = snap.FetchedAt
	if s.LastUpdated.IsZero() {
		s.LastUpdated = time.Now()
	}
}

// Usage returns the latest snapshot and pattern. Either may be nil.
func (s *State) Usage() (*usage.Snapshot, *models.UsagePattern) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.pattern
}

// HasUsage reports whether any snapshot has arrived.
func (s *State) HasUsage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// Assessment derives the dashboard values for the selected period. The
// snapshot summary is used only when it was computed for that period.
func (s *State) Assessment() analytics.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		stats   *models.UsageStats
		summary *models.UsageSummary
	)
	if s.snapshot != nil {
		stats = s.snapshot.Stats
		if s.snapshot.Period == s.period {
			summary = s.snapshot.Summary
		}
	}
	return analytics.Assess(s.period, stats, summary, s.pattern, s.adaptive)
}

// SetRecorded stores the newest snapshot persisted by an earlier run.
func (s *State) SetRecorded(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorded = snap
}

// Recorded returns the snapshot set by SetRecorded.
func (s *State) Recorded() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recorded
}

// SetPeriod selects the period the dashboard reports against.
func (s *State) SetPeriod(p models.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.period = p
}

// Period returns the selected period.
func (s *State) Period() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.period
}

// SetLocale selects the locale used to group token counts.
func (s *State) SetLocale(tag language.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formatter = analytics.NewFormatter(tag)
}

// Formatter returns the token formatter for the configured locale. It
// groups digits the English way until SetLocale is called.
func (s *State) Formatter() analytics.Formatter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formatter
}

// SetAdaptive turns pattern-based insights on or off.
func (s *State) SetAdaptive(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adaptive = enabled
}

// ToggleAdaptive flips adaptive insights and returns the new value.
func (s *State) ToggleAdaptive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adaptive = !s.adaptive
	return s.adaptive
}

// IsAdaptive reports whether adaptive insights are on.
func (s *State) IsAdaptive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adaptive
}

// SetError records the most recent refresh failure. A failure during the
// initial load ends it so the error can be shown.
func (s *State) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.Loading.Usage = false
	if err != nil {
		s.Loading.Initial = false
	}
}

// LastError returns the most recent refresh failure, or nil.
func (s *State) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetActivity records when a session transcript last changed.
func (s *State) SetActivity(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = t
}

// GetLastActivity returns the time set by SetActivity.
func (s *State) GetLastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastActivity
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "usage":
		s.Loading.Usage = loading
	case "history":
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial || s.Loading.Usage || s.Loading.History
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Usage {
		resources = append(resources, "usage")
	}
	if s.Loading.History {
		resources = append(resources, "history")
	}
	return resources
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	now := time.Now()
	id := now.Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: now,
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = activeNotifications(s.notifications)
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeNotifications(s.notifications)
}

func activeNotifications(all []Notification) []Notification {
	active := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time usage was refreshed.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
