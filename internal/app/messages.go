package app

import (
	"time"

	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/services"
	"github.com/j-veylop/token-monitor-tui/internal/services/usage"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// UsageLoadedMsg carries a snapshot to the tabs. Snapshot is nil when no
// refresh has completed yet.
type UsageLoadedMsg struct {
	Snapshot *usage.Snapshot
	Pattern  *models.UsagePattern
}

// RecordedLoadedMsg carries the newest snapshot stored by an earlier run.
type RecordedLoadedMsg struct {
	Snapshot *models.Snapshot
}

// PeriodChangedMsg signals that the reporting period changed.
type PeriodChangedMsg struct {
	Period models.Period
}

// AdaptiveToggledMsg signals that adaptive insights were switched.
type AdaptiveToggledMsg struct {
	Enabled bool
}

// ActivityMsg signals that Claude wrote to a session transcript.
type ActivityMsg struct {
	Path string
	Time time.Time
}

// RefreshMsg requests fresh numbers from ccusage.
type RefreshMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Text  string
	Error error
}
