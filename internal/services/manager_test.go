package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/token-monitor-tui/internal/config"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/services/usage"
	"github.com/j-veylop/token-monitor-tui/internal/services/watcher"
)

type fakeFetcher struct {
	mu     sync.Mutex
	blocks *usage.BlocksResponse
	daily  *usage.DailyResponse
	err    error
	calls  int
}

func (f *fakeFetcher) Blocks(context.Context) (*usage.BlocksResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.blocks, f.err
}

func (f *fakeFetcher) Daily(context.Context) (*usage.DailyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.daily, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type notification struct {
	alert bool
	title string
	body  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{title: title, body: body})
	return nil
}

func (n *fakeNotifier) Alert(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{alert: true, title: title, body: body})
	return nil
}

func (n *fakeNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

func dateOffset(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func newFixtureFetcher() *fakeFetcher {
	return &fakeFetcher{
		blocks: &usage.BlocksResponse{Blocks: []usage.Block{{
			ID:          "block-1",
			IsActive:    true,
			TotalTokens: 42_000,
			CostUSD:     0.75,
			Models:      []string{"claude-sonnet-4"},
			BurnRate:    &usage.BurnRate{TokensPerMinuteForIndicator: 120},
		}}},
		daily: &usage.DailyResponse{Daily: []usage.DailyEntry{
			{Date: dateOffset(-1), TotalTokens: 400_000, TotalCost: 4},
			{Date: dateOffset(0), TotalTokens: 100_000, TotalCost: 1.5},
		}},
	}
}

func newTestManager(t *testing.T, f usage.Fetcher, n Notifier) *Manager {
	t.Helper()
	cfg := &config.Config{
		DatabasePath:    filepath.Join(t.TempDir(), "test.db"),
		RefreshInterval: time.Hour,
		DefaultPeriod:   models.PeriodDay,
	}
	mgr, err := newManager(cfg, f, n)
	if err != nil {
		t.Fatalf("newManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func waitFor[T ServiceEvent](t *testing.T, ch <-chan ServiceEvent) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-ch:
			if ev, ok := e.(T); ok {
				return ev
			}
		case <-timeout:
			var zero T
			t.Fatalf("timeout waiting for %T", zero)
			return zero
		}
	}
}

func TestNewManager(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:    filepath.Join(tmpDir, "test.db"),
		CcusagePath:     filepath.Join(tmpDir, "ccusage"),
		NodePath:        filepath.Join(tmpDir, "node"),
		ClaudeDataDir:   tmpDir,
		RefreshInterval: time.Minute,
		DefaultPeriod:   models.PeriodWeek,
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	if mgr.WatchedDir() != tmpDir {
		t.Errorf("WatchedDir() = %q, want %q", mgr.WatchedDir(), tmpDir)
	}
	if mgr.Paths().Ccusage != cfg.CcusagePath {
		t.Errorf("Paths().Ccusage = %q, want %q", mgr.Paths().Ccusage, cfg.CcusagePath)
	}
	if mgr.Period() != models.PeriodWeek {
		t.Errorf("Period() = %v, want week", mgr.Period())
	}
	if mgr.notifier != nil {
		t.Error("notifier should be nil when desktop notifications are disabled")
	}
}

func TestNewManager_MissingDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:  filepath.Join(tmpDir, "test.db"),
		ClaudeDataDir: filepath.Join(tmpDir, "missing"),
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	if mgr.WatchedDir() != "" {
		t.Errorf("WatchedDir() = %q, want empty when the directory is missing", mgr.WatchedDir())
	}
}

func TestManager_StartPublishesUsage(t *testing.T) {
	mgr := newTestManager(t, newFixtureFetcher(), nil)

	ch, _ := mgr.Subscribe()
	mgr.Start()

	ev := waitFor[UsageUpdatedEvent](t, ch)
	if ev.Snapshot == nil || ev.Snapshot.Stats == nil {
		t.Fatal("UsageUpdatedEvent without stats")
	}
	if ev.Snapshot.Stats.DailyTokens != 100_000 {
		t.Errorf("DailyTokens = %d, want 100000", ev.Snapshot.Stats.DailyTokens)
	}
	if ev.Pattern == nil {
		t.Fatal("Pattern should be computed from yesterday's stored usage")
	}
	if ev.Pattern.AverageDailyUsage != 400_000 {
		t.Errorf("AverageDailyUsage = %v, want 400000 (today excluded)", ev.Pattern.AverageDailyUsage)
	}

	snap, pattern := mgr.Latest()
	if snap != ev.Snapshot || pattern == nil {
		t.Error("Latest() should return the published snapshot and pattern")
	}

	recorded, err := mgr.LastRecorded()
	if err != nil || recorded == nil {
		t.Fatalf("LastRecorded() = %v, %v", recorded, err)
	}
	if recorded.Stats.CurrentTokens != 42_000 {
		t.Errorf("recorded CurrentTokens = %d, want 42000", recorded.Stats.CurrentTokens)
	}

	history, err := mgr.History(7)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("History(7) = %d records, want 2", len(history))
	}
}

func TestManager_StartTwice(t *testing.T) {
	f := newFixtureFetcher()
	mgr := newTestManager(t, f, nil)

	ch, _ := mgr.Subscribe()
	mgr.Start()
	mgr.Start()
	waitFor[UsageUpdatedEvent](t, ch)

	time.Sleep(50 * time.Millisecond)
	if got := f.callCount(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestManager_UsageError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("ccusage exploded")}
	mgr := newTestManager(t, f, nil)

	ch, _ := mgr.Subscribe()
	mgr.Start()

	ev := waitFor[ErrorEvent](t, ch)
	if ev.Service != "usage" || ev.Error == nil {
		t.Errorf("ErrorEvent = %+v, want usage error", ev)
	}
}

func TestManager_RefreshNow(t *testing.T) {
	mgr := newTestManager(t, newFixtureFetcher(), nil)

	snap, err := mgr.RefreshNow(context.Background())
	if err != nil {
		t.Fatalf("RefreshNow() error = %v", err)
	}
	if snap.Stats.Model != "claude-sonnet-4" {
		t.Errorf("Model = %q, want claude-sonnet-4", snap.Stats.Model)
	}
	if _, pattern := mgr.Latest(); pattern == nil {
		t.Error("RefreshNow() should compute the pattern")
	}

	f := &fakeFetcher{err: errors.New("boom")}
	failing := newTestManager(t, f, nil)
	if _, err := failing.RefreshNow(context.Background()); err == nil {
		t.Error("RefreshNow() should return fetch errors")
	}
}

func TestManager_SetPeriod(t *testing.T) {
	mgr := newTestManager(t, newFixtureFetcher(), nil)
	ch, _ := mgr.Subscribe()
	mgr.Start()
	waitFor[UsageUpdatedEvent](t, ch)

	mgr.SetPeriod(models.PeriodWeek)

	ev := waitFor[UsageUpdatedEvent](t, ch)
	if ev.Snapshot.Period != models.PeriodWeek {
		t.Errorf("Period = %v, want week", ev.Snapshot.Period)
	}
	if ev.Snapshot.Summary == nil || ev.Snapshot.Summary.TotalTokens != 500_000 {
		t.Errorf("Summary = %+v, want 500000 weekly tokens", ev.Snapshot.Summary)
	}
	if mgr.Period() != models.PeriodWeek {
		t.Errorf("Period() = %v, want week", mgr.Period())
	}
}

func daySnapshot(tokens int64) *usage.Snapshot {
	return &usage.Snapshot{
		FetchedAt: time.Now(),
		Period:    models.PeriodDay,
		Stats:     &models.UsageStats{DailyTokens: tokens},
	}
}

func TestManager_CheckNotifications(t *testing.T) {
	n := &fakeNotifier{}
	mgr := newTestManager(t, &fakeFetcher{}, n)

	steps := []struct {
		tokens    int64
		wantSent  int
		wantAlert bool
	}{
		{tokens: 750_000, wantSent: 0},                  // first reading only primes
		{tokens: 760_000, wantSent: 0},                  // same level
		{tokens: 860_000, wantSent: 1},                  // warning -> critical
		{tokens: 500_000, wantSent: 1},                  // drop is silent
		{tokens: 960_000, wantSent: 2, wantAlert: true}, // urgent
		{tokens: 990_000, wantSent: 2},                  // still urgent
	}

	for i, step := range steps {
		mgr.checkNotifications(daySnapshot(step.tokens))
		sent := n.all()
		if len(sent) != step.wantSent {
			t.Fatalf("step %d: sent %d notifications, want %d", i, len(sent), step.wantSent)
		}
		if step.wantSent > 0 && sent[len(sent)-1].alert != step.wantAlert {
			t.Errorf("step %d: alert = %v, want %v", i, sent[len(sent)-1].alert, step.wantAlert)
		}
	}

	if got := n.all()[0].body; got != "🚨 High usage: 86.0%. Monitor your token consumption." {
		t.Errorf("notify body = %q", got)
	}
}

func TestManager_SetPeriodResetsNotifications(t *testing.T) {
	n := &fakeNotifier{}
	mgr := newTestManager(t, &fakeFetcher{}, n)

	mgr.checkNotifications(daySnapshot(100_000))
	mgr.SetPeriod(models.PeriodMonth)
	mgr.checkNotifications(daySnapshot(900_000))

	if sent := n.all(); len(sent) != 0 {
		t.Errorf("sent %v, want nothing right after a period change", sent)
	}
}

func TestManager_WatchEvent(t *testing.T) {
	f := newFixtureFetcher()
	mgr := newTestManager(t, f, nil)
	ch, _ := mgr.Subscribe()

	mgr.handleWatchEvent(watcher.Event{Type: watcher.EventChanged, Path: "/tmp/a.jsonl"})

	ev := waitFor[ActivityEvent](t, ch)
	if ev.Path != "/tmp/a.jsonl" {
		t.Errorf("Path = %q", ev.Path)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if f.callCount() == 0 {
		t.Error("transcript activity should trigger a refresh")
	}

	mgr.handleWatchEvent(watcher.Event{Type: watcher.EventError, Error: errors.New("overflow")})
	if e := waitFor[ErrorEvent](t, ch); e.Service != "watcher" {
		t.Errorf("Service = %q, want watcher", e.Service)
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t, &fakeFetcher{}, nil)

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	mgr.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("Channel should be closed")
	}
}

func TestManager_Broadcast(t *testing.T) {
	mgr := newTestManager(t, &fakeFetcher{}, nil)

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	event := ActivityEvent{Path: "x.jsonl"}
	mgr.broadcast(event)

	select {
	case e := <-ch:
		if e != event {
			t.Errorf("Got event %v, want %v", e, event)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestManager_History(t *testing.T) {
	mgr := newTestManager(t, &fakeFetcher{}, nil)

	if got, err := mgr.History(0); got != nil || err != nil {
		t.Errorf("History(0) = %v, %v, want nil", got, err)
	}

	records := []models.DailyUsage{
		{Date: dateOffset(-10), Tokens: 1},
		{Date: dateOffset(-2), Tokens: 2},
		{Date: dateOffset(0), Tokens: 3},
	}
	if err := mgr.Database().UpsertDailyUsage(records); err != nil {
		t.Fatalf("UpsertDailyUsage() error = %v", err)
	}

	got, err := mgr.History(7)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 2 || got[0].Tokens != 2 || got[1].Tokens != 3 {
		t.Errorf("History(7) = %+v, want last two records", got)
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- RefreshingEvent{}

	if msg := WaitForEvent(ch)(); msg == nil {
		t.Error("WaitForEvent cmd returned nil msg")
	}

	close(ch)
	if msg := WaitForEvent(ch)(); msg != nil {
		t.Errorf("WaitForEvent on closed channel = %v, want nil", msg)
	}
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = UsageUpdatedEvent{}
	var _ ServiceEvent = RefreshingEvent{}
	var _ ServiceEvent = ActivityEvent{}
	var _ ServiceEvent = ErrorEvent{}
}

func TestManager_CloseIdempotent(t *testing.T) {
	mgr := newTestManager(t, &fakeFetcher{}, nil)
	if err := mgr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestManager_PersistPrunesSnapshots(t *testing.T) {
	mgr := newTestManager(t, &fakeFetcher{}, nil)

	old := &models.Snapshot{CapturedAt: time.Now().Add(-2 * snapshotRetention), Stats: models.UsageStats{DailyTokens: 1}}
	if err := mgr.Database().InsertSnapshot(old); err != nil {
		t.Fatalf("InsertSnapshot() error = %v", err)
	}

	mgr.persist(&usage.Snapshot{FetchedAt: time.Now(), Stats: &models.UsageStats{DailyTokens: 5}})

	snaps, err := mgr.SnapshotsSince(time.Time{})
	if err != nil {
		t.Fatalf("SnapshotsSince() error = %v", err)
	}
	if len(snaps) != 1 || snaps[0].Stats.DailyTokens != 5 {
		t.Errorf("SnapshotsSince() = %+v, want only the new snapshot", snaps)
	}
	if mgr.pruned != 1 {
		t.Errorf("pruned = %d, want 1", mgr.pruned)
	}

	// Close vacuums after pruning.
	if err := mgr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
