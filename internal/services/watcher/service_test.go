package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testDebounce = 50 * time.Millisecond

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "project-a"), 0o750); err != nil {
		t.Fatalf("Mkdir() failed: %v", err)
	}

	svc, err := New(root, testDebounce)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})

	return svc, root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
}

func waitChanged(t *testing.T, svc *Service) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-svc.Events():
			if event.Type == EventChanged {
				return event
			}
		case <-timeout:
			t.Fatal("timeout waiting for EventChanged")
		}
	}
}

func TestNew_Errors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, "x")

	tests := []struct {
		name string
		root string
	}{
		{"Empty", ""},
		{"Missing", filepath.Join(t.TempDir(), "missing")},
		{"NotDir", file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if svc, err := New(tt.root, 0); err == nil {
				_ = svc.Close()
				t.Errorf("New(%q) should fail", tt.root)
			}
		})
	}
}

func TestNew_DefaultDebounce(t *testing.T) {
	svc, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if svc.debounce != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", svc.debounce, DefaultDebounce)
	}
}

func TestWatch_TranscriptWrite(t *testing.T) {
	svc, root := newTestService(t)

	path := filepath.Join(root, "project-a", "session.jsonl")
	writeFile(t, path, `{"type":"assistant"}`+"\n")

	event := waitChanged(t, svc)
	if event.Path != path {
		t.Errorf("Path = %q, want %q", event.Path, path)
	}
}

func TestWatch_DebouncesBursts(t *testing.T) {
	svc, root := newTestService(t)

	path := filepath.Join(root, "project-a", "session.jsonl")
	for i := range 5 {
		writeFile(t, path, string(rune('a'+i)))
		time.Sleep(5 * time.Millisecond)
	}

	waitChanged(t, svc)

	select {
	case event := <-svc.Events():
		if event.Type == EventChanged {
			t.Error("burst of writes produced more than one EventChanged")
		}
	case <-time.After(4 * testDebounce):
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	svc, root := newTestService(t)

	writeFile(t, filepath.Join(root, "project-a", "notes.txt"), "hello")

	select {
	case event := <-svc.Events():
		if event.Type == EventChanged {
			t.Errorf("unexpected EventChanged for %s", event.Path)
		}
	case <-time.After(4 * testDebounce):
	}
}

func TestWatch_NewProjectDirectory(t *testing.T) {
	svc, root := newTestService(t)

	dir := filepath.Join(root, "project-b")
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatalf("Mkdir() failed: %v", err)
	}
	// Let the create event register the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "session.jsonl")
	writeFile(t, path, "{}\n")

	if event := waitChanged(t, svc); event.Path != path {
		t.Errorf("Path = %q, want %q", event.Path, path)
	}
}

func TestClose_Idempotent(t *testing.T) {
	svc, err := New(t.TempDir(), testDebounce)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := svc.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestSendEvent_DropsOldest(t *testing.T) {
	s := &Service{eventChan: make(chan Event, 2)}

	s.sendEvent(Event{Path: "1"})
	s.sendEvent(Event{Path: "2"})
	s.sendEvent(Event{Path: "3"})

	if got := (<-s.eventChan).Path; got != "2" {
		t.Errorf("first event = %q, want 2", got)
	}
	if got := (<-s.eventChan).Path; got != "3" {
		t.Errorf("second event = %q, want 3", got)
	}
}
