// Package watcher notices new Claude Code transcript activity so usage can
// be refreshed before the next poll.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/token-monitor-tui/internal/logger"
)

// DefaultDebounce groups bursts of transcript writes into one event.
const DefaultDebounce = 2 * time.Second

const transcriptExt = ".jsonl"

// Event represents a watcher event.
type Event struct {
	Type  EventType
	Path  string
	Error error
}

// EventType defines the type of watcher event.
type EventType int

const (
	EventChanged EventType = iota
	EventError
)

// Service watches a data directory and its project subdirectories.
type Service struct {
	mu            sync.Mutex
	root          string
	debounce      time.Duration
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	lastPath      string
	closeOnce     sync.Once
}

// New creates a watcher for root and starts it. A debounce of zero uses
// DefaultDebounce.
func New(root string, debounce time.Duration) (*Service, error) {
	if root == "" {
		return nil, fmt.Errorf("watch directory not set")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", root)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	s := &Service{
		root:      root,
		debounce:  debounce,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Root returns the watched directory.
func (s *Service) Root() string {
	return s.root
}

// startWatcher starts the file system watcher on root and each direct
// subdirectory. Claude Code writes one directory per project.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(s.root); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		logger.Warn("failed to list watch directory", "path", s.root, "error", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			s.addDir(filepath.Join(s.root, entry.Name()))
		}
	}

	go s.watchLoop()
	return nil
}

func (s *Service) addDir(dir string) {
	if err := s.watcher.Add(dir); err != nil {
		logger.Warn("failed to watch project directory", "path", dir, "error", err)
		return
	}
	logger.Debug("watching project directory", "path", dir)
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handle(event)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == s.root {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			s.addDir(event.Name)
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), transcriptExt) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastPath = event.Name
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Service) fire() {
	s.mu.Lock()
	path := s.lastPath
	s.mu.Unlock()

	select {
	case <-s.stopChan:
		return
	default:
	}

	logger.Debug("transcript activity", "path", path)
	s.sendEvent(Event{Type: EventChanged, Path: path})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
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

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
