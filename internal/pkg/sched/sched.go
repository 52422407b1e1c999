// Package sched provides named, cancellable one-shot timers. Each game
// session owns a TimerSet so that force-stop can cancel exactly the
// outstanding timers instead of leaving them to fire into dead state.
package sched

import (
	"sync"
	"time"
)

// TimerSet manages a group of named one-shot timers. Scheduling a name
// that is already pending replaces the previous timer. After Stop, all
// timers are cancelled and further scheduling is a no-op.
type TimerSet struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewTimerSet creates an empty TimerSet.
func NewTimerSet() *TimerSet {
	return &TimerSet{timers: make(map[string]*time.Timer)}
}

// After schedules fn to run once after d. The callback runs on its own
// goroutine, exactly as time.AfterFunc does.
func (s *TimerSet) After(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}
	s.timers[name] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, name)
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		fn()
	})
}

// Cancel stops the named timer if it has not fired yet. It reports
// whether a pending timer was found.
func (s *TimerSet) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[name]
	if !ok {
		return false
	}
	delete(s.timers, name)
	return t.Stop()
}

// Stop cancels every pending timer and rejects future scheduling.
func (s *TimerSet) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}

// Pending returns the number of timers that have not fired or been
// cancelled yet.
func (s *TimerSet) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
