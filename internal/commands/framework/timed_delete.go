package framework

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Timer is a pending scheduled action.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// TimerScheduler schedules with time.AfterFunc and remembers pending timers
// so they can be cancelled on shutdown.
type TimerScheduler struct {
	mu      sync.Mutex
	pending map[*time.Timer]struct{}
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{pending: make(map[*time.Timer]struct{})}
}

func (s *TimerScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.pending, t)
		s.mu.Unlock()
		f()
	})
	s.pending[t] = struct{}{}
	return &trackedTimer{t: t, s: s}
}

// Pending reports how many timers have neither fired nor been stopped.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// StopAll cancels every pending timer.
func (s *TimerScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.pending {
		t.Stop()
		delete(s.pending, t)
	}
}

type trackedTimer struct {
	t *time.Timer
	s *TimerScheduler
}

func (tt *trackedTimer) Stop() bool {
	stopped := tt.t.Stop()
	tt.s.mu.Lock()
	delete(tt.s.pending, tt.t)
	tt.s.mu.Unlock()
	return stopped
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

// DeleteAfter removes msg after d. Deletion errors are ignored, the message
// may already be gone.
func DeleteAfter(ctx Context, s Scheduler, msg *discordgo.Message, d time.Duration) Timer {
	if msg == nil || s == nil {
		return noopTimer{}
	}
	return s.AfterFunc(d, func() {
		_ = ctx.DeleteMessage(msg)
	})
}
