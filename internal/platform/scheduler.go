package platform

import (
	"sync"
	"time"
)

// Handle is a cancellable piece of scheduled work. Cancel is safe to call
// more than once; a cancelled callback never runs again.
type Handle interface {
	Cancel()
}

// Scheduler defers work. Delayed and periodic actions route through this
// seam so tests can drive time by hand.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Handle
	// Every runs fn repeatedly at interval d until cancelled.
	Every(d time.Duration, fn func()) Handle
}

// TimerScheduler implements Scheduler on the runtime clock.
type TimerScheduler struct{}

func NewTimerScheduler() *TimerScheduler { return &TimerScheduler{} }

func (*TimerScheduler) After(d time.Duration, fn func()) Handle {
	return timerHandle{time.AfterFunc(d, fn)}
}

func (*TimerScheduler) Every(d time.Duration, fn func()) Handle {
	h := &tickerHandle{stop: make(chan struct{})}
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				fn()
			case <-h.stop:
				return
			}
		}
	}()
	return h
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Cancel() { h.t.Stop() }

type tickerHandle struct {
	once sync.Once
	stop chan struct{}
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}
