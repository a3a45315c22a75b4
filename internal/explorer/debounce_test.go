package explorer

import (
	"testing"
	"time"
)

func TestDebouncerRestartsOnTrigger(t *testing.T) {
	clock := newFakeClock()
	var fired []uint64
	d := NewDebouncer(0, clock.AfterFunc, func(gen uint64) { fired = append(fired, gen) })

	if d.Delay != DefaultDelay {
		t.Fatalf("delay = %v", d.Delay)
	}

	for i := 0; i < 10; i++ {
		d.Trigger()
		clock.Advance(700 * time.Millisecond)
	}
	if len(fired) != 0 {
		t.Fatalf("fired during burst: %v", fired)
	}
	if !d.Pending() {
		t.Fatal("expected a pending firing")
	}

	clock.Advance(49 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}
	clock.Advance(time.Millisecond)
	if len(fired) != 1 {
		t.Fatalf("fired %d times", len(fired))
	}

	if !d.Fired(fired[0]) {
		t.Fatal("current generation rejected")
	}
	if d.Fired(fired[0]) {
		t.Fatal("generation accepted twice")
	}
	if d.Pending() {
		t.Fatal("still pending after firing")
	}
}

func TestDebouncerRejectsSupersededTimers(t *testing.T) {
	var fired []uint64
	var timers []func()
	afterFunc := func(d time.Duration, f func()) Timer {
		// A timer that cannot be stopped, like one that already started running.
		timers = append(timers, f)
		return stubbornTimer{}
	}
	d := NewDebouncer(time.Second, afterFunc, func(gen uint64) { fired = append(fired, gen) })

	d.Trigger()
	d.Trigger()
	for _, f := range timers {
		f()
	}
	if len(fired) != 2 {
		t.Fatalf("fired %v", fired)
	}
	if d.Fired(fired[0]) {
		t.Fatal("superseded generation accepted")
	}
	if !d.Fired(fired[1]) {
		t.Fatal("latest generation rejected")
	}
}

type stubbornTimer struct{}

func (stubbornTimer) Stop() bool { return false }

func TestDebouncerCancelAndFlush(t *testing.T) {
	clock := newFakeClock()
	var fired []uint64
	d := NewDebouncer(time.Second, clock.AfterFunc, func(gen uint64) { fired = append(fired, gen) })

	if d.Flush() {
		t.Fatal("flushed without trigger")
	}

	d.Trigger()
	d.Cancel()
	clock.Advance(2 * time.Second)
	if len(fired) != 0 || d.Pending() {
		t.Fatalf("canceled timer fired: %v", fired)
	}

	d.Trigger()
	if !d.Flush() {
		t.Fatal("flush of pending timer failed")
	}
	clock.Advance(2 * time.Second)
	if len(fired) != 0 {
		t.Fatalf("flushed timer fired: %v", fired)
	}
}
