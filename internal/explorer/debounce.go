package explorer

import "time"

// DefaultDelay is the quiet period before compiling.
const DefaultDelay = 750 * time.Millisecond

// Timer is a cancelable pending call.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d on another goroutine.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Debouncer coalesces bursts of triggers into a single firing.
//
// Every Trigger restarts the delay; nothing fires while triggers keep
// arriving. The timer only calls notify with a generation number, the owner
// must confirm with Fired on its own goroutine before acting.
type Debouncer struct {
	Delay time.Duration

	afterFunc AfterFunc
	notify    func(gen uint64)

	timer   Timer
	gen     uint64
	pending bool
}

// NewDebouncer creates a debouncer that calls notify when delay has passed.
func NewDebouncer(delay time.Duration, afterFunc AfterFunc, notify func(gen uint64)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Debouncer{
		Delay:     delay,
		afterFunc: afterFunc,
		notify:    notify,
	}
}

// Pending reports whether a firing is scheduled.
func (d *Debouncer) Pending() bool { return d.pending }

// Trigger (re)starts the delay.
func (d *Debouncer) Trigger() {
	d.stop()
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.afterFunc(d.Delay, func() { d.notify(gen) })
}

// Fired confirms a notification. It returns false for notifications from
// timers that have been superseded or canceled.
func (d *Debouncer) Fired(gen uint64) bool {
	if !d.pending || gen != d.gen {
		return false
	}
	d.pending = false
	d.timer = nil
	return true
}

// Flush cancels the timer and reports whether a firing was pending,
// in which case the caller should act as if it fired.
func (d *Debouncer) Flush() bool {
	if !d.pending {
		return false
	}
	d.Cancel()
	return true
}

// Cancel stops any pending firing.
func (d *Debouncer) Cancel() {
	d.stop()
	d.gen++
	d.pending = false
}

func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
