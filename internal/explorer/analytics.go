package explorer

import "loov.dev/asmlens/internal/compile"

// Analytics receives fire-and-forget compile outcomes.
type Analytics interface {
	Track(outcome compile.Outcome)
}

// LogAnalytics writes outcomes to the log.
type LogAnalytics struct{}

// Track implements Analytics.
func (LogAnalytics) Track(outcome compile.Outcome) {
	log.Infof("compile slot=%d compiler=%q options=%q code=%d took=%v",
		outcome.Slot, outcome.Compiler, outcome.Options, outcome.Code, outcome.Duration)
}

// Trackers sends outcomes to every tracker in order.
type Trackers []Analytics

// Track implements Analytics.
func (trackers Trackers) Track(outcome compile.Outcome) {
	for _, t := range trackers {
		t.Track(outcome)
	}
}
