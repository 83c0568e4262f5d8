package ports

import "time"

// Metrics receives business counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	IncPurchase(state string)
	IncVote(op, outcome string)
	IncLedger(op, outcome string)
	IncCursorSource(source string)
	ObservePage(sort string, d time.Duration)
}

type NoopMetrics struct{}

func (NoopMetrics) IncPurchase(string) {}
func (NoopMetrics) IncVote(string, string) {}
func (NoopMetrics) IncLedger(string, string) {}
func (NoopMetrics) IncCursorSource(string) {}
func (NoopMetrics) ObservePage(string, time.Duration) {}
