package usage

import "time"

// Outcome classifies what happened to one submitted line.
type Outcome string

const (
	// OutcomeOK is a submission the evaluator ran without error.
	OutcomeOK Outcome = "ok"
	// OutcomeError is a submission the evaluator rejected or that failed at run time.
	OutcomeError Outcome = "error"
	// OutcomeIncomplete is a line buffered while a statement is being continued.
	OutcomeIncomplete Outcome = "incomplete"
	// OutcomeHandled is a line a preprocess handler consumed (introspection, for one).
	OutcomeHandled Outcome = "handled"
)

// UsageData represents the root structure stored in persistence.
type UsageData struct {
	Version   string          `json:"version"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// AggregatedStats holds counters broken down by outcome and session.
type AggregatedStats struct {
	Total     Counts            `json:"total"`
	ByOutcome map[string]Counts `json:"by_outcome"`
	BySession map[string]Counts `json:"by_session"`
}

// Counts holds submission totals.
type Counts struct {
	Submissions int64 `json:"submissions"`
	EvalMillis  int64 `json:"eval_ms"`
}

// Add records one submission that spent d in the evaluator.
func (c *Counts) Add(d time.Duration) {
	c.Submissions++
	c.EvalMillis += d.Milliseconds()
}

// EvalTime returns the accumulated evaluator time.
func (c Counts) EvalTime() time.Duration {
	return time.Duration(c.EvalMillis) * time.Millisecond
}
