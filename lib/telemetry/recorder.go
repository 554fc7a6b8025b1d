package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call captured by a Recorder.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory, tests use it to
// assert that a component reported what it should have.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) record(kind, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Count returns how many reports of the given kind have an id ending in suffix.
func (r *Recorder) Count(kind, suffix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, report := range r.reports {
		if report.Kind == kind && strings.HasSuffix(report.ID, suffix) {
			n++
		}
	}
	return n
}
