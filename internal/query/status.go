// internal/query/status.go
package query

import (
	"fmt"
	"strings"
	"time"
)

// Status is the derived state of one processing step.
type Status string

const (
	StatusNotDone Status = "not done"
	StatusRunning Status = "running"
	StatusCrashed Status = "crashed"
	StatusFailed  Status = "failed"
	StatusDone    Status = "done"
	StatusDontDo  Status = "dont do"
	// StatusAvailable is a done step whose output is marked available.
	// Only steps with their own process table reach it.
	StatusAvailable Status = "done and avail"
)

// AllStatuses lists the states in display order.
var AllStatuses = []Status{StatusNotDone, StatusRunning, StatusCrashed, StatusFailed, StatusDone, StatusDontDo, StatusAvailable}

// DontDoSentinel is the done timestamp marking a step that must not be run.
const DontDoSentinel = "1970-01-01 00:00:00"

var dontDoTime = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseStatus maps a status name to its Status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// StatusInput holds the nullable timestamps a step's state is derived from.
// Blocked is set when the step's prerequisite has not happened yet.
type StatusInput struct {
	Done    *time.Time
	Started *time.Time
	Failed  *time.Time
	Blocked bool
}

// Classify derives the state of a step. A started step without a failure is
// running while now-limit is still before its start time and crashed afterwards.
func Classify(in StatusInput, now time.Time, limit time.Duration) Status {
	if in.Done != nil {
		if in.Done.Equal(dontDoTime) || in.Done.Format(TimestampLayout) == DontDoSentinel {
			return StatusDontDo
		}
		return StatusDone
	}
	if in.Started == nil || in.Blocked {
		return StatusNotDone
	}
	if in.Failed != nil {
		return StatusFailed
	}
	if now.Add(-limit).Before(*in.Started) {
		return StatusRunning
	}
	return StatusCrashed
}

// ProcessInput holds the columns of a step with its own process table.
type ProcessInput struct {
	Started    *time.Time
	Stopped    *time.Time
	ReturnCode *int
	Available  bool
}

// ClassifyProcess derives the state of a step tracked in a process table.
// A step without start, stop and return code has not been done; a step that
// stopped with a return code failed. Rows matching no rule count as
// available.
func ClassifyProcess(in ProcessInput, now time.Time, limit time.Duration) Status {
	switch {
	case in.Started == nil && in.Stopped == nil && in.ReturnCode == nil:
		return StatusNotDone
	case in.Started != nil && in.Stopped == nil && in.ReturnCode == nil:
		if now.Add(-limit).Before(*in.Started) {
			return StatusRunning
		}
		return StatusCrashed
	case in.Started != nil && in.Stopped != nil && in.ReturnCode != nil:
		return StatusFailed
	case in.Started != nil && in.Stopped != nil && !in.Available:
		return StatusDone
	default:
		return StatusAvailable
	}
}

// statusExpr renders Classify, or ClassifyProcess for steps with a process
// table, as a SQL CASE expression. It carries exactly one placeholder: the
// now-minus-limit threshold.
func statusExpr(cols StatusColumns, step StatusStep) string {
	if step.Process != nil {
		return processExpr(*step.Process)
	}
	var b strings.Builder
	b.WriteString("(CASE")
	fmt.Fprintf(&b, " WHEN %s IS NOT NULL AND %s = '%s' THEN '%s'", step.Key, step.Key, DontDoSentinel, StatusDontDo)
	fmt.Fprintf(&b, " WHEN %s IS NOT NULL THEN '%s'", step.Key, StatusDone)
	fmt.Fprintf(&b, " WHEN %s IS NULL THEN '%s'", cols.Start, StatusNotDone)
	if step.Needs != "" {
		fmt.Fprintf(&b, " WHEN %s IS NULL THEN '%s'", step.Needs, StatusNotDone)
	}
	fmt.Fprintf(&b, " WHEN %s IS NULL AND ? < %s THEN '%s'", cols.Failed, cols.Start, StatusRunning)
	fmt.Fprintf(&b, " WHEN %s IS NULL THEN '%s'", cols.Failed, StatusCrashed)
	fmt.Fprintf(&b, " ELSE '%s' END)", StatusFailed)
	return b.String()
}

func processExpr(p ProcessColumns) string {
	idle := fmt.Sprintf("%s IS NULL AND %s IS NULL", p.Stop, p.ReturnCode)
	var b strings.Builder
	b.WriteString("(CASE")
	fmt.Fprintf(&b, " WHEN %s IS NULL AND %s THEN '%s'", p.Start, idle, StatusNotDone)
	fmt.Fprintf(&b, " WHEN %s IS NOT NULL AND %s AND ? < %s THEN '%s'", p.Start, idle, p.Start, StatusRunning)
	fmt.Fprintf(&b, " WHEN %s IS NOT NULL AND %s THEN '%s'", p.Start, idle, StatusCrashed)
	fmt.Fprintf(&b, " WHEN %s IS NOT NULL AND %s IS NOT NULL AND %s IS NOT NULL THEN '%s'", p.Start, p.Stop, p.ReturnCode, StatusFailed)
	fmt.Fprintf(&b, " WHEN %s IS NOT NULL AND %s IS NOT NULL AND %s IS NULL THEN '%s'", p.Start, p.Stop, p.Available, StatusDone)
	fmt.Fprintf(&b, " ELSE '%s' END)", StatusAvailable)
	return b.String()
}

func statusThreshold(now time.Time, limit time.Duration) string {
	return now.Add(-limit).Format(TimestampLayout)
}
