package status

import "strings"

// TaskProgress is one parsed `[current/total] description` update from the
// executor's stdout.
type TaskProgress struct {
	Current     uint32
	Total       uint32
	Description string
}

// ParseTaskLine parses a single executor status line: an optional leading
// whitespace, "[current/total] description", with an optional trailing
// carriage return. Both counts must be ASCII digits and non-empty; ok is
// false when the line doesn't match this shape at all. A malformed
// current/total (e.g. current > total) still parses so the caller's
// tracker can reject it under the monotonicity rule.
func ParseTaskLine(line string) (TaskProgress, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	rest, ok := strings.CutPrefix(trimmed, "[")
	if !ok {
		return TaskProgress{}, false
	}
	currentRaw, remaining, ok := strings.Cut(rest, "/")
	if !ok {
		return TaskProgress{}, false
	}
	totalRaw, descRaw, ok := strings.Cut(remaining, "]")
	if !ok {
		return TaskProgress{}, false
	}
	if currentRaw == "" || totalRaw == "" || !allDigits(currentRaw) || !allDigits(totalRaw) {
		return TaskProgress{}, false
	}
	current := parseUint(currentRaw)
	total := parseUint(totalRaw)
	desc := strings.TrimRight(strings.TrimLeft(descRaw, " \t"), "\r")
	return TaskProgress{Current: current, Total: total, Description: desc}, true
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseUint(s string) uint32 {
	var n uint64
	for _, c := range s {
		n = n*10 + uint64(c-'0')
	}
	return uint32(n)
}

// Tracker filters task updates: once a total is observed, differing
// totals or regressive current values are rejected silently; zero
// current, zero total, or current greater than total is rejected outright.
type Tracker struct {
	total       uint32
	haveTotal   bool
	lastCurrent uint32
}

// Accept reports whether update should be surfaced to the reporter, and if
// so, records it as the new baseline for future monotonicity checks.
func (t *Tracker) Accept(update TaskProgress) bool {
	if update.Total == 0 || update.Current == 0 || update.Current > update.Total {
		return false
	}
	if t.haveTotal {
		if t.total != update.Total || update.Current < t.lastCurrent {
			return false
		}
	}
	t.total = update.Total
	t.haveTotal = true
	t.lastCurrent = update.Current
	return true
}
