// Package streak derives compliance streaks from per-day discipline
// summaries.  It is pure: no storage, no clock, no side effects, so
// the day-sequencing rules are testable in isolation.
package streak

import "time"

// Day is one calendar day of discipline history.  HasViolation is true
// when any log recorded that day is a violation; other log types do
// not affect it.
type Day struct {
	Date         time.Time
	HasViolation bool
}

// Result holds the derived streak values.  LastBroken is the most
// recent violation day, nil when none exists.
type Result struct {
	Current    int
	Longest    int
	LastBroken *time.Time
}

// Compute scans days, which must be sorted by ascending date with at
// most one entry per calendar day.  A day only extends a streak when
// it is exactly one calendar day after the previous day considered;
// gaps restart the count.  Empty history yields the zero Result.
func Compute(days []Day) Result {
	var res Result

	// Longest streak: ascending scan.  Violations reset the running
	// count to zero; a gap restarts it at one.
	running := 0
	var prev *time.Time
	for i := range days {
		d := days[i]
		if d.HasViolation {
			running = 0
			prev = &days[i].Date
			continue
		}
		if prev != nil && sameDay(d.Date, prev.AddDate(0, 0, 1)) {
			running++
		} else {
			running = 1
		}
		if running > res.Longest {
			res.Longest = running
		}
		prev = &days[i].Date
	}

	// Current streak: descending scan from the most recent day.  Stop
	// at the first violation or the first gap, without counting it.
	var expected *time.Time
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		if d.HasViolation {
			break
		}
		if expected != nil && !sameDay(d.Date, *expected) {
			break
		}
		res.Current++
		e := d.Date.AddDate(0, 0, -1)
		expected = &e
	}

	for i := len(days) - 1; i >= 0; i-- {
		if days[i].HasViolation {
			res.LastBroken = &days[i].Date
			break
		}
	}

	return res
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
