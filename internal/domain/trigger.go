package domain

import "time"

// NextTrigger computes the next instant an alarm should fire, given the
// current time, the alarm's wall-clock time and its weekday set. It is a
// pure total function: it never fails and has no side effects.
//
// An empty weekday set means a single upcoming occurrence: today if the
// alarm time has not passed yet, otherwise tomorrow. A clock exactly equal
// to the alarm time counts as "not yet passed", so the alarm fires today.
//
// The result is built in now's location, so the timezone rules in force at
// call time apply. Callers must re-invoke after a timezone change.
func NextTrigger(now time.Time, at AlarmTime, weekdays []time.Weekday) time.Time {
	days := daysUntilTrigger(now, at, weekdays)
	y, m, d := now.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, at.Hour, at.Minute, 0, 0, now.Location())
}

// daysUntilTrigger returns how many days from today the alarm lands on.
func daysUntilTrigger(now time.Time, at AlarmTime, weekdays []time.Weekday) int {
	passed := clockPassed(now, at)

	if len(weekdays) == 0 {
		if passed {
			return 1
		}
		return 0
	}

	today := now.Weekday()
	if !passed && containsWeekday(weekdays, today) {
		return 0
	}

	// Earliest weekday strictly after today, wrapping to next week.
	best := 7
	for _, d := range weekdays {
		diff := int(d-today+7) % 7
		if diff == 0 {
			diff = 7 // same weekday but time already passed: next week
		}
		if diff < best {
			best = diff
		}
	}
	return best
}

// clockPassed reports whether now's clock is strictly past the alarm time.
func clockPassed(now time.Time, at AlarmTime) bool {
	nowSec := now.Hour()*3600 + now.Minute()*60 + now.Second()
	atSec := at.Hour*3600 + at.Minute*60
	if nowSec != atSec {
		return nowSec > atSec
	}
	// Same second: sub-second fractions still count as "not yet passed".
	return false
}

func containsWeekday(set []time.Weekday, d time.Weekday) bool {
	for _, w := range set {
		if w == d {
			return true
		}
	}
	return false
}
