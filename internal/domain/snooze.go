package domain

import "time"

// DecideSnooze decides whether a snooze request re-arms the alarm.
// Given the flags and the number of snoozes already taken for the current
// occurrence, it returns the next trigger instant and true, or the zero
// time and false when the snooze budget is exhausted.
//
// A zero snooze interval always exhausts, regardless of the repeat mode.
// Kept separate from the playback state machine so the policy is testable
// without standing up playback.
func DecideSnooze(now time.Time, f Flags, count int) (time.Time, bool) {
	if !f.SnoozeEnabled || f.SnoozeInterval <= 0 {
		return time.Time{}, false
	}

	switch f.SnoozeRepeat {
	case SnoozeRepeatForever:
		// No budget.
	case SnoozeRepeatFixed:
		if count >= f.SnoozeRepeatCount {
			return time.Time{}, false
		}
	default: // SnoozeRepeatNone and unknown modes
		return time.Time{}, false
	}

	return now.Add(f.SnoozeInterval), true
}
