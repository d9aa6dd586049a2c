package ports

import (
	"context"
	"time"

	"github.com/tickwake/alarmd/internal/domain"
)

// TriggerKind distinguishes the wake requests registered per alarm.
type TriggerKind string

const (
	// TriggerPrimary is the actual fire of the alarm.
	TriggerPrimary TriggerKind = "primary"

	// TriggerPreview is the earlier "upcoming alarm" pre-notification.
	TriggerPreview TriggerKind = "preview"
)

// WakeRequest asks the platform to wake the process at an absolute instant.
// Requests are keyed by (AlarmID, Kind): scheduling again with the same key
// replaces the outstanding request (cancel-then-set), so at most one request
// per key is ever pending.
type WakeRequest struct {
	AlarmID int64
	Kind    TriggerKind
	At      time.Time

	// Snoozed marks a primary request that re-fires a snoozed occurrence.
	Snoozed bool

	// VolumeStepIncrease is carried through to the delivered intent.
	VolumeStepIncrease bool
}

// WakeScheduler is the platform exact-alarm capability.
type WakeScheduler interface {
	// Schedule registers the request, replacing any outstanding request
	// with the same (AlarmID, Kind) key.
	Schedule(ctx context.Context, req WakeRequest) error

	// Cancel removes an outstanding request. Cancelling a request that
	// does not exist is not an error.
	Cancel(ctx context.Context, alarmID int64, kind TriggerKind) error

	// Pending returns the outstanding request for the key, if any. Lets
	// reconciliation see what is registered without re-registering it.
	Pending(ctx context.Context, alarmID int64, kind TriggerKind) (WakeRequest, bool)

	// CanScheduleExact reports whether exact scheduling is currently
	// permitted. Callers must check before registering; a revocation
	// implicitly cancels all outstanding requests on the platform side.
	CanScheduleExact(ctx context.Context) bool
}

// IntentFor derives the intent a request delivers when it fires.
func (r WakeRequest) IntentFor() domain.Intent {
	action := domain.ActionPlay
	if r.Kind == TriggerPreview {
		action = domain.ActionUpcomingPreview
	}
	return domain.Intent{
		Action:             action,
		AlarmID:            r.AlarmID,
		Snoozed:            r.Snoozed,
		VolumeStepIncrease: r.VolumeStepIncrease,
	}
}
