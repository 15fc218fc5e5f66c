package models

import "time"

// Reminder kinds. The values are persisted, so they keep their wire
// form: the 36h reminder nudges undecided voters, the 3h one pings the
// committed ones.
const (
	ReminderMaybe36h = "maybe_36h"
	ReminderYes3h    = "yes_3h"
)

// Offsets before the event start at which each reminder kind fires.
const (
	LongLeadOffset  = 36 * time.Hour
	ShortLeadOffset = 3 * time.Hour
)

// Reminder is a one-shot scheduled notification tied to an event.
type Reminder struct {
	ID      int64      `db:"id" json:"id"`
	EventID int64      `db:"event_id" json:"event_id"`
	Kind    string     `db:"kind" json:"kind"`
	RunAt   time.Time  `db:"run_at" json:"run_at"`
	Sent    bool       `db:"sent" json:"sent"`
	SentAt  *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}

// KindOffset returns the lead time for a reminder kind.
func KindOffset(kind string) (time.Duration, bool) {
	switch kind {
	case ReminderMaybe36h:
		return LongLeadOffset, true
	case ReminderYes3h:
		return ShortLeadOffset, true
	}
	return 0, false
}

// RecipientOption returns the poll option whose voters the kind targets.
func RecipientOption(kind string) (int, bool) {
	switch kind {
	case ReminderMaybe36h:
		return OptionUndecided, true
	case ReminderYes3h:
		return OptionCommitted, true
	}
	return 0, false
}
