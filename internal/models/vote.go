package models

import "time"

// Poll option indices as issued by the chat platform.
const (
	OptionCommitted = 0
	OptionUndecided = 1
	OptionDeclined  = 2
)

// PollOptions are the answer rows shown under every event poll.
var PollOptions = []string{"I'm in", "need to think", "can't make it"}

// Vote is one participant's current answer for one event poll.
// OptionID is nil when the participant retracted their answer; the row
// is kept so "withdrew" stays distinguishable from "never answered".
type Vote struct {
	PollID    string    `db:"poll_id" json:"poll_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	OptionID  *int      `db:"option_id" json:"option_id,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OptionName maps an option index to its API name.
func OptionName(optionID *int) string {
	if optionID == nil {
		return "none"
	}
	switch *optionID {
	case OptionCommitted:
		return "committed"
	case OptionUndecided:
		return "undecided"
	case OptionDeclined:
		return "declined"
	}
	return "unknown"
}
