package actions

import (
	"encoding/json"
	"fmt"
)

// Action is the closed set of operations a mini-app form submission can
// request. Decode resolves the tag once at the boundary; unknown tags
// are rejected instead of falling through.
type Action interface {
	actionName() string
}

// Create records a new event. The transport worker has already posted
// the card and poll messages and forwards their platform references.
type Create struct {
	Date          string
	Time          string
	Title         string
	Cost          string
	Location      string
	Details       string
	PollID        string
	PollMessageID int64
	CardMessageID int64
}

// Edit signals that the event was rewritten through the API: the card
// and reminder schedule must be refreshed from the stored row.
type Edit struct {
	EventID int64
}

// Delete removes an event with everything attached to it.
type Delete struct {
	EventID int64
}

// ExportRequest asks for the event's calendar file in the requester's
// private chat.
type ExportRequest struct {
	EventID int64
}

func (Create) actionName() string        { return "create" }
func (Edit) actionName() string          { return "edit" }
func (Delete) actionName() string        { return "delete" }
func (ExportRequest) actionName() string { return "export" }

type envelope struct {
	Action        string `json:"action"`
	EventID       int64  `json:"event_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Title         string `json:"title"`
	Cost          string `json:"cost"`
	Location      string `json:"location"`
	Details       string `json:"details"`
	PollID        string `json:"poll_id"`
	PollMessageID int64  `json:"poll_message_id"`
	CardMessageID int64  `json:"card_message_id"`
}

// Decode parses a form submission payload into one of the Action
// variants.
func Decode(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch env.Action {
	case "create":
		return Create{
			Date:          env.Date,
			Time:          env.Time,
			Title:         env.Title,
			Cost:          env.Cost,
			Location:      env.Location,
			Details:       env.Details,
			PollID:        env.PollID,
			PollMessageID: env.PollMessageID,
			CardMessageID: env.CardMessageID,
		}, nil
	case "edit":
		return Edit{EventID: env.EventID}, nil
	case "delete":
		return Delete{EventID: env.EventID}, nil
	case "export":
		return ExportRequest{EventID: env.EventID}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", env.Action)
	}
}
