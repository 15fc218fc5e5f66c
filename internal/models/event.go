package models

import "time"

// Event represents a scheduled group meetup announced in a chat. Each
// event owns exactly one poll; the poll and card message ids reference
// the chat messages posted by the transport worker.
type Event struct {
	ID            int64     `db:"id" json:"id"`
	ChatID        int64     `db:"chat_id" json:"chat_id"`
	PollID        string    `db:"poll_id" json:"poll_id"`
	PollMessageID int64     `db:"poll_message_id" json:"poll_message_id"`
	CardMessageID *int64    `db:"card_message_id" json:"card_message_id,omitempty"`
	CreatorUserID *int64    `db:"creator_user_id" json:"creator_user_id,omitempty"`
	StartsAt      time.Time `db:"starts_at" json:"starts_at"`
	Title         string    `db:"title" json:"title"`
	Cost          string    `db:"cost" json:"cost"`
	Location      string    `db:"location" json:"location"`
	Details       string    `db:"details" json:"details"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// EventSummary is the API-friendly view used by calendar listings.
type EventSummary struct {
	ID       int64     `json:"id"`
	StartsAt time.Time `json:"starts_at"`
	Title    string    `json:"title"`
	Cost     string    `json:"cost"`
	Location string    `json:"location"`
	MyVote   string    `json:"my_vote"`
}
