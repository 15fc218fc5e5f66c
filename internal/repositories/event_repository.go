package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"meetup-service/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

// NewEventInput carries the fields needed to create an event together
// with the chat message references already posted by the transport.
type NewEventInput struct {
	ChatID        int64
	PollID        string
	PollMessageID int64
	CardMessageID *int64
	CreatorUserID *int64
	StartsAt      time.Time
	Title         string
	Cost          string
	Location      string
	Details       string
}

// EventRepository abstracts event persistence.
type EventRepository interface {
	CreateEvent(ctx context.Context, input NewEventInput) (models.Event, error)
	GetEvent(ctx context.Context, eventID int64) (models.Event, error)
	GetEventByPoll(ctx context.Context, pollID string) (models.Event, error)
	UpdateEvent(ctx context.Context, eventID int64, startsAt time.Time, title, cost, location, details string) error
	DeleteEvent(ctx context.Context, eventID int64) error
	ListUpcoming(ctx context.Context, chatID int64, now time.Time, limit int) ([]models.Event, error)
}

// EventRepo is a sqlx implementation of EventRepository.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, chat_id, poll_id, poll_message_id, card_message_id, creator_user_id, starts_at, title, cost, location, details, created_at`

// CreateEvent stores a new event row and returns it.
func (r *EventRepo) CreateEvent(ctx context.Context, input NewEventInput) (models.Event, error) {
	var event models.Event
	err := r.db.QueryRowxContext(ctx, `INSERT INTO events
        (chat_id, poll_id, poll_message_id, card_message_id, creator_user_id, starts_at, title, cost, location, details)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+eventColumns,
		input.ChatID, input.PollID, input.PollMessageID, input.CardMessageID, input.CreatorUserID,
		input.StartsAt, input.Title, input.Cost, input.Location, input.Details).
		StructScan(&event)
	return event, err
}

// GetEvent fetches an event by id.
func (r *EventRepo) GetEvent(ctx context.Context, eventID int64) (models.Event, error) {
	var event models.Event
	err := r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

// GetEventByPoll fetches the event owning a poll.
func (r *EventRepo) GetEventByPoll(ctx context.Context, pollID string) (models.Event, error) {
	var event models.Event
	err := r.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE poll_id=$1`, pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

// UpdateEvent rewrites the mutable event fields in place.
func (r *EventRepo) UpdateEvent(ctx context.Context, eventID int64, startsAt time.Time, title, cost, location, details string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET starts_at=$1, title=$2, cost=$3, location=$4, details=$5 WHERE id=$6`,
		startsAt, title, cost, location, details, eventID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event together with its votes; reminders go
// with it through the foreign key cascade.
func (r *EventRepo) DeleteEvent(ctx context.Context, eventID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pollID string
	if err := tx.GetContext(ctx, &pollID, `SELECT poll_id FROM events WHERE id=$1`, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE poll_id=$1`, pollID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, eventID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListUpcoming returns the chat's next events ordered by start time.
func (r *EventRepo) ListUpcoming(ctx context.Context, chatID int64, now time.Time, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.SelectContext(ctx, &events, `SELECT `+eventColumns+` FROM events
        WHERE chat_id=$1 AND starts_at>=$2 ORDER BY starts_at ASC LIMIT $3`,
		chatID, now, limit)
	return events, err
}
