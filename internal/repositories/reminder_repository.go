package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"meetup-service/internal/models"
)

// ReminderRepository abstracts the reminder schedule.
type ReminderRepository interface {
	DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)
	MarkSent(ctx context.Context, reminderID int64, now time.Time) error
	ReplaceReminders(ctx context.Context, eventID int64, startsAt, now time.Time) error
}

// ReminderRepo is a sqlx implementation of ReminderRepository.
type ReminderRepo struct {
	db *sqlx.DB
}

// NewReminderRepo constructs a ReminderRepo.
func NewReminderRepo(db *sqlx.DB) *ReminderRepo {
	return &ReminderRepo{db: db}
}

// DueReminders returns unsent reminders whose deadline has passed,
// earliest first, so a backlog drains in temporal order.
func (r *ReminderRepo) DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.SelectContext(ctx, &reminders, `SELECT id, event_id, kind, run_at, sent, sent_at
        FROM reminders WHERE sent=FALSE AND run_at<=$1 ORDER BY run_at ASC`, now)
	return reminders, err
}

// MarkSent retires a reminder. Once this commits the reminder is never
// selected again.
func (r *ReminderRepo) MarkSent(ctx context.Context, reminderID int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE reminders SET sent=TRUE, sent_at=$1 WHERE id=$2`, now, reminderID)
	return err
}

// ReplaceReminders drops the event's reminder rows and recreates one per
// kind whose deadline is still in the future. Deadlines already in the
// past are skipped, never inserted-then-expired.
func (r *ReminderRepo) ReplaceReminders(ctx context.Context, eventID int64, startsAt, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE event_id=$1`, eventID); err != nil {
		return err
	}

	for _, d := range reminderDeadlines(startsAt, now) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO reminders (event_id, kind, run_at, sent) VALUES ($1, $2, $3, FALSE)
            ON CONFLICT (event_id, kind) DO NOTHING`, eventID, d.kind, d.runAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type reminderDeadline struct {
	kind  string
	runAt time.Time
}

// reminderDeadlines computes one deadline per reminder kind and drops
// those already in the past, so a reminder row either fires or is never
// created.
func reminderDeadlines(startsAt, now time.Time) []reminderDeadline {
	kinds := []string{models.ReminderMaybe36h, models.ReminderYes3h}
	deadlines := make([]reminderDeadline, 0, len(kinds))
	for _, kind := range kinds {
		offset, ok := models.KindOffset(kind)
		if !ok {
			continue
		}
		runAt := startsAt.Add(-offset)
		if !runAt.After(now) {
			continue
		}
		deadlines = append(deadlines, reminderDeadline{kind: kind, runAt: runAt})
	}
	return deadlines
}
