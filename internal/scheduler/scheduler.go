package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"meetup-service/internal/models"
	"meetup-service/internal/notifier"
	"meetup-service/internal/observability"
	"meetup-service/internal/render"
	"meetup-service/internal/repositories"
)

// Options tunes the reminder loop.
type Options struct {
	Interval time.Duration
	// RetryFailedSends leaves a reminder unsent when its dispatch fails,
	// so the next cycle picks it up again. When false a reminder is
	// retired after the first attempt regardless of outcome.
	RetryFailedSends bool
	Location         *time.Location
}

// Scheduler drives the reminder loop: one goroutine, one cycle at a
// time, exchanging state with the gateway only through the store. A
// crash between fetching due reminders and marking them sent is safe:
// the next cycle re-fetches the same still-unsent rows.
type Scheduler struct {
	events    repositories.EventRepository
	votes     repositories.VoteRepository
	reminders repositories.ReminderRepository
	notifier  notifier.Notifier

	interval         time.Duration
	retryFailedSends bool
	loc              *time.Location
	now              func() time.Time
	tracer           trace.Tracer
}

// New constructs a Scheduler.
func New(events repositories.EventRepository, votes repositories.VoteRepository, reminders repositories.ReminderRepository, n notifier.Notifier, opts Options) *Scheduler {
	interval := opts.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		events:           events,
		votes:            votes,
		reminders:        reminders,
		notifier:         n,
		interval:         interval,
		retryFailedSends: opts.RetryFailedSends,
		loc:              loc,
		now:              time.Now,
		tracer:           otel.Tracer("meetup-service/scheduler"),
	}
}

// Run blocks until the context is cancelled. No cycle error terminates
// the loop; everything is logged and the loop sleeps its normal interval.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("reminder scheduler started interval=%s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				log.Printf("reminder cycle failed: %v", err)
			}
		}
	}
}

// RunCycle processes every due reminder once, earliest deadline first.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "reminders.cycle")
	defer span.End()
	observability.IncReminderCycle()

	now := s.now()
	due, err := s.reminders.DueReminders(ctx, now)
	if err != nil {
		return fmt.Errorf("fetch due reminders: %w", err)
	}

	for _, rem := range due {
		if err := s.process(ctx, rem, now); err != nil {
			log.Printf("reminder %d (%s): %v", rem.ID, rem.Kind, err)
		}
	}
	return nil
}

func (s *Scheduler) process(ctx context.Context, rem models.Reminder, now time.Time) error {
	event, err := s.events.GetEvent(ctx, rem.EventID)
	if errors.Is(err, repositories.ErrEventNotFound) {
		// Event deleted from under the reminder; retire it quietly.
		return s.reminders.MarkSent(ctx, rem.ID, now)
	}
	if err != nil {
		return err
	}

	option, ok := models.RecipientOption(rem.Kind)
	if !ok {
		log.Printf("unknown reminder kind %q, retiring", rem.Kind)
		return s.reminders.MarkSent(ctx, rem.ID, now)
	}

	userIDs, err := s.votes.UsersWithOption(ctx, event.PollID, option)
	if err != nil {
		return err
	}

	if len(userIDs) > 0 {
		text := s.message(event, rem.Kind, userIDs)
		if err := s.notifier.SendText(ctx, event.ChatID, text); err != nil {
			observability.IncReminderSendError()
			if s.retryFailedSends {
				return fmt.Errorf("dispatch: %w", err)
			}
			log.Printf("reminder %d dispatch failed, retiring: %v", rem.ID, err)
		} else {
			observability.IncReminderSent(rem.Kind)
		}
	}

	return s.reminders.MarkSent(ctx, rem.ID, now)
}

func (s *Scheduler) message(event models.Event, kind string, userIDs []int64) string {
	mentions := render.MentionList(userIDs)
	link := render.PollLink(event.ChatID, event.PollMessageID)

	var text string
	switch kind {
	case models.ReminderMaybe36h:
		text = fmt.Sprintf("⏳ About 36 hours until the meetup.\n%s\n**Are you in?** Please vote again 🙂", mentions)
	case models.ReminderYes3h:
		text = fmt.Sprintf("🔔 The meetup starts in ~3 hours!\n%s\n\n%s", mentions, render.FormatCard(event, s.loc))
	}
	if link != "" {
		text += "\n\nPoll: " + link
	}
	return text
}
