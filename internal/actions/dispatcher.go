package actions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"meetup-service/internal/ics"
	"meetup-service/internal/notifier"
	"meetup-service/internal/render"
	"meetup-service/internal/repositories"
)

var (
	ErrPastStart    = errors.New("start time is in the past")
	ErrNotCreator   = errors.New("only the creator may do that")
	ErrMissingField = errors.New("missing required field")
)

// Dispatcher executes decoded actions against the store and notifier.
type Dispatcher struct {
	events    repositories.EventRepository
	reminders repositories.ReminderRepository
	notifier  notifier.Notifier
	loc       *time.Location
	now       func() time.Time
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(events repositories.EventRepository, reminders repositories.ReminderRepository, n notifier.Notifier, loc *time.Location) *Dispatcher {
	return &Dispatcher{
		events:    events,
		reminders: reminders,
		notifier:  n,
		loc:       loc,
		now:       time.Now,
	}
}

// Execute runs one action on behalf of a chat participant.
func (d *Dispatcher) Execute(ctx context.Context, chatID, userID int64, action Action) error {
	switch a := action.(type) {
	case Create:
		return d.create(ctx, chatID, userID, a)
	case Edit:
		return d.edit(ctx, a)
	case Delete:
		return d.delete(ctx, userID, a)
	case ExportRequest:
		return d.export(ctx, userID, a)
	default:
		return fmt.Errorf("unhandled action %q", action.actionName())
	}
}

func (d *Dispatcher) create(ctx context.Context, chatID, userID int64, a Create) error {
	if a.Date == "" || a.Time == "" {
		return ErrMissingField
	}
	startsAt, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, d.loc)
	if err != nil {
		return fmt.Errorf("parse start time: %w", err)
	}
	if !startsAt.After(d.now()) {
		// The card and poll are already in the chat; take them back.
		d.removeMessages(ctx, chatID, a.CardMessageID, a.PollMessageID)
		return ErrPastStart
	}

	title := a.Title
	if strings.TrimSpace(title) == "" {
		title = "Meetup"
	}
	cardID := a.CardMessageID
	event, err := d.events.CreateEvent(ctx, repositories.NewEventInput{
		ChatID:        chatID,
		PollID:        a.PollID,
		PollMessageID: a.PollMessageID,
		CardMessageID: &cardID,
		CreatorUserID: &userID,
		StartsAt:      startsAt,
		Title:         title,
		Cost:          orDash(a.Cost),
		Location:      orDash(a.Location),
		Details:       strings.TrimSpace(a.Details),
	})
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	if err := d.reminders.ReplaceReminders(ctx, event.ID, event.StartsAt, d.now()); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}

	// Pinning is best effort; the transport may lack admin rights.
	if err := d.notifier.Pin(ctx, chatID, a.CardMessageID); err != nil {
		log.Printf("pin card for event %d failed: %v", event.ID, err)
	}
	return nil
}

func (d *Dispatcher) edit(ctx context.Context, a Edit) error {
	event, err := d.events.GetEvent(ctx, a.EventID)
	if err != nil {
		return err
	}

	if err := d.reminders.ReplaceReminders(ctx, event.ID, event.StartsAt, d.now()); err != nil {
		return fmt.Errorf("reschedule reminders: %w", err)
	}

	if event.CardMessageID != nil {
		if err := d.notifier.EditText(ctx, event.ChatID, *event.CardMessageID, render.FormatCard(event, d.loc)); err != nil {
			log.Printf("refresh card for event %d failed: %v", event.ID, err)
		}
	}
	return nil
}

func (d *Dispatcher) delete(ctx context.Context, userID int64, a Delete) error {
	event, err := d.events.GetEvent(ctx, a.EventID)
	if err != nil {
		return err
	}
	if event.CreatorUserID == nil || *event.CreatorUserID != userID {
		return ErrNotCreator
	}

	if err := d.events.DeleteEvent(ctx, event.ID); err != nil {
		return err
	}

	var cardID int64
	if event.CardMessageID != nil {
		cardID = *event.CardMessageID
	}
	d.removeMessages(ctx, event.ChatID, cardID, event.PollMessageID)
	return nil
}

func (d *Dispatcher) export(ctx context.Context, userID int64, a ExportRequest) error {
	event, err := d.events.GetEvent(ctx, a.EventID)
	if err != nil {
		return err
	}

	description := "Cost: " + event.Cost
	if details := strings.TrimSpace(event.Details); details != "" {
		description += "\n\n" + details
	}
	doc := ics.Render(event.StartsAt, event.Title, event.Location, description)

	// Delivered to the requester's private chat, not the group.
	return d.notifier.SendDocument(ctx, userID,
		fmt.Sprintf("event_%d.ics", event.ID),
		render.FormatCard(event, d.loc),
		[]byte(doc))
}

func (d *Dispatcher) removeMessages(ctx context.Context, chatID int64, messageIDs ...int64) {
	for _, id := range messageIDs {
		if id == 0 {
			continue
		}
		if err := d.notifier.Delete(ctx, chatID, id); err != nil {
			log.Printf("delete message %d in chat %d failed: %v", id, chatID, err)
		}
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return strings.TrimSpace(s)
}
