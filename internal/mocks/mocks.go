package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"meetup-service/internal/models"
	"meetup-service/internal/repositories"
)

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) CreateEvent(ctx context.Context, input repositories.NewEventInput) (models.Event, error) {
	args := m.Called(ctx, input)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) GetEvent(ctx context.Context, eventID int64) (models.Event, error) {
	args := m.Called(ctx, eventID)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) GetEventByPoll(ctx context.Context, pollID string) (models.Event, error) {
	args := m.Called(ctx, pollID)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) UpdateEvent(ctx context.Context, eventID int64, startsAt time.Time, title, cost, location, details string) error {
	args := m.Called(ctx, eventID, startsAt, title, cost, location, details)
	return args.Error(0)
}

func (m *EventRepositoryMock) DeleteEvent(ctx context.Context, eventID int64) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *EventRepositoryMock) ListUpcoming(ctx context.Context, chatID int64, now time.Time, limit int) ([]models.Event, error) {
	args := m.Called(ctx, chatID, now, limit)
	var events []models.Event
	if val := args.Get(0); val != nil {
		events = val.([]models.Event)
	}
	return events, args.Error(1)
}

type VoteRepositoryMock struct {
	mock.Mock
}

func (m *VoteRepositoryMock) RecordVote(ctx context.Context, pollID string, userID int64, optionID *int, now time.Time) error {
	args := m.Called(ctx, pollID, userID, optionID, now)
	return args.Error(0)
}

func (m *VoteRepositoryMock) GetVote(ctx context.Context, pollID string, userID int64) (models.Vote, error) {
	args := m.Called(ctx, pollID, userID)
	var vote models.Vote
	if val := args.Get(0); val != nil {
		vote = val.(models.Vote)
	}
	return vote, args.Error(1)
}

func (m *VoteRepositoryMock) UsersWithOption(ctx context.Context, pollID string, optionID int) ([]int64, error) {
	args := m.Called(ctx, pollID, optionID)
	var userIDs []int64
	if val := args.Get(0); val != nil {
		userIDs = val.([]int64)
	}
	return userIDs, args.Error(1)
}

type ReminderRepositoryMock struct {
	mock.Mock
}

func (m *ReminderRepositoryMock) DueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	args := m.Called(ctx, now)
	var reminders []models.Reminder
	if val := args.Get(0); val != nil {
		reminders = val.([]models.Reminder)
	}
	return reminders, args.Error(1)
}

func (m *ReminderRepositoryMock) MarkSent(ctx context.Context, reminderID int64, now time.Time) error {
	args := m.Called(ctx, reminderID, now)
	return args.Error(0)
}

func (m *ReminderRepositoryMock) ReplaceReminders(ctx context.Context, eventID int64, startsAt, now time.Time) error {
	args := m.Called(ctx, eventID, startsAt, now)
	return args.Error(0)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *NotifierMock) EditText(ctx context.Context, chatID, messageID int64, text string) error {
	args := m.Called(ctx, chatID, messageID, text)
	return args.Error(0)
}

func (m *NotifierMock) Pin(ctx context.Context, chatID, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *NotifierMock) Delete(ctx context.Context, chatID, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *NotifierMock) SendDocument(ctx context.Context, chatID int64, filename, caption string, content []byte) error {
	args := m.Called(ctx, chatID, filename, caption, content)
	return args.Error(0)
}
