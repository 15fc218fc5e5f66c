package platform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"meetup-service/internal/actions"
	"meetup-service/internal/mocks"
	"meetup-service/internal/models"
	"meetup-service/internal/repositories"
)

func newTestConsumer(events *mocks.EventRepositoryMock, votes *mocks.VoteRepositoryMock, dispatcher *actions.Dispatcher) (*Consumer, time.Time) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	c := &Consumer{
		events:     events,
		votes:      votes,
		dispatcher: dispatcher,
		now:        func() time.Time { return now },
	}
	return c, now
}

func TestHandleRecordsPollAnswer(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	votes := new(mocks.VoteRepositoryMock)
	c, now := newTestConsumer(events, votes, nil)

	events.On("GetEventByPoll", mock.Anything, "poll-7").Return(models.Event{ID: 7, PollID: "poll-7"}, nil).Once()
	votes.On("RecordVote", mock.Anything, "poll-7", int64(9), mock.MatchedBy(func(opt *int) bool {
		return opt != nil && *opt == 1
	}), now).Return(nil).Once()

	body := []byte(`{"type":"poll_answer","user_id":9,"poll_id":"poll-7","option_ids":[1]}`)
	require.NoError(t, c.handle(context.Background(), body))

	votes.AssertExpectations(t)
}

func TestHandleRecordsRetractedAnswer(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	votes := new(mocks.VoteRepositoryMock)
	c, now := newTestConsumer(events, votes, nil)

	events.On("GetEventByPoll", mock.Anything, "poll-7").Return(models.Event{ID: 7, PollID: "poll-7"}, nil).Once()
	votes.On("RecordVote", mock.Anything, "poll-7", int64(9), (*int)(nil), now).Return(nil).Once()

	body := []byte(`{"type":"poll_answer","user_id":9,"poll_id":"poll-7","option_ids":[]}`)
	require.NoError(t, c.handle(context.Background(), body))

	votes.AssertExpectations(t)
}

func TestHandleIgnoresForeignPoll(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	votes := new(mocks.VoteRepositoryMock)
	c, _ := newTestConsumer(events, votes, nil)

	events.On("GetEventByPoll", mock.Anything, "someone-elses-poll").
		Return(models.Event{}, repositories.ErrEventNotFound).Once()

	body := []byte(`{"type":"poll_answer","user_id":9,"poll_id":"someone-elses-poll","option_ids":[0]}`)
	require.NoError(t, c.handle(context.Background(), body))

	votes.AssertNotCalled(t, "RecordVote", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleRejectsOutOfRangeOption(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	votes := new(mocks.VoteRepositoryMock)
	c, _ := newTestConsumer(events, votes, nil)

	events.On("GetEventByPoll", mock.Anything, "poll-7").Return(models.Event{ID: 7, PollID: "poll-7"}, nil).Once()

	body := []byte(`{"type":"poll_answer","user_id":9,"poll_id":"poll-7","option_ids":[5]}`)
	err := c.handle(context.Background(), body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "option index 5")

	votes.AssertNotCalled(t, "RecordVote", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDispatchesFormSubmission(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	reminders := new(mocks.ReminderRepositoryMock)
	notif := new(mocks.NotifierMock)
	dispatcher := actions.NewDispatcher(events, reminders, notif, time.UTC)
	c, _ := newTestConsumer(events, new(mocks.VoteRepositoryMock), dispatcher)

	event := models.Event{ID: 7, ChatID: -100, CreatorUserID: func() *int64 { v := int64(9); return &v }()}
	events.On("GetEvent", mock.Anything, int64(7)).Return(event, nil).Once()
	events.On("DeleteEvent", mock.Anything, int64(7)).Return(nil).Once()

	body := []byte(`{"type":"form_submission","chat_id":-100,"user_id":9,"data":{"action":"delete","event_id":7}}`)
	require.NoError(t, c.handle(context.Background(), body))

	events.AssertExpectations(t)
}

func TestHandleRejectsUnknownUpdateType(t *testing.T) {
	c, _ := newTestConsumer(new(mocks.EventRepositoryMock), new(mocks.VoteRepositoryMock), nil)

	err := c.handle(context.Background(), []byte(`{"type":"chat_member"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown update type")
}

func TestHandleRejectsMalformedBody(t *testing.T) {
	c, _ := newTestConsumer(new(mocks.EventRepositoryMock), new(mocks.VoteRepositoryMock), nil)

	require.Error(t, c.handle(context.Background(), []byte(`{"type":`)))
}
