package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"meetup-service/internal/mocks"
	"meetup-service/internal/models"
	"meetup-service/internal/repositories"
	"meetup-service/internal/sign"
)

type calendarFixture struct {
	events *mocks.EventRepositoryMock
	votes  *mocks.VoteRepositoryMock
	signer *sign.Signer
	router *gin.Engine
	now    time.Time
}

func newCalendarFixture() *calendarFixture {
	gin.SetMode(gin.TestMode)

	f := &calendarFixture{
		events: new(mocks.EventRepositoryMock),
		votes:  new(mocks.VoteRepositoryMock),
		signer: sign.New("test-token"),
		now:    time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}

	handler := NewCalendarHandler(f.events, f.votes, f.signer)
	handler.now = func() time.Time { return f.now }

	f.router = gin.New()
	f.router.GET("/calendar/upcoming", handler.Upcoming)
	f.router.GET("/calendar/exportFile", handler.ExportFile)
	return f
}

func TestUpcomingRequiresChatSignature(t *testing.T) {
	f := newCalendarFixture()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar/upcoming?chatId=-100&sig=bogus", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.events.AssertNotCalled(t, "ListUpcoming", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpcomingRejectsMissingChatID(t *testing.T) {
	f := newCalendarFixture()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar/upcoming", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpcomingListsEvents(t *testing.T) {
	f := newCalendarFixture()
	chatID := int64(-1001234567890)

	upcoming := []models.Event{
		{ID: 1, ChatID: chatID, PollID: "p1", StartsAt: f.now.Add(24 * time.Hour), Title: "Dinner", Cost: "20eur", Location: "Old Town"},
		{ID: 2, ChatID: chatID, PollID: "p2", StartsAt: f.now.Add(72 * time.Hour), Title: "Hike", Cost: "-", Location: "-"},
	}
	f.events.On("ListUpcoming", mock.Anything, chatID, f.now, 10).Return(upcoming, nil).Once()

	w := httptest.NewRecorder()
	url := "/calendar/upcoming?chatId=-1001234567890&sig=" + f.signer.ChatSignature(chatID)
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Events []models.EventSummary `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Events, 2)
	assert.Equal(t, "Dinner", body.Events[0].Title)
	assert.Equal(t, "unknown", body.Events[0].MyVote)
}

func TestUpcomingAnnotatesCallerVotes(t *testing.T) {
	f := newCalendarFixture()
	chatID := int64(-1001234567890)

	upcoming := []models.Event{
		{ID: 1, ChatID: chatID, PollID: "p1", StartsAt: f.now.Add(24 * time.Hour), Title: "Dinner"},
		{ID: 2, ChatID: chatID, PollID: "p2", StartsAt: f.now.Add(72 * time.Hour), Title: "Hike"},
	}
	f.events.On("ListUpcoming", mock.Anything, chatID, f.now, 10).Return(upcoming, nil).Once()

	declined := models.OptionDeclined
	f.votes.On("GetVote", mock.Anything, "p1", int64(9)).
		Return(models.Vote{PollID: "p1", UserID: 9, OptionID: &declined}, nil).Once()
	f.votes.On("GetVote", mock.Anything, "p2", int64(9)).
		Return(models.Vote{}, repositories.ErrVoteNotFound).Once()

	url := "/calendar/upcoming?chatId=-1001234567890&sig=" + f.signer.ChatSignature(chatID) +
		"&participantId=9&participantSig=" + f.signer.UserSignature(chatID, 9)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Events []models.EventSummary `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Events, 2)
	assert.Equal(t, "declined", body.Events[0].MyVote)
	assert.Equal(t, "none", body.Events[1].MyVote)
}

func TestExportFileAcceptsChatSignature(t *testing.T) {
	f := newCalendarFixture()
	event := storedEvent()
	f.events.On("GetEvent", mock.Anything, int64(7)).Return(event, nil).Once()

	url := "/calendar/exportFile?eventId=7&chatSig=" + f.signer.ChatSignature(event.ChatID)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="event_7.ics"`)
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "SUMMARY:Dinner")
}

func TestExportFileAcceptsUserSignature(t *testing.T) {
	f := newCalendarFixture()
	event := storedEvent()
	f.events.On("GetEvent", mock.Anything, int64(7)).Return(event, nil).Once()

	url := "/calendar/exportFile?eventId=7&participantId=9&participantSig=" + f.signer.UserSignature(event.ChatID, 9)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportFileRejectsUnauthenticated(t *testing.T) {
	f := newCalendarFixture()
	event := storedEvent()
	f.events.On("GetEvent", mock.Anything, int64(7)).Return(event, nil).Once()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar/exportFile?eventId=7", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportFileUnknownEvent(t *testing.T) {
	f := newCalendarFixture()
	f.events.On("GetEvent", mock.Anything, int64(404)).Return(models.Event{}, repositories.ErrEventNotFound).Once()

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar/exportFile?eventId=404", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
