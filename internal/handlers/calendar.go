package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"meetup-service/internal/ics"
	"meetup-service/internal/middleware"
	"meetup-service/internal/models"
	"meetup-service/internal/repositories"
	"meetup-service/internal/sign"
)

const upcomingLimit = 10

// CalendarHandler serves the chat calendar listing and the ICS export.
type CalendarHandler struct {
	events repositories.EventRepository
	votes  repositories.VoteRepository
	signer *sign.Signer
	now    func() time.Time
}

// NewCalendarHandler builds a CalendarHandler.
func NewCalendarHandler(events repositories.EventRepository, votes repositories.VoteRepository, signer *sign.Signer) *CalendarHandler {
	return &CalendarHandler{
		events: events,
		votes:  votes,
		signer: signer,
		now:    time.Now,
	}
}

// Upcoming lists the chat's next events, optionally annotated with the
// caller's current votes.
func (h *CalendarHandler) Upcoming(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Query("chatId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	if !h.signer.VerifyChat(c.Query("sig"), chatID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid chat signature"})
		return
	}

	events, err := h.events.ListUpcoming(c.Request.Context(), chatID, h.now(), upcomingLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}

	participantID, hasIdentity := h.participantIdentity(c, chatID)

	summaries := make([]models.EventSummary, 0, len(events))
	for _, event := range events {
		myVote := "unknown"
		if hasIdentity {
			vote, err := h.votes.GetVote(c.Request.Context(), event.PollID, participantID)
			switch {
			case err == nil:
				myVote = models.OptionName(vote.OptionID)
			case errors.Is(err, repositories.ErrVoteNotFound):
				myVote = "none"
			}
		}
		summaries = append(summaries, models.EventSummary{
			ID:       event.ID,
			StartsAt: event.StartsAt,
			Title:    event.Title,
			Cost:     event.Cost,
			Location: event.Location,
			MyVote:   myVote,
		})
	}

	c.JSON(http.StatusOK, gin.H{"events": summaries})
}

// ExportFile returns the event as a calendar-file attachment. Either a
// user-scope signature or the chat-scope signature clears the request.
func (h *CalendarHandler) ExportFile(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Query("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		respondEventLoadError(c, err)
		return
	}

	_, hasUser := h.participantIdentity(c, event.ChatID)
	if !hasUser && !h.signer.VerifyChat(c.Query("chatSig"), event.ChatID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return
	}

	description := "Cost: " + event.Cost
	if details := strings.TrimSpace(event.Details); details != "" {
		description += "\n\n" + details
	}
	doc := ics.Render(event.StartsAt, event.Title, event.Location, description)

	filename := fmt.Sprintf("event_%d.ics", event.ID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(doc))
}

func (h *CalendarHandler) participantIdentity(c *gin.Context, chatID int64) (int64, bool) {
	if userID, ok := middleware.AuthUser(c); ok {
		return userID, true
	}

	rawID := c.Query("participantId")
	if rawID == "" {
		return 0, false
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, false
	}
	if !h.signer.VerifyUser(c.Query("participantSig"), chatID, userID) {
		return 0, false
	}
	return userID, true
}
