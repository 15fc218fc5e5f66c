package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"meetup-service/internal/middleware"
	"meetup-service/internal/models"
	"meetup-service/internal/notifier"
	"meetup-service/internal/repositories"
	"meetup-service/internal/sign"
	"meetup-service/internal/telemetry"
)

// EventHandler serves the mini-app event endpoints.
type EventHandler struct {
	events    repositories.EventRepository
	votes     repositories.VoteRepository
	reminders repositories.ReminderRepository
	notifier  notifier.Notifier
	signer    *sign.Signer
	audit     *telemetry.AuditEmitter
	now       func() time.Time
}

// NewEventHandler builds an EventHandler.
func NewEventHandler(events repositories.EventRepository, votes repositories.VoteRepository, reminders repositories.ReminderRepository, n notifier.Notifier, signer *sign.Signer, audit *telemetry.AuditEmitter) *EventHandler {
	return &EventHandler{
		events:    events,
		votes:     votes,
		reminders: reminders,
		notifier:  n,
		signer:    signer,
		audit:     audit,
		now:       time.Now,
	}
}

type eventResponse struct {
	ID       int64     `json:"id"`
	ChatID   int64     `json:"chat_id"`
	StartsAt time.Time `json:"starts_at"`
	Title    string    `json:"title"`
	Cost     string    `json:"cost"`
	Location string    `json:"location"`
	Details  string    `json:"details"`
	MyVote   string    `json:"my_vote"`
}

// GetEvent returns one event. Reads require the chat-scope signature;
// participant identity only annotates the caller's own vote.
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		respondEventLoadError(c, err)
		return
	}

	if !h.signer.VerifyChat(c.Query("sig"), event.ChatID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid chat signature"})
		return
	}

	myVote := "unknown"
	if userID, ok := h.participantIdentity(c, event.ChatID); ok {
		vote, err := h.votes.GetVote(c.Request.Context(), event.PollID, userID)
		switch {
		case err == nil:
			myVote = models.OptionName(vote.OptionID)
		case errors.Is(err, repositories.ErrVoteNotFound):
			myVote = "none"
		}
	}

	c.JSON(http.StatusOK, eventResponse{
		ID:       event.ID,
		ChatID:   event.ChatID,
		StartsAt: event.StartsAt,
		Title:    event.Title,
		Cost:     event.Cost,
		Location: event.Location,
		Details:  event.Details,
		MyVote:   myVote,
	})
}

type eventPatch struct {
	StartsAt string `json:"starts_at" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Cost     string `json:"cost"`
	Location string `json:"location"`
	Details  string `json:"details"`
}

// UpdateEvent rewrites the event in place and re-derives its reminder
// schedule when the start time changed.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var patch eventPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startsAt, err := time.Parse(time.RFC3339, patch.StartsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "starts_at must be RFC3339 with a timezone offset, e.g. 2026-01-10T19:00:00+02:00"})
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		respondEventLoadError(c, err)
		return
	}

	userID, ok := h.requireOwner(c, event)
	if !ok {
		return
	}

	if err := h.events.UpdateEvent(c.Request.Context(), event.ID, startsAt, patch.Title, patch.Cost, patch.Location, patch.Details); err != nil {
		respondEventLoadError(c, err)
		return
	}

	if !event.StartsAt.Equal(startsAt) {
		if err := h.reminders.ReplaceReminders(c.Request.Context(), event.ID, startsAt, h.now()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reschedule reminders"})
			return
		}
	}

	h.audit.Emit(c.Request.Context(), "event_updated", event.ID, "event updated via mini-app", &userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteEvent removes the event together with its votes and reminders,
// then takes the card and poll messages out of the chat.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		respondEventLoadError(c, err)
		return
	}

	userID, ok := h.requireOwner(c, event)
	if !ok {
		return
	}

	if err := h.events.DeleteEvent(c.Request.Context(), event.ID); err != nil {
		respondEventLoadError(c, err)
		return
	}

	if event.CardMessageID != nil {
		if err := h.notifier.Delete(c.Request.Context(), event.ChatID, *event.CardMessageID); err != nil {
			log.Printf("delete card message for event %d failed: %v", event.ID, err)
		}
	}
	if err := h.notifier.Delete(c.Request.Context(), event.ChatID, event.PollMessageID); err != nil {
		log.Printf("delete poll message for event %d failed: %v", event.ID, err)
	}

	h.audit.Emit(c.Request.Context(), "event_deleted", event.ID, "event deleted via mini-app", &userID)
	c.Status(http.StatusNoContent)
}

// participantIdentity resolves an optional participant identity: a
// verified launch context wins, otherwise the participantId +
// participantSig query pair is checked against the event's chat.
func (h *EventHandler) participantIdentity(c *gin.Context, chatID int64) (int64, bool) {
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

// requireOwner establishes identity and checks ownership. Events with no
// recorded creator always reject mutation; there is no adopt-ownership
// path.
func (h *EventHandler) requireOwner(c *gin.Context, event models.Event) (int64, bool) {
	userID, ok := h.participantIdentity(c, event.ChatID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "proof of identity required"})
		return 0, false
	}

	if event.CreatorUserID == nil || *event.CreatorUserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the event creator may do that"})
		return 0, false
	}
	return userID, true
}

func parseEventID(c *gin.Context) (int64, bool) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, false
	}
	return eventID, true
}

func respondEventLoadError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrEventNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load event"})
}
