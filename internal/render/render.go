package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"meetup-service/internal/models"
)

// At most this many participants are mentioned inline; the rest are
// summarized by count.
const mentionCap = 30

// Mention renders a clickable user mention.
func Mention(userID int64) string {
	return fmt.Sprintf("[user](tg://user?id=%d)", userID)
}

// MentionList joins capped mentions and summarizes the overflow.
func MentionList(userIDs []int64) string {
	shown := userIDs
	if len(shown) > mentionCap {
		shown = shown[:mentionCap]
	}
	mentions := make([]string, 0, len(shown))
	for _, id := range shown {
		mentions = append(mentions, Mention(id))
	}
	text := strings.Join(mentions, ", ")
	if extra := len(userIDs) - mentionCap; extra > 0 {
		text += fmt.Sprintf(" …and %d more", extra)
	}
	return text
}

// PollLink builds a deep link to the poll message. Only supergroup chat
// ids (the -100 prefix) have addressable message links.
func PollLink(chatID, pollMessageID int64) string {
	s := strconv.FormatInt(chatID, 10)
	if !strings.HasPrefix(s, "-100") {
		return ""
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", s[4:], pollMessageID)
}

// FormatCard renders the event card body shown in the chat.
func FormatCard(event models.Event, loc *time.Location) string {
	start := event.StartsAt.In(loc)
	text := fmt.Sprintf("📅 **%s**\n🕒 %s (%s)\n📍 %s\n💸 %s",
		event.Title, start.Format("2006-01-02 15:04"), loc.String(), event.Location, event.Cost)
	if details := strings.TrimSpace(event.Details); details != "" {
		text += "\n\n📝 " + details
	}
	return text
}
