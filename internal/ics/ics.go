package ics

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Default event duration used for DTEND when no end time is tracked.
const defaultDuration = 2 * time.Hour

// Render produces an RFC 5545 VCALENDAR document for a single event.
// Times are normalized to UTC and the UID is derived from the semantic
// fields so re-exports of the same event stay stable.
func Render(start time.Time, title, location, description string) string {
	startUTC := start.UTC()
	endUTC := start.Add(defaultDuration).UTC()

	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s", start.Format(time.RFC3339), title, location)))
	uid := hex.EncodeToString(sum[:]) + "@meetup-service"

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"METHOD:PUBLISH",
		"PRODID:-//MeetupService//EN",
		"CALSCALE:GREGORIAN",
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + stamp(time.Now().UTC()),
		"DTSTART:" + stamp(startUTC),
		"DTEND:" + stamp(endUTC),
		"SUMMARY:" + escape(title),
		"LOCATION:" + escape(location),
		"DESCRIPTION:" + escape(description),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

func stamp(t time.Time) string {
	return t.Format("20060102T150405Z")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, ";", `\;`)
	return s
}
