package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CourtID is the normalized court label, e.g. "Court 01".
// Ordering is by the embedded number, never lexical.
type CourtID string

var courtNumRe = regexp.MustCompile(`(?i)Court\s+0?(\d+)`)

// NormalizeCourt turns any displayed label ("Court 1", "court 01", "Choose Court 1 Read more")
// into the canonical zero-padded form. Returns "" if no court number is present.
func NormalizeCourt(label string) CourtID {
	m := courtNumRe.FindStringSubmatch(label)
	if m == nil {
		return ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	return CourtID(fmt.Sprintf("Court %02d", n))
}

// Num returns the embedded court number, or 0 if the id is malformed.
func (c CourtID) Num() int {
	m := courtNumRe.FindStringSubmatch(string(c))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// ShortNum returns the number without the "Court " prefix, e.g. "01".
func (c CourtID) ShortNum() string {
	parts := strings.Fields(string(c))
	if len(parts) < 2 {
		return string(c)
	}
	return parts[len(parts)-1]
}

// SlotStatus describes how a slot can be booked right now.
type SlotStatus string

const (
	StatusOpen        SlotStatus = "Open"
	StatusBookable24h SlotStatus = "Bookable in 24h"
)

// Slot is one hour-granularity availability record for one court.
// Start is in the booking site's local timezone.
type Slot struct {
	Court   CourtID    `json:"court"`
	Start   time.Time  `json:"start"`
	Status  SlotStatus `json:"status"`
	Link    string     `json:"link"`
	RawText string     `json:"raw_text"`
}

// TwoHourBlock is two back-to-back slots on the same court treated as one
// continuous window. Derived only, never persisted.
type TwoHourBlock struct {
	Court  CourtID
	Start  time.Time
	End    time.Time
	First  Slot
	Second Slot
}

// TimeBlockGroup combines every court available at the same (date, hour)
// into one calendar entry. Derived only, never persisted.
type TimeBlockGroup struct {
	Date      string // YYYY-MM-DD
	Hour      int    // 0-23
	Courts    []CourtID
	IsTwoHour bool
	Link      string
}

// Title renders the group header, e.g. "Court 03" or "Courts 01, 03, 07".
func (g TimeBlockGroup) Title() string {
	if len(g.Courts) == 1 {
		return string(g.Courts[0])
	}
	nums := make([]string, 0, len(g.Courts))
	for _, c := range g.Courts {
		nums = append(nums, c.ShortNum())
	}
	return "Courts " + strings.Join(nums, ", ")
}

// Subscription is a user's notification rule: one day of week plus an
// inclusive hour window. StartHour <= EndHour, both 0-23.
type Subscription struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id"`
	DayOfWeek string `json:"day_of_week"` // "Monday" ... "Sunday"
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

// NotificationRequest pairs a matching slot with the subscription it hit.
// Ephemeral: built per matching pass, never stored, never deduplicated.
type NotificationRequest struct {
	ChatID       int64
	Slot         Slot
	Subscription Subscription
}
