package scraper

import (
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"court-sniper/browser"
	"court-sniper/types"
)

// Horizon is how far ahead slots are considered. A slot at exactly
// now+Horizon is excluded.
const Horizon = 72 * time.Hour

// Weekly scheduler grid geometry: the today column sits at ~2px, each
// further day is one 208px column to the right.
const (
	colOriginPx = 2.0
	colWidthPx  = 208.0
)

var (
	timeLabelRe  = regexp.MustCompile(`(\d{1,2}):00\s*(AM|PM)`)
	onclickURLRe = regexp.MustCompile(`["']([^"']*perfectmind[^"']*)["']`)
)

// ExtractSlots parses the schedule grid of a verified detail page into
// slots for the given court. It must only ever be called after the
// navigator confirmed the page identity; every emitted slot carries the
// verified court id. Zero slots is a normal outcome (fully booked).
//
// now must already be in the booking site's local timezone.
func ExtractSlots(d browser.Driver, court types.CourtID, now time.Time) ([]types.Slot, error) {
	if err := d.WaitForSelector("#scheduler", 30*time.Second); err != nil {
		return nil, err
	}
	d.Wait(time.Second) // let the grid finish rendering

	pageURL, _ := d.CurrentURL()
	minStart := now.Truncate(time.Minute)
	maxStart := now.Add(Horizon)

	cells, err := d.QueryAll("#scheduler [role='gridcell']")
	if err != nil {
		return nil, err
	}
	log.Printf("  → Found %d gridcells in #scheduler", len(cells))

	var slots []types.Slot
	for _, cell := range cells {
		spans, err := cell.QueryAll("span[title]")
		if err != nil {
			continue // malformed cell, keep going
		}
		for _, span := range spans {
			title, err := span.Attr("title")
			if err != nil || title == "" {
				continue
			}
			if !strings.Contains(title, "AM") && !strings.Contains(title, "PM") {
				continue
			}

			raw, _ := span.Text()
			status, bookable := classifyBookable(raw)
			if !bookable {
				continue
			}

			hour, ok := parseHourLabel(title)
			if !ok {
				continue
			}

			dayOffset := cellDayOffset(cell)
			day := now.AddDate(0, 0, dayOffset)
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location())

			if start.Before(minStart) || !start.Before(maxStart) {
				continue
			}

			slots = append(slots, types.Slot{
				Court:   court,
				Start:   start,
				Status:  status,
				Link:    resolveLink(cell, pageURL),
				RawText: strings.TrimSpace(raw),
			})
		}
	}

	log.Printf("  → Found %d slots for %s", len(slots), court)
	return slots, nil
}

// classifyBookable maps a label's text onto a slot status. Unrecognized
// phrasing means not bookable and is silently skipped.
func classifyBookable(text string) (types.SlotStatus, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(t, "bookable 24hrs in advance"),
		strings.Contains(t, "bookable 24 hours in advance"):
		return types.StatusBookable24h, true
	case strings.Contains(t, "book now"):
		return types.StatusOpen, true
	case strings.Contains(t, "book") && len(t) < 50:
		return types.StatusOpen, true
	}
	return "", false
}

// parseHourLabel pulls the starting hour out of a time-range title like
// "03:00 PM-04:00 PM" and returns it in 24h form.
func parseHourLabel(title string) (int, bool) {
	m := timeLabelRe.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, false
	}
	if m[2] == "PM" && hour != 12 {
		hour += 12
	} else if m[2] == "AM" && hour == 12 {
		hour = 0
	}
	return hour, true
}

// cellDayOffset resolves the calendar day of a gridcell from its horizontal
// position in the weekly grid. Unreadable position defaults to today.
func cellDayOffset(cell browser.Element) int {
	left, err := cell.LeftPx()
	if err != nil {
		return 0
	}
	if left <= 10 {
		return 0
	}
	return int(math.Round((left - colOriginPx) / colWidthPx))
}

// resolveLink picks a booking link for the cell: explicit anchor first, then
// a booking URL embedded in the onclick handler, else the page itself.
func resolveLink(cell browser.Element, pageURL string) string {
	if anchors, err := cell.QueryAll("a[href]"); err == nil && len(anchors) > 0 {
		if href, err := anchors[0].Attr("href"); err == nil && href != "" {
			return href
		}
	}
	if onclick, err := cell.Attr("onclick"); err == nil && onclick != "" {
		if m := onclickURLRe.FindStringSubmatch(onclick); m != nil {
			return m[1]
		}
	}
	return pageURL
}
