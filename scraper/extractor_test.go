package scraper

import (
	"testing"
	"time"

	"court-sniper/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailDriver(court types.CourtID, cells ...*fakeEl) *fakeDriver {
	d := newFakeDriver()
	d.state = "detail"
	d.detail = court
	d.url = d.baseURL + "perfectmind/facility/court-" + court.ShortNum()
	d.cells[court] = cells
	return d
}

func TestExtractSlotsHorizonBounds(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	threeDaysOut := 2 + 3*208.0

	d := detailDriver("Court 01",
		bookableCell("09:00 AM-10:00 AM", "Book Now!", 2),           // already started
		bookableCell("10:00 AM-11:00 AM", "Book Now!", 2),           // starts exactly now
		bookableCell("09:00 AM-10:00 AM", "Book Now!", threeDaysOut), // last one inside
		bookableCell("10:00 AM-11:00 AM", "Book Now!", threeDaysOut), // exactly now+72h
	)

	slots, err := ExtractSlots(d, "Court 01", now)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, now, slots[0].Start)
	assert.Equal(t, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), slots[1].Start)
	for _, s := range slots {
		assert.Equal(t, types.CourtID("Court 01"), s.Court)
	}
}

func TestExtractSlotsSkipsUnbookableLabels(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	d := detailDriver("Court 03",
		bookableCell("11:00 AM-12:00 PM", "Closed for maintenance", 2),
		bookableCell("01:00 PM-02:00 PM", "Bookable 24hrs in advance", 2),
		bookableCell("Court rental info", "Book Now!", 2), // no time range in the label
	)

	slots, err := ExtractSlots(d, "Court 03", now)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, types.StatusBookable24h, slots[0].Status)
	assert.Equal(t, time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC), slots[0].Start)
}

func TestClassifyBookable(t *testing.T) {
	cases := []struct {
		text     string
		status   types.SlotStatus
		bookable bool
	}{
		{"Book Now!", types.StatusOpen, true},
		{"  book now ", types.StatusOpen, true},
		{"Bookable 24hrs in advance", types.StatusBookable24h, true},
		{"Bookable 24 hours in advance", types.StatusBookable24h, true},
		{"Book", types.StatusOpen, true},
		{"Closed", "", false},
		{"Unavailable", "", false},
		{"To book this facility please phone the front desk during opening hours", "", false},
	}
	for _, tc := range cases {
		status, bookable := classifyBookable(tc.text)
		assert.Equal(t, tc.bookable, bookable, tc.text)
		assert.Equal(t, tc.status, status, tc.text)
	}
}

func TestParseHourLabel(t *testing.T) {
	cases := []struct {
		title string
		hour  int
		ok    bool
	}{
		{"09:00 AM-10:00 AM", 9, true},
		{"12:00 PM-01:00 PM", 12, true},
		{"12:00 AM-01:00 AM", 0, true},
		{"03:00 PM-04:00 PM", 15, true},
		{"11:00 PM-12:00 AM", 23, true},
		{"no time here", 0, false},
	}
	for _, tc := range cases {
		hour, ok := parseHourLabel(tc.title)
		assert.Equal(t, tc.ok, ok, tc.title)
		assert.Equal(t, tc.hour, hour, tc.title)
	}
}

func TestCellDayOffset(t *testing.T) {
	assert.Equal(t, 0, cellDayOffset(&fakeEl{left: 2}))
	assert.Equal(t, 0, cellDayOffset(&fakeEl{left: 9.5}))
	assert.Equal(t, 1, cellDayOffset(&fakeEl{left: 210}))
	assert.Equal(t, 2, cellDayOffset(&fakeEl{left: 415}))
	assert.Equal(t, 6, cellDayOffset(&fakeEl{left: 2 + 6*208}))
}

func TestResolveLink(t *testing.T) {
	pageURL := "https://example.com/schedule"

	withAnchor := &fakeEl{children: map[string][]*fakeEl{
		"a[href]": {{attrs: map[string]string{"href": "https://example.com/book/42"}}},
	}}
	assert.Equal(t, "https://example.com/book/42", resolveLink(withAnchor, pageURL))

	withOnclick := &fakeEl{attrs: map[string]string{
		"onclick": `openBooking("https://clients.perfectmind.com/book/123")`,
	}}
	assert.Equal(t, "https://clients.perfectmind.com/book/123", resolveLink(withOnclick, pageURL))

	bare := &fakeEl{attrs: map[string]string{}}
	assert.Equal(t, pageURL, resolveLink(bare, pageURL))
}
