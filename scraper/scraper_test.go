package scraper

import (
	"testing"
	"time"

	"court-sniper/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastOptions keeps the polling loops from dragging tests out.
func fastOptions(d *fakeDriver) Options {
	return Options{
		BaseURL:      d.baseURL,
		Now:          func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) },
		PollInterval: time.Millisecond,
		WaitBudget:   40 * time.Millisecond,
	}
}

func TestScrapeCollectsVerifiedSlots(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.cells["Court 01"] = []*fakeEl{bookableCell("11:00 AM-12:00 PM", "Book Now!", 2)}
	d.cells["Court 02"] = []*fakeEl{bookableCell("03:00 PM-04:00 PM", "Book Now!", 210)}

	opts := fastOptions(d)
	opts.Courts = []types.CourtID{"Court 01", "Court 02"}

	slots, err := Scrape(d, opts)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, types.CourtID("Court 01"), slots[0].Court)
	assert.Equal(t, time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, types.CourtID("Court 02"), slots[1].Court)
	assert.Equal(t, time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC), slots[1].Start)
}

// A court whose Choose click lands on a different court's page must produce
// zero slots for the requested court, never misattributed data.
func TestScrapeSkipsMisdirectedCourt(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.misdirect["Court 01"] = "Court 02"
	d.cells["Court 02"] = []*fakeEl{bookableCell("11:00 AM-12:00 PM", "Book Now!", 2)}

	opts := fastOptions(d)
	opts.Courts = []types.CourtID{"Court 01"}

	slots, err := Scrape(d, opts)
	require.NoError(t, err)
	assert.Empty(t, slots, "misdirected court must yield no slots at all")
}

// History-back can silently fail; the run must recover by re-navigating to
// the list and keep going.
func TestScrapeRecoversWithDirectNavigation(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.backWorks = false
	d.cells["Court 01"] = []*fakeEl{bookableCell("11:00 AM-12:00 PM", "Book Now!", 2)}
	d.cells["Court 02"] = []*fakeEl{bookableCell("01:00 PM-02:00 PM", "Book Now!", 2)}

	opts := fastOptions(d)
	opts.Courts = []types.CourtID{"Court 01", "Court 02"}

	slots, err := Scrape(d, opts)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, types.CourtID("Court 01"), slots[0].Court)
	assert.Equal(t, types.CourtID("Court 02"), slots[1].Court)
	assert.GreaterOrEqual(t, d.listVisits, 2, "expected a fresh list navigation")
}

// When both back strategies fail the run aborts, but slots collected before
// the failure are still returned alongside the error.
func TestScrapeAbortsWhenListUnreachable(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.backWorks = false
	d.listBroken = true
	d.cells["Court 01"] = []*fakeEl{bookableCell("11:00 AM-12:00 PM", "Book Now!", 2)}

	opts := fastOptions(d)
	opts.Courts = []types.CourtID{"Court 01", "Court 02"}

	slots, err := Scrape(d, opts)
	require.ErrorIs(t, err, ErrUnrecoverable)
	require.Len(t, slots, 1, "partial results must survive the abort")
	assert.Equal(t, types.CourtID("Court 01"), slots[0].Court)
}

func TestScrapeDeduplicatesCourts(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.cells["Court 01"] = []*fakeEl{bookableCell("11:00 AM-12:00 PM", "Book Now!", 2)}

	opts := fastOptions(d)
	opts.Courts = []types.CourtID{"Court 01", "Court 01", "Court 01"}

	slots, err := Scrape(d, opts)
	require.NoError(t, err)
	assert.Len(t, slots, 1, "duplicate targets must be processed once")
}

func TestScrapeReportsProgress(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.cells["Court 01"] = []*fakeEl{bookableCell("11:00 AM-12:00 PM", "Book Now!", 2)}

	type call struct {
		index, total int
		message      string
		court        types.CourtID
	}
	var calls []call

	opts := fastOptions(d)
	opts.Courts = []types.CourtID{"Court 01"}
	opts.OnProgress = func(index, total int, message string, court types.CourtID) {
		calls = append(calls, call{index, total, message, court})
	}

	_, err := Scrape(d, opts)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, call{1, 1, "Grabbing Court 01 timings...", "Court 01"}, calls[0])
	assert.Equal(t, call{1, 1, "Scraping complete!", ""}, calls[1])
}

func TestDiscoverCourtsSortsByNumber(t *testing.T) {
	d := newFakeDriver("Court 10", "Court 2", "Court 1")
	d.openList()

	courts := DiscoverCourts(d)
	assert.Equal(t, []types.CourtID{"Court 01", "Court 02", "Court 10"}, courts)
}

func TestEnsureFullListIsIdempotent(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.selects = []*fakeEl{{
		value: "10",
		children: map[string][]*fakeEl{
			"option": {
				{text: "10", attrs: map[string]string{"value": "10"}},
				{text: "20", attrs: map[string]string{"value": "20"}},
			},
		},
	}}
	d.openList()

	nav := NewNavigator(d, Config{BaseURL: d.baseURL, PollInterval: time.Millisecond, WaitBudget: 40 * time.Millisecond})

	require.True(t, nav.EnsureFullList())
	assert.Equal(t, "20", d.selects[0].value)

	// Already at 20: nothing to do, still satisfied.
	require.True(t, nav.EnsureFullList())
	assert.Equal(t, "20", d.selects[0].value)
}

func TestNavigatorBackToListViaHistory(t *testing.T) {
	d := newFakeDriver("Court 01", "Court 02", "Court 03")
	d.openList()
	nav := NewNavigator(d, Config{BaseURL: d.baseURL, PollInterval: time.Millisecond, WaitBudget: 40 * time.Millisecond})

	require.NoError(t, nav.OpenCourt("Court 02"))
	require.NoError(t, nav.BackToList())
	assert.Equal(t, "list", d.state)
}
