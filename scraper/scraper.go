package scraper

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"court-sniper/browser"
	"court-sniper/types"

	"github.com/PuerkitoBio/goquery"
)

// The list widget shows 10 results per page by default; courts past that
// only appear after the page-size precondition is applied.
const defaultPageSize = 10

// ProgressFunc is invoked once per court before it is processed and once at
// run completion (with an empty court id).
type ProgressFunc func(index, total int, message string, court types.CourtID)

// Options configures a scrape run.
type Options struct {
	BaseURL string
	// Courts overrides discovery when non-empty.
	Courts []types.CourtID
	// Now supplies the current instant in the booking site's timezone.
	// Defaults to time.Now.
	Now func() time.Time
	// OnProgress may be nil.
	OnProgress ProgressFunc
	// PollInterval/WaitBudget tune the navigator; zero means defaults.
	PollInterval time.Duration
	WaitBudget   time.Duration
}

// Scrape walks every target court once: navigate, verify, extract, return
// to the list. Per-court failures skip that court; an unrecoverable
// navigation state aborts the queue. The returned slots are always the
// best-effort result so far, even on error.
func Scrape(d browser.Driver, opts Options) ([]types.Slot, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(int, int, string, types.CourtID) {}
	}

	nav := NewNavigator(d, Config{
		BaseURL:      opts.BaseURL,
		PollInterval: opts.PollInterval,
		WaitBudget:   opts.WaitBudget,
	})

	if err := nav.OpenList(); err != nil {
		return nil, err
	}

	courts := opts.Courts
	if len(courts) == 0 {
		nav.EnsureFullList()
		courts = DiscoverCourts(d)
	}
	if len(courts) == 0 {
		return nil, errors.New("no courts found on booking page")
	}
	log.Printf("🎾 Processing %d courts: %v", len(courts), courts)

	var results []types.Slot
	processed := make(map[types.CourtID]bool)

	for _, court := range courts {
		if processed[court] {
			continue
		}
		processed[court] = true

		progress(len(processed), len(courts), fmt.Sprintf("Grabbing %s timings...", court), court)
		log.Printf("🔍 Processing %s (%d/%d)", court, len(processed), len(courts))

		// Courts past the default page size vanish when the list resets to
		// its paginated view; re-apply the precondition first.
		if court.Num() > defaultPageSize {
			nav.EnsureFullList()
		}

		if err := nav.OpenCourt(court); err != nil {
			log.Printf("⚠️ Skipping %s: %v", court, err)
			continue
		}

		slots, err := ExtractSlots(d, court, now())
		if err != nil {
			log.Printf("⚠️ Extraction failed for %s: %v", court, err)
		} else {
			results = append(results, slots...)
		}

		if err := nav.BackToList(); err != nil {
			log.Printf("❌ Could not return to court list after %s, stopping run", court)
			progress(len(courts), len(courts), "Scraping aborted", "")
			return results, err
		}
	}

	log.Printf("✅ Scraping complete. Found %d total slots", len(results))
	progress(len(courts), len(courts), "Scraping complete!", "")
	return results, nil
}

// DiscoverCourts enumerates courts visible on the list page, normalized and
// sorted by court number. It retries a few times because the list renders
// incrementally.
func DiscoverCourts(d browser.Driver) []types.CourtID {
	const attempts = 3

	var courts []types.CourtID
	for attempt := 1; attempt <= attempts; attempt++ {
		courts = discoverOnce(d)
		log.Printf("📋 Discovery attempt %d/%d: found %d courts", attempt, attempts, len(courts))
		if len(courts) >= defaultPageSize {
			break
		}
		if attempt < attempts {
			d.Wait(2 * time.Second)
		}
	}

	sort.Slice(courts, func(i, j int) bool { return courts[i].Num() < courts[j].Num() })
	return courts
}

func discoverOnce(d browser.Driver) []types.CourtID {
	html, err := d.HTML("body")
	if err != nil {
		log.Printf("⚠️ Could not read list page markup: %v", err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("⚠️ Could not parse list page markup: %v", err)
		return nil
	}

	seen := make(map[types.CourtID]bool)
	var courts []types.CourtID

	// Court cards are list items carrying the label plus a Choose control.
	doc.Find("li, [role='listitem']").Each(func(i int, s *goquery.Selection) {
		text := s.Text()
		if !strings.Contains(text, "Choose") && !strings.Contains(text, "Read more") {
			return
		}
		id := types.NormalizeCourt(text)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		courts = append(courts, id)
	})

	// Fallback for markup without list items: scan all court mentions.
	if len(courts) == 0 {
		for _, m := range courtMentionRe.FindAllString(doc.Text(), -1) {
			id := types.NormalizeCourt(m)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			courts = append(courts, id)
		}
	}

	return courts
}
