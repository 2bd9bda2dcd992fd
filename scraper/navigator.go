package scraper

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"court-sniper/browser"
	"court-sniper/types"
)

var (
	// ErrUnrecoverable means both back-to-list strategies failed and the run
	// must abort. Results collected so far are still returned.
	ErrUnrecoverable = errors.New("cannot return to court list")

	// ErrVerification means the detail page could not be confirmed to belong
	// to the requested court within the wait budget. The target is skipped
	// with zero slots rather than risk attributing data to the wrong court.
	ErrVerification = errors.New("court verification failed")
)

// Config tunes the navigator's polling. Zero values fall back to the
// defaults the booking site needs in practice.
type Config struct {
	BaseURL      string
	PollInterval time.Duration // default 1s
	WaitBudget   time.Duration // default 30s
	SettleWait   time.Duration // short pause after page-changing actions, default 2s
}

func (c Config) withDefaults() Config {
	if c.PollInterval == 0 {
		c.PollInterval = time.Second
	}
	if c.WaitBudget == 0 {
		c.WaitBudget = 30 * time.Second
	}
	if c.SettleWait == 0 {
		c.SettleWait = 2 * time.Second
	}
	return c
}

// Ordered probes for the entry control on the landing page.
var bookButtonProbes = []probe{
	{Selector: "a", Text: "Book a Court"},
	{Selector: "button", Text: "Book a Court"},
	{Selector: "[href*='book']", Text: "Book"},
}

// Signals that the current page is a schedule/booking view. Any hit counts.
var scheduleIndicators = []string{
	"table",
	".calendar",
	"[class*='calendar']",
	"[class*='schedule']",
	"[class*='time-slot']",
	"td[onclick]",
	"div[onclick]",
	"[id*='calendar']",
	"[id*='schedule']",
}

var courtMentionRe = regexp.MustCompile(`(?i)Court\s+\d+`)

// Navigator drives list<->detail transitions on the booking site and owns
// every verification the scraper relies on. It never extracts anything
// itself: extraction only happens after OpenCourt returns nil.
type Navigator struct {
	d   browser.Driver
	cfg Config
}

func NewNavigator(d browser.Driver, cfg Config) *Navigator {
	return &Navigator{d: d, cfg: cfg.withDefaults()}
}

// courtMentions counts "Court N" occurrences in the page body. The list page
// shows many, a detail page at most a couple.
func (n *Navigator) courtMentions() int {
	body, err := n.d.InnerText("body")
	if err != nil {
		return 0
	}
	return len(courtMentionRe.FindAllString(body, -1))
}

// OpenList navigates to the booking root and opens the court list.
func (n *Navigator) OpenList() error {
	log.Printf("🌐 Navigating to %s", n.cfg.BaseURL)
	if err := n.d.NavigateTo(n.cfg.BaseURL); err != nil {
		return fmt.Errorf("opening booking page: %w", err)
	}
	n.d.Wait(n.cfg.SettleWait)

	btn, ok := resolveProbe(n.d, bookButtonProbes)
	if !ok {
		return errors.New("could not find 'Book a Court' button")
	}
	if err := btn.Click(); err != nil {
		if jsErr := btn.ClickJS(); jsErr != nil {
			return fmt.Errorf("clicking 'Book a Court': %w", err)
		}
	}
	log.Println("✅ Clicked 'Book a Court'")

	// The list needs a moment to settle; a partial list is handled later by
	// the per-court re-checks.
	n.d.Wait(n.cfg.SettleWait)
	if count := n.courtMentions(); count > 0 {
		log.Printf("📋 Found %d court mentions on list page", count)
	}
	return nil
}

// EnsureFullList sets the results-per-page select to 20 so every court fits
// on one page instead of paginating. Idempotent: a select already at 20 is
// left alone. Returns true if the precondition holds afterwards.
func (n *Navigator) EnsureFullList() bool {
	selects, err := n.d.QueryAll("select")
	if err != nil {
		log.Printf("⚠️ Error looking for page-size select: %v", err)
		return false
	}

	for _, sel := range selects {
		if v, err := sel.Value(); err == nil && v == "20" {
			return true
		}
	}

	for _, sel := range selects {
		opts, err := sel.QueryAll("option")
		if err != nil {
			continue
		}
		for _, opt := range opts {
			text, _ := opt.Text()
			val, _ := opt.Attr("value")
			if strings.TrimSpace(text) != "20" && val != "20" {
				continue
			}
			if err := sel.SetValue("20"); err != nil {
				continue
			}
			log.Println("✅ Set page size to 20 results")
			n.d.Wait(n.cfg.SettleWait)
			return true
		}
	}

	log.Println("⚠️ Could not set page size to 20, continuing with default")
	return false
}

// OpenCourt clicks the Choose control for the requested court and blocks
// until the destination page is verified to belong to that court.
func (n *Navigator) OpenCourt(court types.CourtID) error {
	// The list may have been lost by a previous navigation; recover first.
	if n.courtMentions() < 3 {
		log.Println("⚠️ Not on court list page, re-opening list...")
		if err := n.reopenList(); err != nil {
			return fmt.Errorf("court list not available: %w", err)
		}
	}

	var btn browser.Element
	err := retry(func() (bool, error) {
		b, ok := n.findChooseButton(court)
		if !ok {
			return false, nil
		}
		btn = b
		return true, nil
	}, 500*time.Millisecond, 10*time.Second)
	if err != nil {
		return fmt.Errorf("no Choose button for %s: %w", court, err)
	}

	if err := btn.ScrollIntoView(); err == nil {
		n.d.Wait(500 * time.Millisecond)
	}
	log.Printf("🖱 Clicking 'Choose' for %s...", court)
	if err := btn.Click(); err != nil {
		log.Printf("⚠️ Native click failed for %s, trying JavaScript click: %v", court, err)
		if jsErr := btn.ClickJS(); jsErr != nil {
			return fmt.Errorf("clicking Choose for %s: %w", court, jsErr)
		}
	}
	n.d.Wait(n.cfg.SettleWait)

	if err := n.waitForVerifiedSchedule(court); err != nil {
		return err
	}

	// The page can still swap underneath us between verification and
	// extraction; confirm one last time.
	if !n.verifyCourtOnPage(court) {
		log.Printf("❌ Final verification failed for %s", court)
		return ErrVerification
	}
	return nil
}

// findChooseButton resolves the Choose control for one court. Primary probe
// walks list items whose text names the court; secondary probe hits the
// aria-label the booking widget stamps on its confirm links.
func (n *Navigator) findChooseButton(court types.CourtID) (browser.Element, bool) {
	needle := fmt.Sprintf("Court %s", court.ShortNum())

	items, err := n.d.QueryAll("li[role='listitem'], [role='listitem'], li")
	if err == nil {
		for _, li := range items {
			text, err := li.Text()
			if err != nil || !strings.Contains(text, needle) {
				continue
			}
			if !strings.Contains(text, "Choose") && !strings.Contains(text, "Read more") {
				continue
			}
			btns, err := li.QueryAll("a[aria-label*='linkText'], a.pm-confirm-button, a[onclick*='onChooseClick']")
			if err != nil || len(btns) == 0 {
				continue
			}
			for _, b := range btns {
				btnText, _ := b.Text()
				onclick, _ := b.Attr("onclick")
				aria, _ := b.Attr("aria-label")
				if strings.Contains(strings.ToLower(btnText), "choose") ||
					strings.Contains(onclick, "onChooseClick") ||
					strings.Contains(aria, "linkText") {
					return b, true
				}
			}
		}
	}

	// Secondary: the confirm link sometimes carries the court name directly.
	els, err := n.d.QueryAll(fmt.Sprintf("a[aria-label*='%s']", needle))
	if err == nil && len(els) > 0 {
		return els[0], true
	}
	return nil, false
}

// waitForVerifiedSchedule polls until the loaded page is (a) not the court
// list, (b) showing schedule markup, (c) confirmed to name the requested
// court, and (d) at a plausible booking URL. All four must corroborate; on
// timeout the court is abandoned.
func (n *Navigator) waitForVerifiedSchedule(court types.CourtID) error {
	log.Printf("⏳ Waiting for verified schedule page for %s (budget %s)...", court, n.cfg.WaitBudget)

	err := retry(func() (bool, error) {
		if n.courtMentions() > 5 {
			return false, nil // still on the list page
		}
		if !anyPresent(n.d, scheduleIndicators) {
			return false, nil
		}
		if !n.verifyCourtOnPage(court) {
			return false, nil
		}
		url, err := n.d.CurrentURL()
		if err != nil {
			return false, nil
		}
		lower := strings.ToLower(url)
		if !strings.Contains(lower, "perfectmind") && !strings.Contains(lower, "book") &&
			!strings.Contains(lower, "schedule") && !strings.Contains(lower, "facility") {
			return false, nil
		}
		return true, nil
	}, n.cfg.PollInterval, n.cfg.WaitBudget)

	if err != nil {
		log.Printf("❌ Timeout verifying schedule page for %s", court)
		return fmt.Errorf("%w: %s", ErrVerification, court)
	}
	log.Printf("✅ Verified on correct schedule page for %s", court)
	return nil
}

// verifyCourtOnPage checks multiple independent signals that the current
// page belongs to the given court: page title, headings, body text (with an
// occurrence bound to reject list-like pages) and the URL. None of the
// signals is authoritative alone.
func (n *Navigator) verifyCourtOnPage(court types.CourtID) bool {
	// "Court 01" and "Court 1" both count.
	pattern, err := regexp.Compile(fmt.Sprintf(`(?i)Court\s+0?%d\b`, court.Num()))
	if err != nil {
		return false
	}

	if title, err := n.d.Title(); err == nil && pattern.MatchString(title) {
		return true
	}

	if headings, err := n.d.QueryAll("h1, h2, h3, h4, h5, h6"); err == nil {
		for _, h := range headings {
			if text, err := h.Text(); err == nil && pattern.MatchString(text) {
				return true
			}
		}
	}

	if body, err := n.d.InnerText("body"); err == nil && pattern.MatchString(body) {
		// Many distinct court mentions means we are looking at a list, not a
		// detail page, no matter what else matched.
		if len(courtMentionRe.FindAllString(body, -1)) <= 2 {
			return true
		}
	}

	if url, err := n.d.CurrentURL(); err == nil && pattern.MatchString(url) {
		return true
	}
	return false
}

// BackToList returns to the court list. Primary strategy is history-back
// with an independent post-condition; fallback is a fresh navigation to the
// root. If both fail the navigator is unrecoverable.
func (n *Navigator) BackToList() error {
	urlBefore, _ := n.d.CurrentURL()

	if err := n.d.Back(); err != nil {
		log.Printf("⚠️ go back failed: %v", err)
	}
	n.d.Wait(time.Second)

	urlAfter, _ := n.d.CurrentURL()
	if urlAfter != urlBefore {
		err := retry(func() (bool, error) {
			return n.courtMentions() >= 3, nil
		}, n.cfg.PollInterval, 5*time.Second)
		if err == nil {
			log.Println("✅ Back on court list (history back)")
			return nil
		}
		log.Println("⚠️ URL changed but court list not visible, trying direct navigation")
	} else {
		log.Println("⚠️ URL unchanged after going back, trying direct navigation")
	}

	if err := n.reopenList(); err != nil {
		log.Printf("❌ Both back-navigation strategies failed: %v", err)
		return ErrUnrecoverable
	}
	log.Println("✅ Back on court list (direct navigation)")
	return nil
}

// reopenList performs a fresh root navigation plus list open, then waits for
// the list signature to appear.
func (n *Navigator) reopenList() error {
	if err := n.OpenList(); err != nil {
		return err
	}
	return retry(func() (bool, error) {
		return n.courtMentions() >= 3, nil
	}, n.cfg.PollInterval, n.cfg.WaitBudget)
}
