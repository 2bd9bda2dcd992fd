// Package checker runs the periodic scrape-persist-notify cycle.
package checker

import (
	"log"
	"time"

	"court-sniper/browser"
	"court-sniper/notifier"
	"court-sniper/scraper"
	"court-sniper/storage"
	"court-sniper/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Config struct {
	BaseURL  string
	Headless bool
	// Location is the booking site's timezone; every scraped timestamp and
	// every subscription match uses it.
	Location *time.Location
}

type Checker struct {
	Bot   *tgbotapi.BotAPI
	Store *storage.Gateway
	Subs  *storage.Redis
	Cfg   Config
}

func New(bot *tgbotapi.BotAPI, store *storage.Gateway, subs *storage.Redis, cfg Config) *Checker {
	return &Checker{Bot: bot, Store: store, Subs: subs, Cfg: cfg}
}

// Start runs one immediate check, then keeps checking on an adaptive
// interval: every 20 minutes during the day, every few hours at night.
func (c *Checker) Start() {
	log.Println("🔍 Checker service started")
	c.RunOnce()

	for {
		now := time.Now().In(c.Cfg.Location)
		hour := now.Hour()

		var sleepDuration time.Duration
		if hour >= 1 && hour < 8 {
			sleepDuration = 4 * time.Hour
			log.Println("😴 Night mode: next check in 4 hours")
		} else {
			sleepDuration = 20 * time.Minute
			log.Println("🔍 Day mode: next check in 20 minutes")
		}

		time.Sleep(sleepDuration)
		c.RunOnce()
	}
}

// RunOnce performs a full cycle: scrape all courts, replace the stored
// snapshot, match subscriptions and dispatch notifications. A run that
// produced nothing because of a hard failure leaves the previous snapshot
// untouched.
func (c *Checker) RunOnce() {
	log.Println("🔍 Running availability check...")

	drv, err := browser.NewChrome(c.Cfg.Headless)
	if err != nil {
		log.Printf("❌ Could not start browser session: %v (keeping previous snapshot)", err)
		return
	}
	defer drv.Close()

	slots, err := scraper.Scrape(drv, scraper.Options{
		BaseURL: c.Cfg.BaseURL,
		Now:     func() time.Time { return time.Now().In(c.Cfg.Location) },
		OnProgress: func(index, total int, message string, court types.CourtID) {
			log.Printf("📈 [%d/%d] %s", index, total, message)
		},
	})
	if err != nil {
		if len(slots) == 0 {
			log.Printf("⚠️ Scrape failed with no results: %v (keeping previous snapshot)", err)
			return
		}
		log.Printf("⚠️ Scrape ended early: %v (persisting %d collected slots)", err, len(slots))
	}

	if err := c.Store.ReplaceAll(slots); err != nil {
		log.Printf("⚠️ Failed to persist snapshot: %v", err)
	}

	subs, err := c.Subs.List()
	if err != nil {
		log.Printf("⚠️ Error fetching subscriptions: %v", err)
		return
	}
	log.Printf("📋 Matching %d slots against %d subscriptions", len(slots), len(subs))

	reqs := notifier.Match(slots, subs)
	notifier.Dispatch(c.Bot, reqs)
}
