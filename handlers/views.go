package handlers

import (
	"fmt"
	"strings"
	"time"

	"court-sniper/aggregator"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const topN = 3

func formatSlotTime(t time.Time) string {
	return t.Format("Mon Jan 2, 03:04 PM")
}

// HandleSlots shows the next available slot plus the top one-hour and
// two-hour options from the current snapshot.
func (h *Handler) HandleSlots(msg *tgbotapi.Message) {
	slots, err := h.Store.LoadAll()
	if err != nil {
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Error loading slot data."))
		return
	}
	if len(slots) == 0 {
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "❌ No slots available right now."))
		return
	}

	blocks, singles := aggregator.PairAdjacentHours(slots)

	var b strings.Builder
	if next, ok := aggregator.NextSlot(slots); ok {
		b.WriteString(fmt.Sprintf("✅ Next slot: %s (%s)\n\n", formatSlotTime(next.Start), next.Court))
	}

	if top := aggregator.TopDoubles(blocks, topN); len(top) > 0 {
		b.WriteString("⏱ 2-hour blocks:\n")
		for _, block := range top {
			b.WriteString(fmt.Sprintf("  %s — %s-%s\n",
				block.Court, formatSlotTime(block.Start), block.End.Format("03:04 PM")))
		}
		b.WriteString("\n")
	}

	if top := aggregator.TopSingles(singles, topN); len(top) > 0 {
		b.WriteString("🕐 1-hour slots:\n")
		for _, s := range top {
			b.WriteString(fmt.Sprintf("  %s — %s (%s)\n", s.Court, formatSlotTime(s.Start), s.Status))
		}
	}

	h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, b.String()))
}

// HandleCalendar shows every open hour grouped by (date, hour), courts
// combined per entry, two-hour windows marked.
func (h *Handler) HandleCalendar(msg *tgbotapi.Message) {
	slots, err := h.Store.LoadAll()
	if err != nil {
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Error loading slot data."))
		return
	}
	if len(slots) == 0 {
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "❌ No slots available right now."))
		return
	}

	blocks, singles := aggregator.PairAdjacentHours(slots)
	groups := aggregator.GroupByTimeBlock(singles, blocks)

	var b strings.Builder
	b.WriteString("📅 Availability calendar:\n")
	lastDate := ""
	for _, g := range groups {
		if g.Date != lastDate {
			b.WriteString(fmt.Sprintf("\n%s\n", formatGroupDate(g.Date)))
			lastDate = g.Date
		}
		duration := ""
		if g.IsTwoHour {
			duration = " (2h)"
		}
		b.WriteString(fmt.Sprintf("  %02d:00%s — %s\n", g.Hour, duration, g.Title()))
	}

	h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, b.String()))
}

func formatGroupDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, Jan 2")
}
