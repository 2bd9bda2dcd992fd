// Package notifier matches scraped slots against user subscriptions and
// fires Telegram notifications for every qualifying pair.
package notifier

import (
	"fmt"
	"log"

	"court-sniper/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Match pairs every slot with every subscription it satisfies. Day-of-week
// and hour come straight from the slot's start time, which is already in
// the booking site's timezone; no re-conversion happens here. One request
// per qualifying pair, no de-duplication across calls or runs.
func Match(slots []types.Slot, subs []types.Subscription) []types.NotificationRequest {
	var reqs []types.NotificationRequest
	for _, slot := range slots {
		day := slot.Start.Weekday().String()
		hour := slot.Start.Hour()
		for _, sub := range subs {
			if day != sub.DayOfWeek {
				continue
			}
			if hour < sub.StartHour || hour > sub.EndHour {
				continue
			}
			reqs = append(reqs, types.NotificationRequest{
				ChatID:       sub.ChatID,
				Slot:         slot,
				Subscription: sub,
			})
		}
	}
	return reqs
}

// Sender is the outbound message transport. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Dispatch sends one message per request, fire-and-forget. A failed send is
// logged for its recipient and never blocks the rest; nothing is retried.
func Dispatch(bot Sender, reqs []types.NotificationRequest) {
	for _, req := range reqs {
		msg := tgbotapi.NewMessage(req.ChatID, formatMatch(req))
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := bot.Send(msg); err != nil {
			log.Printf("⚠️ Failed to send notification to chatID %d: %v", req.ChatID, err)
			continue
		}
		log.Printf("✅ Notification sent to chatID %d for %s at %s",
			req.ChatID, req.Slot.Court, req.Slot.Start.Format("2006-01-02 03:04 PM"))
	}
}

func formatMatch(req types.NotificationRequest) string {
	link := req.Slot.Link
	if link == "" {
		link = "#"
	}
	return fmt.Sprintf("🎾 *Match Found!*\n\n%s is available %s at %s.\n%s",
		req.Slot.Court,
		req.Slot.Start.Weekday(),
		req.Slot.Start.Format("2006-01-02 03:04 PM"),
		link)
}
