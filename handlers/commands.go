package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"court-sniper/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Handler struct {
	Bot   *tgbotapi.BotAPI
	Store *storage.Gateway
	Subs  *storage.Redis
	// In-flight /subscribe drafts per chat. The update loop is
	// single-threaded, so no locking needed.
	drafts map[int64]*draft
}

type draft struct {
	DayOfWeek string
}

func New(bot *tgbotapi.BotAPI, store *storage.Gateway, subs *storage.Redis) *Handler {
	return &Handler{
		Bot:    bot,
		Store:  store,
		Subs:   subs,
		drafts: make(map[int64]*draft),
	}
}

func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	text := "👋 Hi! I watch the UBC tennis court booking page and ping you when a slot you care about opens up.\n\n" +
		"Commands:\n" +
		"/subscribe — get notified for a day + hour window\n" +
		"/my_subs — show my subscriptions\n" +
		"/cancel — remove subscriptions (/cancel 3 removes just #3)\n" +
		"/slots — next available slots right now\n" +
		"/calendar — all open slots grouped by hour"
	h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, text))
}

func (h *Handler) HandleMySubs(msg *tgbotapi.Message) {
	subs, err := h.Subs.ListByChat(msg.Chat.ID)
	if err != nil {
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Error loading subscriptions."))
		return
	}
	if len(subs) == 0 {
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "You have no subscriptions yet.\n\nUse /subscribe to create one."))
		return
	}

	var b strings.Builder
	b.WriteString("📬 Your subscriptions:\n\n")
	for _, sub := range subs {
		b.WriteString(fmt.Sprintf("#%d — %s %02d:00–%02d:00\n",
			sub.ID, sub.DayOfWeek, sub.StartHour, sub.EndHour))
	}
	h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, b.String()))
}

func (h *Handler) HandleCancel(msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	if args != "" {
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil {
			h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Usage: /cancel or /cancel <id> (see /my_subs for ids)"))
			return
		}
		if err := h.Subs.Delete(msg.Chat.ID, id); err != nil {
			h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Error removing subscription."))
			return
		}
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("✅ Subscription #%d removed.", id)))
		return
	}

	if err := h.Subs.DeleteAll(msg.Chat.ID); err != nil {
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Error removing subscriptions."))
		return
	}
	h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "✅ All subscriptions removed.\n\nUse /subscribe to create a new one."))
}

func (h *Handler) answer(cqID, text string) {
	if _, err := h.Bot.Request(tgbotapi.NewCallback(cqID, text)); err != nil {
		log.Printf("⚠️ Callback answer failed: %v", err)
	}
}
