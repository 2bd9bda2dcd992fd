package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"court-sniper/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var weekDays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday",
	"Friday", "Saturday", "Sunday",
}

var hourPresets = []struct {
	Label string
	From  int
	To    int
}{
	{"🌅 Morning (8–12)", 8, 12},
	{"☀️ Afternoon (12–17)", 12, 17},
	{"🌆 Evening (17–22)", 17, 22},
	{"🕐 All day (8–22)", 8, 22},
}

func (h *Handler) HandleSubscribe(msg *tgbotapi.Message) {
	h.drafts[msg.Chat.ID] = &draft{}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i+1 < len(weekDays); i += 2 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(weekDays[i], "sub_day:"+weekDays[i]),
			tgbotapi.NewInlineKeyboardButtonData(weekDays[i+1], "sub_day:"+weekDays[i+1]),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(weekDays[len(weekDays)-1], "sub_day:"+weekDays[len(weekDays)-1]),
	))

	out := tgbotapi.NewMessage(msg.Chat.ID, "📅 Step 1/2: Which day should I watch?")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.Bot.Send(out)
}

func (h *Handler) HandleDaySelect(cq *tgbotapi.CallbackQuery, day string) {
	chatID := cq.Message.Chat.ID

	valid := false
	for _, d := range weekDays {
		if d == day {
			valid = true
			break
		}
	}
	if !valid {
		h.answer(cq.ID, "Unknown day")
		return
	}

	d, ok := h.drafts[chatID]
	if !ok {
		d = &draft{}
		h.drafts[chatID] = d
	}
	d.DayOfWeek = day
	h.answer(cq.ID, day)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range hourPresets {
		data := fmt.Sprintf("sub_hours:%d:%d", p.From, p.To)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Label, data),
		))
	}

	out := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ Step 2/2: What hours on %s?", day))
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.Bot.Send(out)
}

func (h *Handler) HandleHourRange(cq *tgbotapi.CallbackQuery, payload string) {
	chatID := cq.Message.Chat.ID

	d, ok := h.drafts[chatID]
	if !ok || d.DayOfWeek == "" {
		h.answer(cq.ID, "Start over with /subscribe")
		return
	}

	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		h.answer(cq.ID, "Bad time range")
		return
	}
	from, err1 := strconv.Atoi(parts[0])
	to, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || from < 0 || to > 23 || from > to {
		h.answer(cq.ID, "Bad time range")
		return
	}

	sub := &types.Subscription{
		ChatID:    chatID,
		DayOfWeek: d.DayOfWeek,
		StartHour: from,
		EndHour:   to,
	}
	if err := h.Subs.Insert(sub); err != nil {
		h.answer(cq.ID, "Error")
		h.Bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Error saving subscription."))
		return
	}
	delete(h.drafts, chatID)
	h.answer(cq.ID, "Saved")

	h.Bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ Subscription #%d saved!\n\nI'll ping you whenever a court opens on %s between %02d:00 and %02d:00.",
		sub.ID, sub.DayOfWeek, sub.StartHour, sub.EndHour)))
}
