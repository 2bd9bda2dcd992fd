package main

import (
	"log"
	"os"
	"strings"
	"time"

	"court-sniper/checker"
	"court-sniper/handlers"
	"court-sniper/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

const defaultBookingURL = "https://recreation.ubc.ca/tennis/court-booking/"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ No .env file found, using environment as-is")
	}

	// The booking site runs on Pacific time; keep the whole process there.
	loc, err := time.LoadLocation("America/Vancouver")
	if err != nil {
		log.Printf("⚠️ Failed to load Vancouver timezone: %v (using UTC)", err)
		loc = time.UTC
	} else {
		time.Local = loc
		log.Printf("🌍 Timezone set to America/Vancouver (current time: %s)", time.Now().Format("2006-01-02 15:04:05 MST"))
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("❌ TELEGRAM_BOT_TOKEN not set")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("🤖 Authorized on account %s", bot.Self.UserName)

	rds := storage.NewRedis(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), 0)
	if err := rds.Ping(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "court_data.json"
	}
	gateway := storage.NewGateway(rds, storage.NewFile(dataFile))

	baseURL := os.Getenv("BOOKING_URL")
	if baseURL == "" {
		baseURL = defaultBookingURL
	}

	// Run the availability checks in a separate goroutine.
	checkerService := checker.New(bot, gateway, rds, checker.Config{
		BaseURL:  baseURL,
		Headless: os.Getenv("HEADLESS") != "false",
		Location: loc,
	})
	go checkerService.Start()

	handler := handlers.New(bot, gateway, rds)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	log.Println("✅ Bot is running...")

	for update := range updates {
		if update.Message != nil {
			handleMessage(bot, handler, update.Message)
		} else if update.CallbackQuery != nil {
			handleCallback(handler, update.CallbackQuery)
		}
	}
}

func handleMessage(bot *tgbotapi.BotAPI, h *handlers.Handler, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.HandleStart(msg)

	case "subscribe":
		h.HandleSubscribe(msg)

	case "my_subs":
		h.HandleMySubs(msg)

	case "cancel":
		h.HandleCancel(msg)

	case "slots":
		h.HandleSlots(msg)

	case "calendar":
		h.HandleCalendar(msg)

	default:
		bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Unknown command. Try /start"))
	}
}

func handleCallback(h *handlers.Handler, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}

	data := cq.Data

	switch {
	case strings.HasPrefix(data, "sub_day:"):
		h.HandleDaySelect(cq, strings.TrimPrefix(data, "sub_day:"))

	case strings.HasPrefix(data, "sub_hours:"):
		h.HandleHourRange(cq, strings.TrimPrefix(data, "sub_hours:"))

	default:
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "Unknown action"))
	}
}
