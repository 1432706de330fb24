package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ad/go-telegram-lessons/internal/handlers"
	"github.com/ad/go-telegram-lessons/internal/services"
	"github.com/ad/go-telegram-lessons/internal/store"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	teacherIDStr := os.Getenv("TEACHER_ID")
	if teacherIDStr == "" {
		log.Fatal("TEACHER_ID environment variable is required")
	}
	teacherID, err := strconv.ParseInt(teacherIDStr, 10, 64)
	if err != nil {
		log.Fatalf("Invalid TEACHER_ID: %v", err)
	}

	webhookBase := os.Getenv("WEBHOOK_URL")
	if webhookBase == "" {
		log.Fatal("WEBHOOK_URL environment variable is required")
	}

	webhookSecret := os.Getenv("WEBHOOK_SECRET")
	if webhookSecret == "" {
		webhookSecret = "secret-path"
	}
	webhookPath := "/webhook/" + webhookSecret

	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}
	if _, err := strconv.Atoi(port); err != nil {
		log.Fatalf("Invalid PORT: %v", err)
	}

	storeCfg := store.Config{
		Driver:      os.Getenv("STORE_DRIVER"),
		SheetID:     os.Getenv("SHEET_ID"),
		CredsPath:   os.Getenv("GOOGLE_CREDS_PATH"),
		SQLitePath:  os.Getenv("STORE_PATH"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
	}
	if storeCfg.Driver == "" {
		storeCfg.Driver = store.DriverSheets
	}
	if storeCfg.CredsPath == "" {
		storeCfg.CredsPath = "credentials.json"
	}
	if storeCfg.Driver == store.DriverSheets && storeCfg.SheetID == "" {
		log.Fatal("SHEET_ID environment variable is required")
	}

	st, closeStore, err := store.Open(storeCfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(botToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Retry getMe with shorter timeout to fail fast on a bad token
	for i := 0; i < 3; i++ {
		log.Printf("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			log.Printf("Successfully connected to Telegram API")
			break
		}
		log.Printf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			log.Printf("Retrying in 2 seconds...")
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	tracker := services.NewTracker(st)
	reminder := services.NewReminder(b, teacherID)
	statsService := services.NewStatisticsService(st)

	handler := handlers.NewBotHandler(b, teacherID, tracker, reminder, statsService)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:                webhookBase + webhookPath,
		DropPendingUpdates: true,
	}); err != nil {
		log.Fatalf("Failed to set webhook: %v", err)
	}
	log.Printf("Webhook set: %s", webhookBase+webhookPath)

	r := mux.NewRouter()
	r.Handle(webhookPath, b.WebhookHandler()).Methods("POST")
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Printf("Bot started. Teacher ID: %d, store: %s, port: %s", teacherID, storeCfg.Driver, port)

	b.StartWebhook(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if _, err := b.DeleteWebhook(shutdownCtx, &bot.DeleteWebhookParams{}); err != nil {
		log.Printf("Failed to delete webhook: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return name + " [" + strconv.FormatInt(u.ID, 10) + "]"
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			log.Printf("[MSG] from=%s text=%q", formatUser(*update.Message.From), update.Message.Text)
		}
		next(ctx, b, update)
	}
}
