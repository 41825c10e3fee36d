package main

import (
	"context"
	"log"

	"workupdatebot/config"
	"workupdatebot/database"
	"workupdatebot/handlers"
	"workupdatebot/sheets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg := config.Load()
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}
	if len(cfg.AdminIDs()) == 0 {
		log.Println("Warning: OWNER_CHAT_ID and HR_CHAT_ID not set, approvals and alerts have nowhere to go")
	}

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	remote, err := sheets.New(context.Background(), cfg.GoogleSheetID, cfg.GoogleCredsFile, cfg.GoogleCredsJSON)
	if err != nil {
		log.Fatalf("Failed to initialize Google Sheets: %v", err)
	}
	if remote.Enabled() {
		log.Println("Google Sheets mirroring enabled")
	} else {
		log.Println("GOOGLE_SHEET_ID not set, running with the local workbook only")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	log.Printf("Authorized on account %s", bot.Self.UserName)

	handler := handlers.NewBotHandler(bot, db, cfg, remote)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range bot.GetUpdatesChan(u) {
		if update.CallbackQuery != nil {
			handler.HandleCallback(update)
			continue
		}
		if update.Message != nil {
			handler.HandleMessage(update)
		}
	}
}
