package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	OwnerIDs      []int64
	HRChatID      int64
	GroupChatID   int64

	DBPath    string
	ExcelFile string

	GoogleSheetID   string
	GoogleCredsFile string
	GoogleCredsJSON string

	Timezone string
	Deadline string // HH:MM, 24h

	// CountWeekends controls whether weekends count as working days in
	// reports. When false they are rendered as a separate category and
	// excluded from percentage denominators.
	CountWeekends bool

	// PendingTTL drops pending approval requests older than the given
	// duration. Zero means requests never expire.
	PendingTTL time.Duration
}

func Load() *Config {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		OwnerIDs:        parseChatIDs(os.Getenv("OWNER_CHAT_ID")),
		HRChatID:        parseChatID(os.Getenv("HR_CHAT_ID")),
		GroupChatID:     parseChatID(os.Getenv("GROUP_CHAT_ID")),
		DBPath:          getEnv("DB_PATH", "bot.db"),
		ExcelFile:       getEnv("EXCEL_FILE", "employee_updates.xlsx"),
		GoogleSheetID:   os.Getenv("GOOGLE_SHEET_ID"),
		GoogleCredsFile: getEnv("GOOGLE_CREDS_FILE", "credentials.json"),
		GoogleCredsJSON: os.Getenv("GOOGLE_CREDS_JSON"),
		Timezone:        getEnv("TIMEZONE", "Asia/Kolkata"),
		Deadline:        getEnv("SUBMISSION_DEADLINE", "11:00"),
		CountWeekends:   getEnv("COUNT_WEEKENDS", "true") != "false",
		PendingTTL:      parseDuration(os.Getenv("PENDING_TTL")),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseChatID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func parseChatIDs(raw string) []int64 {
	if raw == "" {
		return []int64{}
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		log.Printf("Invalid PENDING_TTL %q, pending requests will not expire", s)
		return 0
	}
	return d
}

// IsOwner reports whether the user is one of the configured owners.
func (c *Config) IsOwner(userID int64) bool {
	for _, id := range c.OwnerIDs {
		if userID == id {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is an owner or the HR contact.
func (c *Config) IsAdmin(userID int64) bool {
	return c.IsOwner(userID) || (c.HRChatID != 0 && userID == c.HRChatID)
}

// AdminIDs returns every chat that should receive approval prompts and
// alerts: all owners plus HR, without duplicates.
func (c *Config) AdminIDs() []int64 {
	ids := make([]int64, 0, len(c.OwnerIDs)+1)
	ids = append(ids, c.OwnerIDs...)
	if c.HRChatID != 0 && !c.IsOwner(c.HRChatID) {
		ids = append(ids, c.HRChatID)
	}
	return ids
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}
