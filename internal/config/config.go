package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const defaultBackupTime = "03:00"

// Config keeps runtime settings for the bot. It is built once at startup
// and passed by reference; nothing mutates it afterwards.
type Config struct {
	BotToken    string
	AdminID     int64
	DBFile      string
	BackupDir   string
	BackupTime  string // HH:MM, UTC
	PhotoURL    string
	WelcomeText string
	MenuText    string
	InfoText    string
}

// Load reads configuration from environment variables with sane defaults.
// Only a missing BOT_TOKEN is fatal; a missing ADMIN_ID leaves the admin
// command surface permanently inaccessible and is logged as a warning.
func Load() (Config, error) {
	cfg := Config{
		BotToken:    strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		AdminID:     parseAdminID(strings.TrimSpace(os.Getenv("ADMIN_ID"))),
		DBFile:      strings.TrimSpace(os.Getenv("DB_FILE")),
		BackupDir:   strings.TrimSpace(os.Getenv("BACKUP_DIR")),
		BackupTime:  normalizeBackupTime(strings.TrimSpace(os.Getenv("BACKUP_TIME"))),
		PhotoURL:    strings.TrimSpace(os.Getenv("PHOTO_URL")),
		WelcomeText: os.Getenv("WELCOME_TEXT"),
		MenuText:    os.Getenv("MENU_TEXT"),
		InfoText:    os.Getenv("INFO_TEXT"),
	}

	if cfg.DBFile == "" {
		cfg.DBFile = "./data/users.db"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "./backups"
	}
	if cfg.WelcomeText == "" {
		cfg.WelcomeText = "Welcome to the official bot."
	}
	if cfg.MenuText == "" {
		cfg.MenuText = "📖 MENU\n\nNothing here yet."
	}
	if cfg.InfoText == "" {
		cfg.InfoText = "📲 CONTACTS & INFO\n\nNothing here yet."
	}

	if cfg.BotToken == "" {
		return cfg, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.AdminID == 0 {
		log.Println("[warn] ADMIN_ID is not set: admin commands will be inaccessible")
	}

	return cfg, nil
}

func parseAdminID(raw string) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// normalizeBackupTime validates an HH:MM string, falling back to 03:00.
func normalizeBackupTime(raw string) string {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return defaultBackupTime
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return defaultBackupTime
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return defaultBackupTime
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
