package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"menu-bot/internal/config"
	"menu-bot/internal/model"
	"menu-bot/internal/repository"
	"menu-bot/internal/service"
)

const version = "1.2"

const recentUsersLimit = 50

// Bot aggregates the Telegram API with the registry and backup services.
type Bot struct {
	api      *tgbotapi.BotAPI
	userRepo *repository.UserRepository
	backups  *service.BackupService
	restore  *service.RestoreService
	config   *config.Config
	client   *http.Client
}

func New(token string, userRepo *repository.UserRepository, backups *service.BackupService, restore *service.RestoreService, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		userRepo: userRepo,
		backups:  backups,
		restore:  restore,
		config:   cfg,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	// Every contact refreshes the registry entry.
	if err := b.recordContact(ctx, msg.From); err != nil {
		log.Printf("record contact from %d: %v", msg.From.ID, err)
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if msg.Document != nil && b.isAdmin(msg.From.ID) {
		return b.sendText(msg.Chat.ID, "File received. Reply to it with /restore_db to restore the registry from it.")
	}

	return nil
}

// handleCommand routes commands. /start is open to everyone; everything
// else is admin-only and checked once here, at the boundary. Requests from
// anyone else are dropped without a response.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Command() == "start" {
		return b.handleStart(msg)
	}

	if !b.isAdmin(msg.From.ID) {
		return nil
	}

	switch msg.Command() {
	case "status":
		return b.handleStatus(ctx, msg)
	case "list":
		return b.handleListUsers(ctx, msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "backup_db":
		return b.handleBackup(msg)
	case "restore_db":
		return b.handleRestore(ctx, msg)
	default:
		return nil
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileURL(b.config.PhotoURL))
	photo.Caption = b.config.WelcomeText
	photo.ReplyMarkup = mainKeyboard()
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("[warn] welcome photo not sent (%v), sending text only", err)
		return b.sendWithKeyboard(msg.Chat.ID, b.config.WelcomeText)
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}

	if err := b.recordContact(ctx, cb.From); err != nil {
		log.Printf("record contact from %d: %v", cb.From.ID, err)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	switch cb.Data {
	case cbOpenMenu:
		return b.sendWithKeyboard(cb.Message.Chat.ID, b.config.MenuText)
	case cbOpenInfo:
		return b.sendWithKeyboard(cb.Message.Chat.ID, b.config.InfoText)
	default:
		return nil
	}
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) error {
	count, err := b.userRepo.Count(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Registry error: %v", err))
	}
	text := fmt.Sprintf(
		"✅ Online v%s\n👥 Users: %d\n💾 DB: %s\n🗂 Backup dir: %s\n⏰ Daily backup (UTC): %s",
		version, count, b.config.DBFile, b.config.BackupDir, b.config.BackupTime,
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleListUsers(ctx context.Context, msg *tgbotapi.Message) error {
	users, err := b.userRepo.ListRecent(ctx, recentUsersLimit)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Registry error: %v", err))
	}
	if len(users) == 0 {
		return b.sendText(msg.Chat.ID, "No users registered yet.")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Last %d users:\n", recentUsersLimit))
	for _, u := range users {
		builder.WriteString(formatUserLine(u))
		builder.WriteByte('\n')
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Registry error: %v", err))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  service.ExportFileName(time.Now()),
		Bytes: service.BuildUsersCSV(users),
	})
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleBackup(msg *tgbotapi.Message) error {
	path, err := b.backups.CreateSnapshot(service.OriginManual)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Backup error: %v", err))
	}
	log.Printf("[info] manual snapshot written: %s", path)

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(path))
	if _, err := b.api.Send(doc); err != nil {
		// The snapshot stays on disk regardless of delivery.
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Snapshot saved on disk, but delivery failed: %v", err))
	}
	return nil
}

func (b *Bot) handleRestore(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.Document == nil {
		return b.sendText(msg.Chat.ID,
			"To restore: send a .db file to the bot, then reply to that file with /restore_db")
	}

	doc := msg.ReplyToMessage.Document
	err := b.restore.Restore(ctx, doc.FileName, doc.FileUniqueID, b.documentDownloader(doc))
	if err == nil {
		log.Printf("[info] registry restored from %s", doc.FileName)
		return b.sendText(msg.Chat.ID, "✅ Database restored. Use /status to verify.")
	}

	var restoreErr *service.RestoreError
	if errors.As(err, &restoreErr) {
		switch restoreErr.Stage {
		case service.StageValidate:
			return b.sendText(msg.Chat.ID, "The file must have a .db extension.")
		case service.StageDownload:
			return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ File download error: %v", restoreErr.Err))
		case service.StageSafetyCopy:
			return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Safety copy error, registry untouched: %v", restoreErr.Err))
		case service.StagePromote:
			return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Restore error, try again: %v", restoreErr.Err))
		}
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Restore error: %v", err))
}

// SendDailyBackup takes a scheduled snapshot and delivers it to the admin.
// A failed delivery is logged only; the snapshot stays on disk.
func (b *Bot) SendDailyBackup(ctx context.Context) error {
	path, err := b.backups.CreateSnapshot(service.OriginScheduled)
	if err != nil {
		return err
	}
	log.Printf("[info] scheduled snapshot written: %s", path)

	if b.config.AdminID == 0 {
		return nil
	}
	doc := tgbotapi.NewDocument(b.config.AdminID, tgbotapi.FilePath(path))
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("[warn] scheduled snapshot delivery failed: %v", err)
	}
	return nil
}

// documentDownloader fetches a Telegram document's bytes to a local path,
// so the restore pipeline stays free of transport concerns.
func (b *Bot) documentDownloader(doc *tgbotapi.Document) service.DownloadFunc {
	return func(ctx context.Context, dest string) error {
		file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: doc.FileID})
		if err != nil {
			return fmt.Errorf("get file: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
		if err != nil {
			return fmt.Errorf("build download request: %w", err)
		}
		resp, err := b.client.Do(req)
		if err != nil {
			return fmt.Errorf("download file: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download file: unexpected status %s", resp.Status)
		}

		out, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		if _, err := io.Copy(out, resp.Body); err != nil {
			out.Close()
			return fmt.Errorf("write %s: %w", dest, err)
		}
		return out.Close()
	}
}

func (b *Bot) recordContact(ctx context.Context, from *tgbotapi.User) error {
	return b.userRepo.Upsert(ctx, from.ID, from.UserName, from.FirstName, from.LastName, time.Now())
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.AdminID != 0 && userID == b.config.AdminID
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithKeyboard(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainKeyboard()
	_, err := b.api.Send(msg)
	return err
}

// formatUserLine renders one registry row for the /list command.
func formatUserLine(u model.User) string {
	tag := "-"
	if u.Username != nil && *u.Username != "" {
		tag = "@" + *u.Username
	}

	var nameParts []string
	if u.FirstName != nil && *u.FirstName != "" {
		nameParts = append(nameParts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		nameParts = append(nameParts, *u.LastName)
	}
	name := strings.Join(nameParts, " ")
	if name == "" {
		name = "-"
	}

	return fmt.Sprintf("• %d %s — %s — %s", u.UserID, tag, name, shortStamp(u.LastSeen))
}

// shortStamp trims an RFC 3339 stamp to second precision for display.
func shortStamp(ts string) string {
	if len(ts) < 19 {
		return ts
	}
	return strings.Replace(ts[:19], "T", " ", 1) + "Z"
}
