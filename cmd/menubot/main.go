package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menu-bot/internal/bot"
	"menu-bot/internal/config"
	"menu-bot/internal/repository"
	"menu-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	userRepo, err := repository.NewUserRepository(cfg.DBFile)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	backupSvc := service.NewBackupService(cfg.DBFile, cfg.BackupDir)
	restoreSvc := service.NewRestoreService(cfg.DBFile, backupSvc)

	telegramBot, err := bot.New(cfg.BotToken, userRepo, backupSvc, restoreSvc, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.UTC)
	if _, err := scheduler.ScheduleDaily(cfg.BackupTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := telegramBot.SendDailyBackup(jobCtx); err != nil {
			log.Printf("scheduled backup: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule backup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Menu bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
