package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/usecase"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/conf"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/data"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/server"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize Discord session
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	// Initialize repository layer
	repos, err := data.NewRepositories(
		session,
		cfg.Supplies.DataFile,
		cfg.History.DBPath,
		cfg.Discord.GuildID,
		cfg.Access.ModeratorRoles,
		cfg.Access.AdministratorRoles,
	)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.History.Close()

	fmt.Printf("[SuppliesBot] Timer file: %s\n", cfg.Supplies.DataFile)
	fmt.Printf("[SuppliesBot] History DB: %s\n", cfg.History.DBPath)

	// Initialize usecase layer
	timerUC := usecase.NewTimerUsecase(repos.Timers, repos.History, usecase.TimerConfig{
		Duration:      cfg.Supplies.Duration(),
		WarningWindow: cfg.Supplies.WarningWindow(),
	})

	// Initialize service layer
	control := service.NewControlSurface(timerUC, repos.Message, repos.History, repos.Perms, service.ControlConfig{
		NotificationChannelID: cfg.Supplies.NotificationChannelID,
		ControlChannelID:      cfg.Supplies.ControlChannelID,
	})
	poller := service.NewNotificationPoller(timerUC, repos.Message, repos.History, control, service.PollerConfig{
		Interval:              cfg.Supplies.PollInterval(),
		NotificationChannelID: cfg.Supplies.NotificationChannelID,
		SubscriptionRoleID:    cfg.Supplies.SubscriptionRoleID,
	})

	// Initialize server
	srv := server.NewDiscordServer(session, control, poller, repos.Message, repos.Roles, server.Config{
		ControlChannelID:      cfg.Supplies.ControlChannelID,
		SubscriptionChannelID: cfg.Supplies.SubscriptionChannelID,
		SubscriptionRoleID:    cfg.Supplies.SubscriptionRoleID,
	})

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	srv.Stop()
}
