package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/domain"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/usecase"
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/service"
)

const (
	startCustomIDPrefix  = "supplies_start_"
	cancelCustomIDPrefix = "supplies_cancel_"
	subscribeCustomID    = "supplies_subscribe"
	unsubscribeCustomID  = "supplies_unsubscribe"

	// Marker lines identifying panels the bot itself posted; startup scans
	// recent channel history for them so a restart does not post duplicates.
	controlPanelMarker      = "Нажмите на кнопку, чтобы запустить таймер поставки."
	subscriptionPanelMarker = "Уведомления о поставках"

	panelScanLimit = 50
)

// Config holds the channel and role IDs the server publishes into.
type Config struct {
	ControlChannelID      string
	SubscriptionChannelID string
	SubscriptionRoleID    string
}

// DiscordServer handles Discord gateway events for the supplies panel
type DiscordServer struct {
	session *discordgo.Session
	control *service.ControlSurface
	poller  *service.NotificationPoller
	msgs    repo.MessageRepo
	roles   repo.RoleRepo
	cfg     Config

	removeHandler func()
}

// NewDiscordServer creates a new Discord server
func NewDiscordServer(
	session *discordgo.Session,
	control *service.ControlSurface,
	poller *service.NotificationPoller,
	msgs repo.MessageRepo,
	roles repo.RoleRepo,
	cfg Config,
) *DiscordServer {
	return &DiscordServer{
		session: session,
		control: control,
		poller:  poller,
		msgs:    msgs,
		roles:   roles,
		cfg:     cfg,
	}
}

// Start opens the gateway connection and starts the notification poller
func (s *DiscordServer) Start(ctx context.Context) error {
	s.removeHandler = s.session.AddHandler(s.handleInteraction)

	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}
	fmt.Printf("[Server] Connected as %s\n", s.session.State.User.Username)

	if s.cfg.ControlChannelID != "" {
		if err := s.publishControlPanel(ctx); err != nil {
			fmt.Printf("[Server] Failed to publish control panel: %v\n", err)
		}
	}
	if s.cfg.SubscriptionChannelID != "" && s.cfg.SubscriptionRoleID != "" {
		if err := s.publishSubscriptionPanel(ctx); err != nil {
			fmt.Printf("[Server] Failed to publish subscription panel: %v\n", err)
		}
	}

	s.poller.Start(ctx)
	return nil
}

// Stop stops the poller and closes the gateway connection
func (s *DiscordServer) Stop() {
	s.poller.Stop()
	if s.removeHandler != nil {
		s.removeHandler()
	}
	if err := s.session.Close(); err != nil {
		fmt.Printf("[Server] Failed to close gateway connection: %v\n", err)
	}
}

// hasPanel reports whether a bot-authored message carrying the marker is
// already present in the channel's recent history.
func (s *DiscordServer) hasPanel(ctx context.Context, channelID, marker string) (bool, error) {
	msgs, err := s.msgs.Recent(ctx, channelID, panelScanLimit)
	if err != nil {
		return false, fmt.Errorf("failed to scan channel history: %w", err)
	}
	botID := s.msgs.BotUserID()
	for _, m := range msgs {
		if m.AuthorID == botID && strings.Contains(m.Content, marker) {
			return true, nil
		}
	}
	return false, nil
}

// publishControlPanel posts one button panel per supply category into the
// control channel. Panels found in recent history are reused: the custom IDs
// are stable, so buttons on a previous run's messages keep working and a
// restart must not post duplicates.
func (s *DiscordServer) publishControlPanel(ctx context.Context) error {
	exists, err := s.hasPanel(ctx, s.cfg.ControlChannelID, controlPanelMarker)
	if err != nil {
		return err
	}
	if exists {
		fmt.Println("[Server] Control panel already present, skipping publish")
		return nil
	}

	for _, category := range domain.Categories() {
		objects := domain.ObjectsInCategory(category)
		if len(objects) == 0 {
			continue
		}

		_, err := s.session.ChannelMessageSendComplex(s.cfg.ControlChannelID, &discordgo.MessageSend{
			Content:    fmt.Sprintf("**%s**\n%s\nКрасная кнопка отменяет запущенный таймер.", category, controlPanelMarker),
			Components: categoryRows(objects),
		}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("failed to send panel for %s: %w", category, err)
		}
	}
	return nil
}

// categoryRows builds the component rows of one category panel: a row of
// start buttons followed by a row of cancel buttons, five per row.
func categoryRows(objects []domain.SupplyObject) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var start, cancel []discordgo.MessageComponent
	flush := func() {
		if len(start) > 0 {
			rows = append(rows, discordgo.ActionsRow{Components: start})
			start = nil
		}
		if len(cancel) > 0 {
			rows = append(rows, discordgo.ActionsRow{Components: cancel})
			cancel = nil
		}
	}

	for _, obj := range objects {
		start = append(start, discordgo.Button{
			Label:    obj.Name,
			Emoji:    &discordgo.ComponentEmoji{Name: obj.Emoji},
			Style:    discordgo.PrimaryButton,
			CustomID: startCustomIDPrefix + obj.Key,
		})
		cancel = append(cancel, discordgo.Button{
			Label:    obj.Name,
			Emoji:    &discordgo.ComponentEmoji{Name: "✖️"},
			Style:    discordgo.DangerButton,
			CustomID: cancelCustomIDPrefix + obj.Key,
		})
		// a row holds at most five buttons
		if len(start) == 5 {
			flush()
		}
	}
	flush()
	return rows
}

// publishSubscriptionPanel posts the opt-in message for the subscription
// role, unless a previous run already left one in the channel.
func (s *DiscordServer) publishSubscriptionPanel(ctx context.Context) error {
	exists, err := s.hasPanel(ctx, s.cfg.SubscriptionChannelID, subscriptionPanelMarker)
	if err != nil {
		return err
	}
	if exists {
		fmt.Println("[Server] Subscription panel already present, skipping publish")
		return nil
	}

	_, err = s.session.ChannelMessageSendComplex(s.cfg.SubscriptionChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("🔔 **%s**\nПодпишитесь, чтобы получать упоминания о готовых поставках.", subscriptionPanelMarker),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Подписаться",
					Emoji:    &discordgo.ComponentEmoji{Name: "🔔"},
					Style:    discordgo.SuccessButton,
					CustomID: subscribeCustomID,
				},
				discordgo.Button{
					Label:    "Отписаться",
					Emoji:    &discordgo.ComponentEmoji{Name: "🔕"},
					Style:    discordgo.SecondaryButton,
					CustomID: unsubscribeCustomID,
				},
			}},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send subscription panel: %w", err)
	}
	return nil
}

// handleInteraction dispatches button presses on the supplies panels
func (s *DiscordServer) handleInteraction(session *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	ctx := context.Background()

	switch {
	case strings.HasPrefix(customID, startCustomIDPrefix):
		s.handleStart(ctx, i, strings.TrimPrefix(customID, startCustomIDPrefix))
	case strings.HasPrefix(customID, cancelCustomIDPrefix):
		s.handleCancel(ctx, i, strings.TrimPrefix(customID, cancelCustomIDPrefix))
	case customID == subscribeCustomID:
		actor := actorFromInteraction(i)
		s.replyEphemeral(i, s.applySubscription(ctx, actor.GuildID, actor.ID, true))
	case customID == unsubscribeCustomID:
		actor := actorFromInteraction(i)
		s.replyEphemeral(i, s.applySubscription(ctx, actor.GuildID, actor.ID, false))
	}
}

// applySubscription grants or revokes the subscription role and returns the
// reply shown to the user.
func (s *DiscordServer) applySubscription(ctx context.Context, guildID, userID string, subscribe bool) string {
	if subscribe {
		if err := s.roles.Grant(ctx, guildID, userID, s.cfg.SubscriptionRoleID); err != nil {
			fmt.Printf("[Server] Failed to grant subscription role to %s: %v\n", userID, err)
			return "❌ Не удалось оформить подписку, попробуйте позже."
		}
		return "🔔 Вы подписались на уведомления о поставках."
	}
	if err := s.roles.Revoke(ctx, guildID, userID, s.cfg.SubscriptionRoleID); err != nil {
		fmt.Printf("[Server] Failed to revoke subscription role from %s: %v\n", userID, err)
		return "❌ Не удалось отключить подписку, попробуйте позже."
	}
	return "🔕 Подписка на уведомления отключена."
}

func (s *DiscordServer) handleStart(ctx context.Context, i *discordgo.InteractionCreate, objectKey string) {
	actor := actorFromInteraction(i)
	result, err := s.control.HandleStart(ctx, objectKey, actor)
	switch {
	case errors.Is(err, service.ErrNotPermitted):
		s.replyEphemeral(i, "❌ У вас нет прав для управления поставками.")
		return
	case errors.Is(err, usecase.ErrUnknownObject):
		s.replyEphemeral(i, "❌ Неизвестный объект поставки.")
		return
	case err != nil:
		fmt.Printf("[Server] Start %s failed: %v\n", objectKey, err)
		s.replyEphemeral(i, "❌ Произошла ошибка при запуске таймера.")
		return
	}

	if result.Rejected {
		s.replyEphemeral(i, fmt.Sprintf(
			"⏰ %s **%s** уже находится в процессе поставки.\n⏳ Осталось времени: **%s**",
			result.Object.Emoji, result.Object.Name, result.Remaining))
		return
	}

	s.replyEphemeral(i, fmt.Sprintf(
		"✅ %s **%s** — поставка запущена!\n⏰ Длительность: **%s**",
		result.Object.Emoji, result.Object.Name,
		domain.FormatDurationMinutes(result.Record.DurationMinutes)))
}

func (s *DiscordServer) handleCancel(ctx context.Context, i *discordgo.InteractionCreate, objectKey string) {
	actor := actorFromInteraction(i)
	rec, err := s.control.HandleCancel(ctx, objectKey, actor)
	switch {
	case errors.Is(err, service.ErrNotPermitted):
		s.replyEphemeral(i, "❌ У вас нет прав для управления поставками.")
		return
	case errors.Is(err, usecase.ErrNotActive):
		s.replyEphemeral(i, "⚠️ Активный таймер для этого объекта не найден.")
		return
	case err != nil:
		fmt.Printf("[Server] Cancel %s failed: %v\n", objectKey, err)
		s.replyEphemeral(i, "❌ Произошла ошибка при отмене таймера.")
		return
	}

	s.replyEphemeral(i, fmt.Sprintf("✅ Таймер **%s** отменен.", rec.ObjectName))
}

// actorFromInteraction resolves the pressing user. Guild interactions carry
// the user inside Member; the nickname wins over the account name.
func actorFromInteraction(i *discordgo.InteractionCreate) service.Actor {
	var actor service.Actor
	actor.GuildID = i.GuildID
	if i.Member != nil && i.Member.User != nil {
		actor.ID = i.Member.User.ID
		actor.Name = i.Member.User.Username
		if i.Member.Nick != "" {
			actor.Name = i.Member.Nick
		}
	} else if i.User != nil {
		actor.ID = i.User.ID
		actor.Name = i.User.Username
	}
	return actor
}

func (s *DiscordServer) replyEphemeral(i *discordgo.InteractionCreate, content string) {
	err := s.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		fmt.Printf("[Server] Failed to respond to interaction: %v\n", err)
	}
}
