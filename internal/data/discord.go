package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
	"github.com/bwmarrin/discordgo"
)

// discordMessageRepo implements the messaging capability over a discordgo
// session. Embeds and components are out of scope here; notifications are
// plain markdown content.
type discordMessageRepo struct {
	session *discordgo.Session
}

// NewDiscordMessageRepo creates a new Discord-backed message repository.
func NewDiscordMessageRepo(session *discordgo.Session) repo.MessageRepo {
	return &discordMessageRepo{session: session}
}

func (r *discordMessageRepo) Send(ctx context.Context, channelID, content string) (string, error) {
	msg, err := r.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

func (r *discordMessageRepo) Edit(ctx context.Context, channelID, messageID, content string) error {
	_, err := r.session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return repo.ErrMessageNotFound
		}
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (r *discordMessageRepo) Delete(ctx context.Context, channelID, messageID string) error {
	err := r.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return repo.ErrMessageNotFound
		}
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (r *discordMessageRepo) Recent(ctx context.Context, channelID string, limit int) ([]*repo.ChannelMessage, error) {
	msgs, err := r.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel history: %w", err)
	}

	out := make([]*repo.ChannelMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := &repo.ChannelMessage{ID: m.ID, Content: m.Content}
		if m.Author != nil {
			cm.AuthorID = m.Author.ID
		}
		out = append(out, cm)
	}
	return out, nil
}

func (r *discordMessageRepo) BotUserID() string {
	if r.session.State != nil && r.session.State.User != nil {
		return r.session.State.User.ID
	}
	return ""
}

// isNotFound reports whether the API rejected the request with a 404.
func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// discordRoleRepo grants and revokes the subscription role.
type discordRoleRepo struct {
	session *discordgo.Session
}

// NewDiscordRoleRepo creates a new role repository.
func NewDiscordRoleRepo(session *discordgo.Session) repo.RoleRepo {
	return &discordRoleRepo{session: session}
}

func (r *discordRoleRepo) Grant(ctx context.Context, guildID, userID, roleID string) error {
	if err := r.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

func (r *discordRoleRepo) Revoke(ctx context.Context, guildID, userID, roleID string) error {
	if err := r.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return nil
}

// discordPermissionRepo answers the moderator check against the configured
// role lists, with native guild administrators always allowed.
type discordPermissionRepo struct {
	session      *discordgo.Session
	guildID      string
	allowedRoles map[string]bool
}

// NewDiscordPermissionRepo creates a new permission oracle. moderatorRoles
// and administratorRoles come from configuration and are both accepted.
func NewDiscordPermissionRepo(session *discordgo.Session, guildID string, moderatorRoles, administratorRoles []string) repo.PermissionRepo {
	allowed := make(map[string]bool)
	for _, id := range moderatorRoles {
		allowed[id] = true
	}
	for _, id := range administratorRoles {
		allowed[id] = true
	}
	return &discordPermissionRepo{
		session:      session,
		guildID:      guildID,
		allowedRoles: allowed,
	}
}

func (r *discordPermissionRepo) CanOperate(ctx context.Context, guildID, userID string) (bool, error) {
	if guildID == "" {
		guildID = r.guildID
	}

	member, err := r.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to fetch guild member: %w", err)
	}

	memberRoles := make(map[string]bool, len(member.Roles))
	for _, roleID := range member.Roles {
		if r.allowedRoles[roleID] {
			return true, nil
		}
		memberRoles[roleID] = true
	}

	// fall back to the native administrator permission
	roles, err := r.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to fetch guild roles: %w", err)
	}
	for _, role := range roles {
		if memberRoles[role.ID] && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true, nil
		}
	}
	return false, nil
}
