package data

import (
	"github.com/KOFIOK/ManagementDiscordBotRMRP-sub002/internal/biz/repo"
	"github.com/bwmarrin/discordgo"
)

// Repositories contains all repositories
type Repositories struct {
	Timers  repo.TimerRepo
	History repo.HistoryRepo
	Message repo.MessageRepo
	Perms   repo.PermissionRepo
	Roles   repo.RoleRepo
}

// NewRepositories creates all repositories
func NewRepositories(
	session *discordgo.Session,
	timerFilePath string,
	historyDBPath string,
	guildID string,
	moderatorRoles []string,
	administratorRoles []string,
) (*Repositories, error) {
	timers, err := NewTimerRepo(timerFilePath)
	if err != nil {
		return nil, err
	}

	history, err := NewHistoryRepo(historyDBPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Timers:  timers,
		History: history,
		Message: NewDiscordMessageRepo(session),
		Perms:   NewDiscordPermissionRepo(session, guildID, moderatorRoles, administratorRoles),
		Roles:   NewDiscordRoleRepo(session),
	}, nil
}
