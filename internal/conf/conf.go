package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents application configuration
type Config struct {
	// Discord configuration
	Discord DiscordConfig

	// Supplies configuration (loaded from YAML, env-overridable)
	Supplies *SuppliesConfig

	// Access configuration
	Access AccessConfig

	// History configuration
	History HistoryConfig

	// Debug mode
	Debug bool
}

// DiscordConfig contains Discord configuration
type DiscordConfig struct {
	Token   string
	GuildID string
}

// AccessConfig contains the role lists allowed to operate supplies
type AccessConfig struct {
	ModeratorRoles     []string
	AdministratorRoles []string
}

// HistoryConfig contains the supply event log configuration
type HistoryConfig struct {
	DBPath string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// History DB path
	historyDBPath := os.Getenv("SUPPLIES_DB_PATH")
	if historyDBPath == "" {
		homeDir, _ := os.UserHomeDir()
		historyDBPath = filepath.Join(homeDir, ".suppliesbot", "history.db")
	}

	// Supplies config from YAML
	suppliesConfigPath := os.Getenv("SUPPLIES_CONFIG_PATH")
	suppliesConfig, err := LoadSuppliesConfig(suppliesConfigPath)
	if err != nil || suppliesConfig == nil {
		suppliesConfig = DefaultSuppliesConfig()
	}

	// Env overrides for the timing keys
	if val := os.Getenv("TIMER_DURATION_MINUTES"); val != "" {
		if parsed, perr := strconv.Atoi(val); perr == nil {
			suppliesConfig.TimerDurationMinutes = parsed
		}
	}
	if val := os.Getenv("WARNING_MINUTES"); val != "" {
		if parsed, perr := strconv.Atoi(val); perr == nil {
			suppliesConfig.WarningMinutes = parsed
		}
	}
	if val := os.Getenv("SUPPLIES_DATA_FILE"); val != "" {
		suppliesConfig.DataFile = val
	}

	return &Config{
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			GuildID: os.Getenv("GUILD_ID"),
		},
		Supplies: suppliesConfig,
		Access: AccessConfig{
			ModeratorRoles:     splitIDList(os.Getenv("MODERATOR_ROLE_IDS")),
			AdministratorRoles: splitIDList(os.Getenv("ADMINISTRATOR_ROLE_IDS")),
		},
		History: HistoryConfig{
			DBPath: historyDBPath,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

// splitIDList parses a comma-separated ID list.
func splitIDList(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return &ConfigError{Field: "DISCORD_TOKEN", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
