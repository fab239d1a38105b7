package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SuppliesConfig contains the supplies timer configuration loaded from YAML
type SuppliesConfig struct {
	TimerDurationMinutes int `yaml:"timer_duration_minutes"`
	// TimerDurationHours is the legacy key, honored when minutes is unset
	TimerDurationHours int `yaml:"timer_duration_hours"`
	WarningMinutes     int `yaml:"warning_minutes"`
	PollSeconds        int `yaml:"poll_seconds"`

	NotificationChannelID string `yaml:"notification_channel_id"`
	ControlChannelID      string `yaml:"control_channel_id"`
	SubscriptionChannelID string `yaml:"subscription_channel_id"`
	SubscriptionRoleID    string `yaml:"subscription_role_id"`

	DataFile string `yaml:"data_file"`
}

// DefaultSuppliesConfig returns the built-in defaults
func DefaultSuppliesConfig() *SuppliesConfig {
	return &SuppliesConfig{
		TimerDurationHours: 4,
		WarningMinutes:     20,
		PollSeconds:        15,
		DataFile:           "data/supplies_timers.json",
	}
}

// LoadSuppliesConfig loads the supplies configuration from a YAML file
func LoadSuppliesConfig(configPath string) (*SuppliesConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/supplies.yaml",
			"./configs/supplies.yaml",
			"/etc/suppliesbot/supplies.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "supplies.yaml"))
		}
		// Add path relative to working directory
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, "configs", "supplies.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	var err error

	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			loadedPath = p
			break
		}
	}

	if data == nil {
		// Return default config if no file found
		fmt.Println("[Config] No supplies.yaml found, using defaults")
		return DefaultSuppliesConfig(), nil
	}

	fmt.Printf("[Config] Loading supplies config from: %s\n", loadedPath)

	var config SuppliesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse supplies.yaml: %w", err)
	}

	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *SuppliesConfig) fillDefaults() {
	defaults := DefaultSuppliesConfig()

	if c.TimerDurationMinutes == 0 && c.TimerDurationHours == 0 {
		c.TimerDurationHours = defaults.TimerDurationHours
	}
	if c.WarningMinutes == 0 {
		c.WarningMinutes = defaults.WarningMinutes
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = defaults.PollSeconds
	}
	if c.DataFile == "" {
		c.DataFile = defaults.DataFile
	}
}

// Duration resolves the configured delivery duration, preferring the minutes
// key over the legacy hours key.
func (c *SuppliesConfig) Duration() time.Duration {
	if c.TimerDurationMinutes > 0 {
		return time.Duration(c.TimerDurationMinutes) * time.Minute
	}
	if c.TimerDurationHours > 0 {
		return time.Duration(c.TimerDurationHours) * time.Hour
	}
	return 4 * time.Hour
}

// WarningWindow resolves the warning lead time.
func (c *SuppliesConfig) WarningWindow() time.Duration {
	if c.WarningMinutes > 0 {
		return time.Duration(c.WarningMinutes) * time.Minute
	}
	return 20 * time.Minute
}

// PollInterval resolves the poller tick interval.
func (c *SuppliesConfig) PollInterval() time.Duration {
	if c.PollSeconds > 0 {
		return time.Duration(c.PollSeconds) * time.Second
	}
	return 15 * time.Second
}
