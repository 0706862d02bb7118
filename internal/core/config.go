package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

// configFileName is the board configuration file in the base path.
const configFileName = ".sockboard"

// ConfigurationManager loads and persists the board configuration,
// including the runtime-supplied remote connection settings.
type ConfigurationManager interface {
	Load() (*models.GlobalConfig, error)
	Save(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager reading
// .sockboard.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig with defaults and a freshly
// minted device id.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		WarningDays: models.DefaultWarningDays,
		DeviceID:    uuid.NewString(),
	}
}

// Load reads the configuration file. A missing file yields defaults (with a
// new device id, persisted on the next Save); missing keys fall back
// gracefully.
func (cm *viperConfigManager) Load() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("warning_days", cfg.WarningDays)
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("local_table", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s.yaml: %w", configFileName, err)
	}

	cfg.Remote.URL = v.GetString("remote.url")
	cfg.Remote.APIKey = v.GetString("remote.api_key")
	cfg.LocalTablePath = v.GetString("local_table")
	if v.IsSet("warning_days") {
		cfg.WarningDays = v.GetInt("warning_days")
	}
	if id := v.GetString("device_id"); id != "" {
		cfg.DeviceID = id
	}

	if cfg.WarningDays < 1 {
		return nil, fmt.Errorf("validating config: warning_days must be at least 1, got %d", cfg.WarningDays)
	}

	return cfg, nil
}

// Save writes the configuration back as YAML.
func (cm *viperConfigManager) Save(cfg *models.GlobalConfig) error {
	if err := os.MkdirAll(cm.basePath, 0o750); err != nil {
		return fmt.Errorf("saving config: creating directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("saving config: marshalling YAML: %w", err)
	}
	path := filepath.Join(cm.basePath, configFileName+".yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("saving config: writing file: %w", err)
	}
	return nil
}
