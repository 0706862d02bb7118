package models

// RemoteConfig holds the connection settings for the hosted task table.
// Both fields are supplied by the user at runtime; if either is empty the
// board operates in local-only mode.
type RemoteConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// Configured reports whether remote sync can be attempted at all.
func (r RemoteConfig) Configured() bool {
	return r.URL != "" && r.APIKey != ""
}

// GlobalConfig is the merged configuration read from .sockboard.yaml.
type GlobalConfig struct {
	// Remote is the hosted PostgREST endpoint. Takes precedence over
	// LocalTablePath when both are set.
	Remote RemoteConfig `yaml:"remote"`

	// LocalTablePath points at a SQLite database file serving as the task
	// table for LAN/NAS deployments without a hosted backend.
	LocalTablePath string `yaml:"local_table"`

	// WarningDays is the deadline look-ahead window in days.
	WarningDays int `yaml:"warning_days"`

	// DeviceID identifies this client in the event log. Minted on first
	// run and persisted.
	DeviceID string `yaml:"device_id"`
}
