// Package config defines service configuration and its defaults.
package config

// Storage drivers understood by the repository layer.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":9180".
	Addr string `koanf:"addr"`

	// StorageDriver selects the key-value backend: memory or sqlite.
	StorageDriver string `koanf:"storage_driver"`
	// StoragePath is the SQLite database file when StorageDriver is sqlite.
	StoragePath string `koanf:"storage_path"`

	// Timezone is the IANA zone used to decide what "today" is.
	Timezone string `koanf:"timezone"`

	// Expiry windows in whole days, per module.
	EquipmentWindowDays int `koanf:"equipment_window_days"`
	EIPWindowDays       int `koanf:"eip_window_days"`
	PermitWindowDays    int `koanf:"permit_window_days"`
	ContractWindowDays  int `koanf:"contract_window_days"`

	// TopN bounds the dashboard rankings (e.g. waste by department).
	TopN int `koanf:"top_n"`

	// RefreshQueueSize bounds the gauge refresher queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`
	// IdempotencyCacheSize bounds the remembered Idempotency-Key values.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9180",
		StorageDriver:        StorageMemory,
		StoragePath:          "wardwatch.db",
		Timezone:             "Europe/Bucharest",
		EquipmentWindowDays:  30,
		EIPWindowDays:        30,
		PermitWindowDays:     60,
		ContractWindowDays:   90,
		TopN:                 5,
		RefreshQueueSize:     64,
		IdempotencyCacheSize: 10_000,
	}
}
