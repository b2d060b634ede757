package models

// StorageBackend names the durable slot implementation.
type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendSQLite StorageBackend = "sqlite"
	BackendRedis  StorageBackend = "redis"
	BackendMemory StorageBackend = "memory"
)

// StorageConfig selects and configures the durable slot.
type StorageConfig struct {
	Backend     StorageBackend `yaml:"backend" mapstructure:"backend"`
	Dir         string         `yaml:"dir" mapstructure:"dir"`
	Key         string         `yaml:"key" mapstructure:"key"`
	SQLitePath  string         `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	RedisAddr   string         `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPrefix string         `yaml:"redis_prefix" mapstructure:"redis_prefix"`
}

// LogConfig configures the session logger.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// ViewConfig holds list-view defaults.
type ViewConfig struct {
	Locale        string     `yaml:"locale" mapstructure:"locale"`
	DefaultSort   SortKey    `yaml:"default_sort" mapstructure:"default_sort"`
	DefaultFilter FilterMode `yaml:"default_filter" mapstructure:"default_filter"`
}

// Config holds all settings read from .taskboard.yaml via Viper.
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Views   ViewConfig    `yaml:"views" mapstructure:"views"`
	// EventsEnabled maps to the events.enabled key.
	EventsEnabled bool `yaml:"-" mapstructure:"-"`
}
