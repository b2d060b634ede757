// Package core contains the task state-management layer of taskboard: the
// task store, its mutation operations, the derived board and list views, and
// configuration loading.
package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskboard/pkg/models"
	"golang.org/x/text/language"
)

// ConfigFileName is the base name of the configuration file looked up in
// the base directory.
const ConfigFileName = ".taskboard"

// DefaultStorageKey is the name of the durable slot holding the task
// collection.
const DefaultStorageKey = "taskManager_tasks"

// ConfigurationManager loads and validates .taskboard.yaml.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration relative to basePath. Every key may be overridden with a
// TASKBOARD_ environment variable (storage.backend -> TASKBOARD_STORAGE_BACKEND).
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with defaults for basePath.
func DefaultConfig(basePath string) *models.Config {
	dataDir := filepath.Join(basePath, "data")
	return &models.Config{
		Storage: models.StorageConfig{
			Backend:     models.BackendFile,
			Dir:         dataDir,
			Key:         DefaultStorageKey,
			SQLitePath:  filepath.Join(dataDir, "taskboard.db"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "taskboard:",
		},
		Log: models.LogConfig{
			Level:      "info",
			File:       filepath.Join(basePath, "logs", "taskboard.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Views: models.ViewConfig{
			Locale:        "en",
			DefaultSort:   models.SortByDeadline,
			DefaultFilter: models.FilterAll,
		},
		EventsEnabled: true,
	}
}

// LoadConfig reads .taskboard.yaml from the base path. A missing file yields
// the defaults.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig(cm.basePath)

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.backend", string(cfg.Storage.Backend))
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.key", cfg.Storage.Key)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.redis_addr", cfg.Storage.RedisAddr)
	v.SetDefault("storage.redis_prefix", cfg.Storage.RedisPrefix)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("views.locale", cfg.Views.Locale)
	v.SetDefault("views.default_sort", string(cfg.Views.DefaultSort))
	v.SetDefault("views.default_filter", string(cfg.Views.DefaultFilter))
	v.SetDefault("events.enabled", cfg.EventsEnabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg.Storage.Backend = models.StorageBackend(strings.ToLower(v.GetString("storage.backend")))
	cfg.Storage.Dir = cm.resolvePath(v.GetString("storage.dir"))
	cfg.Storage.Key = v.GetString("storage.key")
	cfg.Storage.SQLitePath = cm.resolvePath(v.GetString("storage.sqlite_path"))
	cfg.Storage.RedisAddr = v.GetString("storage.redis_addr")
	cfg.Storage.RedisPrefix = v.GetString("storage.redis_prefix")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.File = cm.resolvePath(v.GetString("log.file"))
	cfg.Log.MaxSizeMB = v.GetInt("log.max_size_mb")
	cfg.Log.MaxBackups = v.GetInt("log.max_backups")
	cfg.Views.Locale = v.GetString("views.locale")
	cfg.EventsEnabled = v.GetBool("events.enabled")

	sortKey, err := models.ParseSortKey(v.GetString("views.default_sort"))
	if err != nil {
		return nil, fmt.Errorf("reading views.default_sort: %w", err)
	}
	cfg.Views.DefaultSort = sortKey

	filter, err := models.ParseFilter(v.GetString("views.default_filter"))
	if err != nil {
		return nil, fmt.Errorf("reading views.default_filter: %w", err)
	}
	cfg.Views.DefaultFilter = filter

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath anchors relative paths at the base directory.
func (cm *viperConfigManager) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cm.basePath, p)
}

// ValidateConfig checks that the configuration can open a session.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("config must not be nil")
	}

	switch cfg.Storage.Backend {
	case models.BackendFile:
		if cfg.Storage.Dir == "" {
			return fmt.Errorf("invalid config: storage.dir is required for the file backend")
		}
	case models.BackendSQLite:
		if cfg.Storage.SQLitePath == "" {
			return fmt.Errorf("invalid config: storage.sqlite_path is required for the sqlite backend")
		}
	case models.BackendRedis:
		if cfg.Storage.RedisAddr == "" {
			return fmt.Errorf("invalid config: storage.redis_addr is required for the redis backend")
		}
	case models.BackendMemory:
	default:
		return fmt.Errorf("invalid config: unknown storage.backend %q (use file, sqlite, redis or memory)", cfg.Storage.Backend)
	}

	if strings.TrimSpace(cfg.Storage.Key) == "" {
		return fmt.Errorf("invalid config: storage.key must not be empty")
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid config: log.level: %w", err)
	}
	if _, err := language.Parse(cfg.Views.Locale); err != nil {
		return fmt.Errorf("invalid config: views.locale %q: %w", cfg.Views.Locale, err)
	}
	return nil
}
