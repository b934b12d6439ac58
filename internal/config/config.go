// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendInMemory = "inmemory"
)

const EnvPrefix = "TASKS"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // "sqlite", "postgres" или "inmemory"
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type WorkerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type RateLimitConfig struct {
	RPM int `mapstructure:"rpm"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("logging.development", false)
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.path", "data/tasks.db")
	v.SetDefault("storage.namespace", "taskTracker")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("worker.interval", time.Minute)
	v.SetDefault("ratelimit.rpm", 100)
	v.SetDefault("cors.origins", []string{"*"})
}

// Load читает конфигурацию. Пустой path - ищем config.yml в текущей папке;
// если его нет, остаются значения по умолчанию. Переменные TASKS_* важнее файла.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path обязателен для sqlite")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url обязателен для postgres")
		}
	case BackendInMemory:
	default:
		return fmt.Errorf("неизвестный storage.backend %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
