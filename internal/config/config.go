package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console / json
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type AppSubConfig struct {
	PageSize    int `mapstructure:"page_size"`
	MaxPageSize int `mapstructure:"max_page_size"`
}

// ReceiptParserConfig selects how uploaded receipt images are turned into drafts.
type ReceiptParserConfig struct {
	Backend     string        `mapstructure:"backend"` // http / gemini / sample
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxUploadMB int64         `mapstructure:"max_upload_mb"`
	GeminiModel string        `mapstructure:"gemini_model"`
	GeminiKey   string        `mapstructure:"gemini_api_key"`
}

type EventsConfig struct {
	AMQPURL  string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"exchange"`
}

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Security      SecurityConfig      `mapstructure:"security"`
	Log           LogConfig           `mapstructure:"log"`
	Backup        BackupConfig        `mapstructure:"backup"`
	App           AppSubConfig        `mapstructure:"app"`
	ReceiptParser ReceiptParserConfig `mapstructure:"receipt_parser"`
	Events        EventsConfig        `mapstructure:"events"`
}

var (
	appConfig *Config
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.path", "./data/ledger.db")
	v.SetDefault("database.log_mode", false)

	// keys without a real default are still registered so RL_* env vars reach Unmarshal
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "receipt-ledger")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.encryption_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("backup.dir", "./data/backups")

	v.SetDefault("app.page_size", 10)
	v.SetDefault("app.max_page_size", 100)

	v.SetDefault("receipt_parser.backend", "http")
	v.SetDefault("receipt_parser.url", "")
	v.SetDefault("receipt_parser.gemini_api_key", "")
	v.SetDefault("receipt_parser.timeout", 30*time.Second)
	v.SetDefault("receipt_parser.max_upload_mb", 10)
	v.SetDefault("receipt_parser.gemini_model", "gemini-2.5-flash")

	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.exchange", "receipt-ledger")
}

// Load loads configuration from given file path (e.g. "config.yaml").
// A missing file is not an error: defaults plus RL_* environment variables are used.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = load(path)
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. RL_SERVER_PORT=9000
	v.SetEnvPrefix("RL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Database.Path == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if c.JWT.Secret == "" {
		problems = append(problems, "jwt secret is required")
	}
	if c.App.PageSize <= 0 || c.App.MaxPageSize < c.App.PageSize {
		problems = append(problems, fmt.Sprintf("invalid page sizes: page_size=%d max_page_size=%d", c.App.PageSize, c.App.MaxPageSize))
	}

	switch c.ReceiptParser.Backend {
	case "http":
		if c.ReceiptParser.URL == "" {
			problems = append(problems, "receipt_parser.url is required for the http backend")
		}
	case "gemini", "sample":
	default:
		problems = append(problems, fmt.Sprintf("invalid receipt parser backend %q: must be one of http, gemini, sample", c.ReceiptParser.Backend))
	}
	if c.ReceiptParser.Timeout <= 0 {
		problems = append(problems, "receipt_parser.timeout must be positive")
	}

	if c.Events.AMQPURL != "" && c.Events.Exchange == "" {
		problems = append(problems, "events.exchange cannot be empty when events.amqp_url is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
