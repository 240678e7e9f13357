package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	Port        int      `mapstructure:"port" validate:"min=1,max=65535"`
	Mode        string   `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	Path    string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret       string `mapstructure:"secret" validate:"required"`
	Issuer       string `mapstructure:"issuer"`
	ExpireHours  int    `mapstructure:"expire_hours" validate:"min=1"`
	RememberDays int    `mapstructure:"remember_days" validate:"min=1"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
	EncryptionKey string `mapstructure:"encryption_key" validate:"required"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=console json"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

type AppSubConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

type ReminderConfig struct {
	DaysAhead    int    `mapstructure:"days_ahead" validate:"min=0"`
	Concurrency  int    `mapstructure:"concurrency" validate:"min=1"`
	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`
	AMQPQueue    string `mapstructure:"amqp_queue"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	App      AppSubConfig   `mapstructure:"app"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

var appConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/kos.db")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("jwt.issuer", "kos-manager")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("jwt.remember_days", 30)

	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("app.currency_symbol", "$")

	v.SetDefault("reminder.days_ahead", 3)
	v.SetDefault("reminder.concurrency", 4)
	v.SetDefault("reminder.amqp_exchange", "kos")
	v.SetDefault("reminder.amqp_queue", "payment_reminders")
}

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, "config.yaml" in the working directory is used when present;
// a missing default file is not an error, defaults and environment still apply.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
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

	// environment overrides, e.g. KOS_SERVER_PORT=9000
	v.SetEnvPrefix("KOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys without a default are only seen by Unmarshal when bound explicitly
	for _, key := range []string{"jwt.secret", "security.encryption_key", "database.dsn", "reminder.amqp_url"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
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

	appConfig = &c
	return appConfig, nil
}

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
