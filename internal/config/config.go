package config

import (
	"errors"
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"

	GatewayDatabase = "database"
	GatewayFirebase = "firebase"
	GatewayRPC      = "rpc"

	SharesGateway = "gateway"
	SharesS3      = "s3"
)

type Config struct {
	User     UserConfig     `mapstructure:"user"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Shares   SharesConfig   `mapstructure:"shares"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
}

// UserConfig identifies whose score history the CLI reads and writes.
type UserConfig struct {
	ID string `mapstructure:"id"`
}

// StorageConfig selects the local slot holding personal decks.
// Path is a directory for the file backend and a database file for sqlite.
type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=file sqlite memory"`
	Path    string `mapstructure:"path" validate:"required_unless=Backend memory"`
}

type GatewayConfig struct {
	Backend  string         `mapstructure:"backend" validate:"oneof=database firebase rpc"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	RPC      RPCConfig      `mapstructure:"rpc"`
}

type FirebaseConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

type RPCConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// SharesConfig selects where server-side shared decks live and which origin share links use.
type SharesConfig struct {
	Backend string   `mapstructure:"backend" validate:"oneof=gateway s3"`
	Origin  string   `mapstructure:"origin" validate:"origin"`
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ServerConfig struct {
	Port                   int        `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORS                   CORSConfig `mapstructure:"cors"`
	ShutdownTimeoutSeconds int        `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
	MigrateOnStart         bool       `mapstructure:"migrate_on_start"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/pobcards")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("storage.backend", StorageFile)
	v.SetDefault("storage.path", ".pobcards")
	v.SetDefault("gateway.backend", GatewayRPC)
	v.SetDefault("gateway.rpc.base_url", "http://localhost:8080")
	v.SetDefault("gateway.firebase.timeout_seconds", 10)
	v.SetDefault("shares.backend", SharesGateway)
	v.SetDefault("shares.origin", "http://localhost:3000")
	v.SetDefault("shares.s3.prefix", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "pobcards")
	v.SetDefault("database.username", "user")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	envBindings := map[string]string{
		"user.id":                     "POBCARDS_USER_ID",
		"gateway.firebase.token":      "FIREBASE_TOKEN",
		"database.password":           "DB_PASSWORD",
		"shares.s3.bucket":            "POBCARDS_SHARES_BUCKET",
		"shares.s3.access_key_id":     "AWS_ACCESS_KEY_ID",
		"shares.s3.secret_access_key": "AWS_SECRET_ACCESS_KEY",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
