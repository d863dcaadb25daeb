package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Claim windows
	Eligibility EligibilityConfig

	// Catalog reservation policy
	Catalog CatalogConfig

	// Ledger gateway configuration
	Ledger LedgerConfig

	// Forge processor configuration
	Forge ForgeConfig

	// Season calendar
	Seasons SeasonsConfig

	// Metrics configuration
	Metrics MetricsConfig
}

// ServerConfig HTTP server configuration
type ServerConfig struct {
	Port           string // API port
	SwaggerBaseUrl string // Swagger API base URL
	PathPrefix     string // Path prefix for reverse proxy
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Type            string        // pebble, postgres
	DataDir         string        // PebbleDB data directory
	Dsn             string        // Postgres DSN
	MaxOpenConns    int           // Postgres max open connections
	MaxIdleConns    int           // Postgres max idle connections
	ConnMaxLifetime time.Duration // Postgres connection lifetime
}

// EligibilityConfig claim windows
type EligibilityConfig struct {
	GuestWindow  time.Duration
	PlayerWindow time.Duration
}

// CatalogConfig reservation release policy; a zero window disables automatic release
type CatalogConfig struct {
	ReleaseWindow   time.Duration
	ReleaseInterval time.Duration
}

// LedgerConfig ledger gateway configuration
type LedgerConfig struct {
	Mode            string // memory, rpc
	RpcUrl          string
	SigningKeyHex   string
	Timeout         time.Duration
	QueueSize       int
	SubmitRetries   int
	RetryInterval   time.Duration
	MaxPollAttempts int
	ZmqEnabled      bool   // wake processors on ledger notifications
	ZmqAddress      string // ZMQ publisher address
}

// ForgeConfig processor tick
type ForgeConfig struct {
	ProcessInterval time.Duration
}

// SeasonWindowConfig one configured season
type SeasonWindowConfig struct {
	Code     string `mapstructure:"code"`
	StartsAt string `mapstructure:"starts_at"`
	EndsAt   string `mapstructure:"ends_at"`
}

// SeasonsConfig season calendar
type SeasonsConfig struct {
	GracePeriod time.Duration
	Windows     []SeasonWindowConfig
}

// MetricsConfig metrics configuration
type MetricsConfig struct {
	Enabled bool
}

// Cfg global configuration instance
var Cfg *Config

// InitConfig initialize configuration from the file of the selected environment
func InitConfig() error {
	cfg, err := LoadConfig(GetYaml())
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// LoadConfig read one yaml file; TRIVIA_ prefixed environment variables override it
// (TRIVIA_DATABASE_DSN overrides database.dsn)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TRIVIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("Fatal error config file: %s", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			SwaggerBaseUrl: v.GetString("server.swagger_base_url"),
			PathPrefix:     v.GetString("server.path_prefix"),
		},

		Database: DatabaseConfig{
			Type:            v.GetString("database.type"),
			DataDir:         v.GetString("database.data_dir"),
			Dsn:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},

		Eligibility: EligibilityConfig{
			GuestWindow:  v.GetDuration("eligibility.guest_window"),
			PlayerWindow: v.GetDuration("eligibility.player_window"),
		},

		Catalog: CatalogConfig{
			ReleaseWindow:   v.GetDuration("catalog.release_window"),
			ReleaseInterval: v.GetDuration("catalog.release_interval"),
		},

		Ledger: LedgerConfig{
			Mode:            v.GetString("ledger.mode"),
			RpcUrl:          v.GetString("ledger.rpc_url"),
			SigningKeyHex:   v.GetString("ledger.signing_key_hex"),
			Timeout:         v.GetDuration("ledger.timeout"),
			QueueSize:       v.GetInt("ledger.queue_size"),
			SubmitRetries:   v.GetInt("ledger.submit_retries"),
			RetryInterval:   v.GetDuration("ledger.retry_interval"),
			MaxPollAttempts: v.GetInt("ledger.max_poll_attempts"),
			ZmqEnabled:      v.GetBool("ledger.zmq_enabled"),
			ZmqAddress:      v.GetString("ledger.zmq_address"),
		},

		Forge: ForgeConfig{
			ProcessInterval: v.GetDuration("forge.process_interval"),
		},

		Seasons: SeasonsConfig{
			GracePeriod: v.GetDuration("seasons.grace_period"),
		},

		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}

	if err := v.UnmarshalKey("seasons.windows", &cfg.Seasons.Windows); err != nil {
		return nil, fmt.Errorf("seasons.windows: %w", err)
	}

	if cfg.Server.SwaggerBaseUrl == "" {
		cfg.Server.SwaggerBaseUrl = "localhost:" + cfg.Server.Port
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "7290")
	v.SetDefault("database.type", "pebble")
	v.SetDefault("database.data_dir", "./data")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("eligibility.guest_window", "25m")
	v.SetDefault("eligibility.player_window", "60m")
	v.SetDefault("catalog.release_window", "0s")
	v.SetDefault("catalog.release_interval", "1m")
	v.SetDefault("ledger.mode", "memory")
	v.SetDefault("ledger.timeout", "15s")
	v.SetDefault("ledger.queue_size", 64)
	v.SetDefault("ledger.submit_retries", 3)
	v.SetDefault("ledger.retry_interval", "200ms")
	v.SetDefault("ledger.max_poll_attempts", 60)
	v.SetDefault("ledger.zmq_enabled", false)
	v.SetDefault("forge.process_interval", "5s")
	v.SetDefault("seasons.grace_period", "72h")
	v.SetDefault("metrics.enabled", true)
}

// ParseSeasonWindow parse the RFC3339 bounds of a configured season
func ParseSeasonWindow(w SeasonWindowConfig) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, w.StartsAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("season %s starts_at: %w", w.Code, err)
	}
	end, err := time.Parse(time.RFC3339, w.EndsAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("season %s ends_at: %w", w.Code, err)
	}
	return start, end, nil
}
