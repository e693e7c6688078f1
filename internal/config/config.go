package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

type DatabaseType string

const (
	DatabaseTypeMemory DatabaseType = "memory"
	DatabaseTypeSQLite DatabaseType = "sqlite"
)

// Config holds the configuration for the safebadge server, the cli client and their dependencies.
type Config struct {
	// Listen is the address the safebadge server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the safebadge server. The cli commands use it to reach the API.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// LogLevel is the default log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// Database holds the storage configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Demo describes the single demo user that is seeded on startup.
	Demo *DemoConfig `yaml:"demo" mapstructure:"demo"`
	// Hold holds the press-and-hold gesture timings.
	Hold *HoldConfig `yaml:"hold" mapstructure:"hold"`
	// Simulation holds the device simulation configuration.
	Simulation *SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	// Email holds the email notification configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Ntfy holds the ntfy notification configuration.
	Ntfy *NtfyConfig `yaml:"ntfy" mapstructure:"ntfy"`
	// Geocoding holds the reverse geocoding configuration.
	Geocoding *GeocodingConfig `yaml:"geocoding" mapstructure:"geocoding"`
	// Cache holds the cache engine configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Type selects the storage backend ("memory" or "sqlite").
	Type DatabaseType `yaml:"type" mapstructure:"type"`
	// Path is the path to the database file. Only used by the sqlite backend.
	Path string `yaml:"path" mapstructure:"path"`
}

// DemoConfig holds the demo user and its initial device state.
type DemoConfig struct {
	Username     string  `yaml:"username" mapstructure:"username"`
	Password     string  `yaml:"password" mapstructure:"password"`
	FullName     string  `yaml:"full_name" mapstructure:"full_name"`
	Phone        string  `yaml:"phone" mapstructure:"phone"`
	Email        string  `yaml:"email" mapstructure:"email"`
	BatteryLevel int     `yaml:"battery_level" mapstructure:"battery_level"`
	Latitude     float64 `yaml:"latitude" mapstructure:"latitude"`
	Longitude    float64 `yaml:"longitude" mapstructure:"longitude"`
	Address      string  `yaml:"address" mapstructure:"address"`
}

// HoldConfig holds the press-and-hold gesture timings.
type HoldConfig struct {
	// Threshold is how long the button has to be held before an alert fires.
	Threshold time.Duration `yaml:"threshold" mapstructure:"threshold"`
	// SampleInterval is the period of the elapsed time sampler.
	SampleInterval time.Duration `yaml:"sample_interval" mapstructure:"sample_interval"`
}

// SimulationConfig holds the configuration of the simulated badge hardware.
type SimulationConfig struct {
	// Enabled turns the battery drain and location drift jobs on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// BatteryDrainInterval is how often the battery loses one percent.
	BatteryDrainInterval time.Duration `yaml:"battery_drain_interval" mapstructure:"battery_drain_interval"`
	// LocationInterval is how often a new location is reported while sharing is on.
	LocationInterval time.Duration `yaml:"location_interval" mapstructure:"location_interval"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether email notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which notifications are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which notifications are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use SSL for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// NtfyConfig holds the ntfy notification configuration.
type NtfyConfig struct {
	// Enabled indicates whether ntfy notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServerURL is the URL of the ntfy server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// Topic is the ntfy topic to publish alerts to.
	Topic string `yaml:"topic" mapstructure:"topic"`
	// Username is the ntfy username for authentication.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the ntfy password for authentication.
	Password string `yaml:"password" mapstructure:"password"`
	// Token is the ntfy token for authentication.
	Token string `yaml:"token" mapstructure:"token"`
}

// GeocodingConfig holds the reverse geocoding configuration.
type GeocodingConfig struct {
	// Enabled indicates whether locations without an address are reverse geocoded.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// URL is the base URL of a nominatim compatible server.
	URL string `yaml:"url" mapstructure:"url"`
	// UserAgent is sent with every request, nominatim rejects anonymous clients.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// Timeout is the request timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CacheConfig holds the configuration for the cache engine.
type CacheConfig struct {
	// Type is the type of cache engine to use (e.g., "memory", "redis").
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the URL for the Redis cache if using Redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TTL is how long cached entries stay valid.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// A missing config file is not an error, the defaults describe a working demo setup.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("SAFEBADGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.safebadge")
		v.AddConfigPath("/etc/safebadge")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with the SAFEBADGE_ prefix override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:5000")
	v.SetDefault("server_url", "http://localhost:5000")
	v.SetDefault("log_level", "info")

	// Database defaults
	v.SetDefault("database.type", DatabaseTypeMemory)
	v.SetDefault("database.path", "./data/safebadge.db")

	// Demo user defaults
	v.SetDefault("demo.username", "demo")
	v.SetDefault("demo.password", "password")
	v.SetDefault("demo.full_name", "Demo User")
	v.SetDefault("demo.phone", "+1234567890")
	v.SetDefault("demo.email", "demo@example.com")
	v.SetDefault("demo.battery_level", 85)
	v.SetDefault("demo.latitude", 40.7128)
	v.SetDefault("demo.longitude", -74.0060)
	v.SetDefault("demo.address", "New York, NY, USA")

	// Hold gesture defaults
	v.SetDefault("hold.threshold", 3*time.Second)
	v.SetDefault("hold.sample_interval", 100*time.Millisecond)

	// Simulation defaults
	v.SetDefault("simulation.enabled", true)
	v.SetDefault("simulation.battery_drain_interval", time.Minute)
	v.SetDefault("simulation.location_interval", 30*time.Second)

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "Safebadge")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	// Ntfy defaults
	v.SetDefault("ntfy.enabled", false)
	v.SetDefault("ntfy.server_url", "https://ntfy.sh")
	v.SetDefault("ntfy.topic", "safebadge")
	v.SetDefault("ntfy.username", "")
	v.SetDefault("ntfy.password", "")
	v.SetDefault("ntfy.token", "")

	// Geocoding defaults
	v.SetDefault("geocoding.enabled", false)
	v.SetDefault("geocoding.url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoding.user_agent", "safebadge")
	v.SetDefault("geocoding.timeout", 10*time.Second)

	// Cache defaults
	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 24*time.Hour)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "mp")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing safebadge config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	switch c.Database.Type {
	case DatabaseTypeMemory:
	case DatabaseTypeSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required when using the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}

	if c.Demo == nil || c.Demo.Username == "" {
		return fmt.Errorf("demo username is required")
	}
	if c.Demo.BatteryLevel < 0 || c.Demo.BatteryLevel > 100 {
		return fmt.Errorf("demo battery level must be between 0 and 100")
	}

	if c.Hold == nil {
		return fmt.Errorf("missing hold config")
	}
	if c.Hold.Threshold <= 0 {
		return fmt.Errorf("hold threshold must be greater than 0")
	}
	if c.Hold.SampleInterval <= 0 || c.Hold.SampleInterval > c.Hold.Threshold {
		return fmt.Errorf("hold sample interval must be greater than 0 and not exceed the threshold")
	}

	if c.Simulation != nil && c.Simulation.Enabled {
		if c.Simulation.BatteryDrainInterval <= 0 {
			return fmt.Errorf("battery drain interval must be greater than 0 when the simulation is enabled")
		}
		if c.Simulation.LocationInterval <= 0 {
			return fmt.Errorf("location interval must be greater than 0 when the simulation is enabled")
		}
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email notifications are enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email notifications are enabled")
		}
	}

	if c.Ntfy != nil && c.Ntfy.Enabled {
		if c.Ntfy.ServerURL == "" {
			return fmt.Errorf("ntfy server URL is required when ntfy is enabled")
		}
		if c.Ntfy.Topic == "" {
			return fmt.Errorf("ntfy topic is required when ntfy is enabled")
		}
	}

	if c.Geocoding != nil && c.Geocoding.Enabled && c.Geocoding.URL == "" {
		return fmt.Errorf("geocoding URL is required when geocoding is enabled")
	}

	if c.Cache != nil {
		if c.Cache.Type == "" {
			return fmt.Errorf("cache type is required when cache is enabled")
		}
		if c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when Redis cache is enabled") //nolint:staticcheck
		}
	} else {
		c.Cache = &CacheConfig{
			Type: CacheTypeMemory,
			TTL:  24 * time.Hour,
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = urlSanitize(c.Listen)
	c.ServerURL = urlSanitize(c.ServerURL)

	if c.Ntfy != nil {
		c.Ntfy.ServerURL = urlSanitize(c.Ntfy.ServerURL)
	}

	if c.Geocoding != nil {
		c.Geocoding.URL = urlSanitize(c.Geocoding.URL)
	}

	if c.Demo != nil {
		c.Demo.Username = strings.TrimSpace(c.Demo.Username)
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}
