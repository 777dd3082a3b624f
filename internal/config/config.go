package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	AWS           AWSConfig           `yaml:"aws"`
	APNS          APNSConfig          `yaml:"apns"`
	JWT           JWTConfig           `yaml:"jwt"`
	Log           LogConfig           `yaml:"log"`
	Invites       InvitesConfig       `yaml:"invites"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Windows       []WindowConfig      `yaml:"windows"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds S3 storage configuration
type AWSConfig struct {
	Region     string `yaml:"region"`
	S3Bucket   string `yaml:"s3_bucket"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"` // custom S3-compatible endpoint, empty for AWS
	DisableSSL bool   `yaml:"disable_ssl"`
}

// APNSConfig holds Apple push notification credentials
type APNSConfig struct {
	KeyPath    string `yaml:"key_path"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// InvitesConfig holds invitation code settings
type InvitesConfig struct {
	TTLHours int `yaml:"ttl_hours"`
}

// NotificationsConfig holds reminder scheduling settings
type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WindowConfig is one daily posting window
type WindowConfig struct {
	Label     string `yaml:"label"`
	StartHour int    `yaml:"start_hour"`
	EndHour   int    `yaml:"end_hour"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Invites.TTLHours <= 0 {
		cfg.Invites.TTLHours = 48
	}

	// Overlap between windows is a deployment concern; only reject
	// hours that cannot be interpreted at all.
	for _, w := range cfg.Windows {
		if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 23 {
			return nil, fmt.Errorf("window %q: hours must be within 0-23", w.Label)
		}
		if w.StartHour > w.EndHour {
			return nil, fmt.Errorf("window %q: start_hour must not exceed end_hour", w.Label)
		}
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
