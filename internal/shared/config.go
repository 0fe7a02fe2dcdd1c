package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Session     SessionConfig     `toml:"session"`
}

// CredentialsConfig contains platform-specific app credentials.
type CredentialsConfig struct {
	Discord   OAuthAppConfig   `toml:"discord"`
	Instagram OAuthAppConfig   `toml:"instagram"`
	Twitter   TwitterAppConfig `toml:"twitter"`
}

// OAuthAppConfig contains OAuth2 app credentials (Discord, Instagram).
type OAuthAppConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Configured reports whether both client credentials are present.
func (c OAuthAppConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// TwitterAppConfig contains Twitter OAuth 1.0a consumer credentials.
type TwitterAppConfig struct {
	APIKey      string `toml:"api_key"`
	APISecret   string `toml:"api_secret"`
	RedirectURI string `toml:"redirect_uri"`
}

// Configured reports whether both consumer credentials are present.
func (c TwitterAppConfig) Configured() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	FrontendURL    string `toml:"frontend_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SessionConfig contains credential storage settings.
type SessionConfig struct {
	DatabasePath string `toml:"database_path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path, then applies environment variable overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the
// embedded example config, with environment variable overrides applied.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values with environment variables when set.
// Environment always wins so deployments can keep secrets out of the file.
func (c *Config) ApplyEnv() {
	setString(&c.Credentials.Discord.ClientID, "DISCORD_CLIENT_ID")
	setString(&c.Credentials.Discord.ClientSecret, "DISCORD_CLIENT_SECRET")
	setString(&c.Credentials.Discord.RedirectURI, "DISCORD_REDIRECT_URI")

	setString(&c.Credentials.Instagram.ClientID, "INSTAGRAM_CLIENT_ID")
	setString(&c.Credentials.Instagram.ClientSecret, "INSTAGRAM_CLIENT_SECRET")
	setString(&c.Credentials.Instagram.RedirectURI, "INSTAGRAM_REDIRECT_URI")

	setString(&c.Credentials.Twitter.APIKey, "TWITTER_API_KEY")
	setString(&c.Credentials.Twitter.APISecret, "TWITTER_API_SECRET")
	setString(&c.Credentials.Twitter.RedirectURI, "TWITTER_REDIRECT_URI")

	setString(&c.Server.FrontendURL, "FRONTEND_URL")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
