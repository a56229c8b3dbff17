package config

import "time"

// Config is the full runtime configuration of the meetup service.
type Config struct {
	Port           int         `yaml:"port"`
	GeminiAPIKey   string      `yaml:"gemini_api_key"`
	GeminiModels   []string    `yaml:"gemini_models"`
	MapsAPIKey     string      `yaml:"maps_api_key"`
	AllowedOrigins []string    `yaml:"allowed_origins"`
	SessionTTL     string      `yaml:"session_ttl"` // time.ParseDuration format
	Redis          RedisConfig `yaml:"redis"`
	OAuth          OAuthConfig `yaml:"oauth"`
}

// RedisConfig locates the Redis instance backing posts, chats and sessions.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// OAuthConfig holds the Google OAuth2 web client used for sign-in.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// SessionDuration returns the parsed session lifetime, defaulting to 7 days.
func (c *Config) SessionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// HasOAuth reports whether Google sign-in is configured.
func (c *Config) HasOAuth() bool {
	return c.OAuth.ClientID != "" && c.OAuth.ClientSecret != ""
}

// GetSanitized returns a copy of the configuration safe to expose in a
// service report: credentials are replaced by whether they are set.
func (c *Config) GetSanitized() map[string]interface{} {
	return map[string]interface{}{
		"port":            c.Port,
		"gemini_models":   c.GeminiModels,
		"gemini_api_key":  c.GeminiAPIKey != "",
		"maps_api_key":    c.MapsAPIKey != "",
		"allowed_origins": c.AllowedOrigins,
		"session_ttl":     c.SessionDuration().String(),
		"redis": map[string]interface{}{
			"addr": c.Redis.Addr,
			"db":   c.Redis.DB,
		},
		"oauth": map[string]interface{}{
			"client_id":    c.OAuth.ClientID,
			"redirect_url": c.OAuth.RedirectURL,
			"configured":   c.HasOAuth(),
		},
	}
}
