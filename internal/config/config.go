package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"AlertConsoleAPI/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Gateway  GatewayConfig
	Session  SessionConfig
	Security SecurityConfig
	Trigger  TriggerConfig
	MQTT     MQTTConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	HashKey  string
	MaxAge   time.Duration
	FilePath string
}

type SecurityConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	EnableRateLimit    bool
}

type TriggerConfig struct {
	Concurrency int
}

type MQTTConfig struct {
	Broker         string
	Port           int
	ClientID       string
	Username       string
	Password       string
	EventTopic     string
	QoS            byte
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AutoReconnect  bool
}

type LoggingConfig struct {
	Level     logger.Level
	Mode      logger.Mode
	FilePath  string
	UseColors bool
}

var requiredEnvVars = []string{
	"API_BASE_URL",
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	v := newViper()

	if err := validateRequired(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:   loadServerConfig(v),
		Gateway:  loadGatewayConfig(v),
		Session:  loadSessionConfig(v),
		Security: loadSecurityConfig(v),
		Trigger:  loadTriggerConfig(v),
		MQTT:     loadMQTTConfig(v),
		Logging:  loadLoggingConfig(v),
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 3000)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("READ_TIMEOUT", "10s")
	v.SetDefault("WRITE_TIMEOUT", "60s")
	v.SetDefault("MAX_HEADER_BYTES", 1048576)

	v.SetDefault("GATEWAY_TIMEOUT", "45s")

	v.SetDefault("SESSION_MAX_AGE", "168h")

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	v.SetDefault("RATE_LIMIT_PER_SECOND", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("ENABLE_RATE_LIMIT", true)

	v.SetDefault("TRIGGER_CONCURRENCY", 2)

	v.SetDefault("MQTT_PORT", 1883)
	v.SetDefault("MQTT_CLIENT_ID", "alert-console")
	v.SetDefault("MQTT_EVENT_TOPIC", "alertconsole/events")
	v.SetDefault("MQTT_QOS", 1)
	v.SetDefault("MQTT_KEEP_ALIVE", "60s")
	v.SetDefault("MQTT_CONNECT_TIMEOUT", "10s")
	v.SetDefault("MQTT_AUTO_RECONNECT", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MODE", "normal")
	v.SetDefault("LOG_USE_COLORS", true)

	return v
}

func validateRequired(v *viper.Viper) error {
	var missing []string

	for _, key := range requiredEnvVars {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

func loadServerConfig(v *viper.Viper) ServerConfig {
	return ServerConfig{
		Host:            v.GetString("SERVER_HOST"),
		Port:            v.GetInt("SERVER_PORT"),
		Environment:     v.GetString("ENVIRONMENT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		ReadTimeout:     v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:    v.GetDuration("WRITE_TIMEOUT"),
		MaxHeaderBytes:  v.GetInt("MAX_HEADER_BYTES"),
	}
}

func loadGatewayConfig(v *viper.Viper) GatewayConfig {
	return GatewayConfig{
		BaseURL: strings.TrimSpace(v.GetString("API_BASE_URL")),
		Timeout: v.GetDuration("GATEWAY_TIMEOUT"),
	}
}

func loadSessionConfig(v *viper.Viper) SessionConfig {
	return SessionConfig{
		HashKey:  v.GetString("SESSION_HASH_KEY"),
		MaxAge:   v.GetDuration("SESSION_MAX_AGE"),
		FilePath: v.GetString("SESSION_FILE"),
	}
}

func loadSecurityConfig(v *viper.Viper) SecurityConfig {
	return SecurityConfig{
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		CORSAllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
		RateLimitPerSecond: v.GetFloat64("RATE_LIMIT_PER_SECOND"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		EnableRateLimit:    v.GetBool("ENABLE_RATE_LIMIT"),
	}
}

func loadTriggerConfig(v *viper.Viper) TriggerConfig {
	return TriggerConfig{
		Concurrency: v.GetInt("TRIGGER_CONCURRENCY"),
	}
}

func loadMQTTConfig(v *viper.Viper) MQTTConfig {
	return MQTTConfig{
		Broker:         v.GetString("MQTT_BROKER"),
		Port:           v.GetInt("MQTT_PORT"),
		ClientID:       v.GetString("MQTT_CLIENT_ID"),
		Username:       v.GetString("MQTT_USERNAME"),
		Password:       v.GetString("MQTT_PASSWORD"),
		EventTopic:     v.GetString("MQTT_EVENT_TOPIC"),
		QoS:            byte(v.GetInt("MQTT_QOS")),
		KeepAlive:      v.GetDuration("MQTT_KEEP_ALIVE"),
		ConnectTimeout: v.GetDuration("MQTT_CONNECT_TIMEOUT"),
		AutoReconnect:  v.GetBool("MQTT_AUTO_RECONNECT"),
	}
}

func loadLoggingConfig(v *viper.Viper) LoggingConfig {
	return LoggingConfig{
		Level:     logger.ParseLevel(v.GetString("LOG_LEVEL")),
		Mode:      logger.ParseMode(v.GetString("LOG_MODE")),
		FilePath:  v.GetString("LOG_FILE_PATH"),
		UseColors: v.GetBool("LOG_USE_COLORS"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseBaseURL checks that raw is an absolute http(s) URL. A wrong address would send
// bearer tokens to an unintended host, so there is no fallback.
func ParseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("API_BASE_URL is not set")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("API_BASE_URL is not a valid URL: %s: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API_BASE_URL must use http or https: %s", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("API_BASE_URL has no host: %s", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("API_BASE_URL must not carry a query or fragment: %s", raw)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *Config) MQTTEnabled() bool {
	return c.MQTT.Broker != ""
}

func (c *Config) GetMQTTBroker() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTT.Broker, c.MQTT.Port)
}

func (c *Config) Validate() error {
	var errors []string

	if _, err := ParseBaseURL(c.Gateway.BaseURL); err != nil {
		errors = append(errors, err.Error())
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	if c.Gateway.Timeout <= 0 {
		errors = append(errors, "GATEWAY_TIMEOUT must be positive")
	}

	if c.Session.HashKey != "" && len(c.Session.HashKey) < 32 {
		errors = append(errors, "SESSION_HASH_KEY must be at least 32 bytes")
	}

	if c.Security.EnableRateLimit && (c.Security.RateLimitPerSecond <= 0 || c.Security.RateLimitBurst < 1) {
		errors = append(errors, "RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	if c.Trigger.Concurrency < 1 {
		errors = append(errors, "TRIGGER_CONCURRENCY must be at least 1")
	}

	if c.MQTTEnabled() && (c.MQTT.Port < 1 || c.MQTT.Port > 65535) {
		errors = append(errors, "MQTT_PORT must be between 1 and 65535")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║           Alert Console - Configuration                  ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Printf("Environment:     %s\n", c.Server.Environment)
	fmt.Printf("Server:          %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Backend API:     %s\n", c.Gateway.BaseURL)
	if c.MQTTEnabled() {
		fmt.Printf("MQTT Broker:     %s:%d\n", c.MQTT.Broker, c.MQTT.Port)
	} else {
		fmt.Println("MQTT Broker:     disabled")
	}
	fmt.Println("──────────────────────────────────────────────────────────")
}
