// Initializing common application configuration
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Rabbit   RabbitConfig   `mapstructure:"rabbit"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Push     PushConfig     `mapstructure:"push"`
}

type ServerConfig struct {
	AppVersion   string `json:"appVersion"`
	Host         string `json:"host" validate:"required"`
	Port         string `json:"port" validate:"required"`
	Timeout      time.Duration
	Idle_timeout time.Duration
	Env          string `json:"environment"`
	Mode         string `mapstructure:"mode"`
}

// BackendConfig points the agent at the Santé Virtuelle backend: the REST
// base URL for the notification inbox and the WebSocket feed URL pattern.
type BackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	WSURL       string        `mapstructure:"ws_url"` // e.g. ws://host:8000/ws/notifications/%s/
	UserID      string        `mapstructure:"user_id"`
	AuthToken   string        `mapstructure:"auth_token"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

type RedisConfig struct {
	URL      string `json:"URL"`
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"required"`
	Password string `json:"password"`
	DB       int    `json:"db"`

	// Connection pool settings
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	MaxIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration

	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Enabled  bool          `mapstructure:"enabled"`
}

type RabbitConfig struct {
	URL          string `mapstructure:"url"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	QueueName    string `mapstructure:"queue_name"`
	ExchangeName string `mapstructure:"exchange_name"`
	Enabled      bool   `mapstructure:"enabled"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

type ReminderConfig struct {
	CheckInterval     time.Duration `mapstructure:"check_interval"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
}

type PushConfig struct {
	Icon  string `mapstructure:"icon"`
	Badge string `mapstructure:"badge"`
	Lang  string `mapstructure:"lang"`
	Tag   string `mapstructure:"tag"`
	Chime bool   `mapstructure:"chime"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.mode", "release")

	v.SetDefault("backend.http_timeout", 10*time.Second)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.cache_ttl", 24*time.Hour)

	v.SetDefault("rabbit.enabled", false)
	v.SetDefault("telegram.enabled", false)

	v.SetDefault("reminder.check_interval", time.Minute)
	v.SetDefault("reminder.reconnect_attempts", 5)
	v.SetDefault("reminder.reconnect_delay", time.Second)

	v.SetDefault("push.icon", "/images/logo.png")
	v.SetDefault("push.badge", "/images/logo.png")
	v.SetDefault("push.lang", "fr-FR")
	v.SetDefault("push.tag", "assitosante-notification")
	v.SetDefault("push.chime", true)
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		log.Fatalf("unable to decode config into struct, %v", err)
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
