package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	Room  RoomConfig  `mapstructure:"room"`
	WS    WSConfig    `mapstructure:"ws"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RoomConfig struct {
	CodeLength       int           `mapstructure:"code_length"`
	GracePeriod      time.Duration `mapstructure:"grace_period"`
	MaxMessageLength int           `mapstructure:"max_message_length"`
	KickSlowMembers  bool          `mapstructure:"kick_slow_members"`
}

type WSConfig struct {
	SendBuffer   int           `mapstructure:"send_buffer"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
}

// RedisConfig enables the room event sink when Addr is set.
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
	Buffer        int    `mapstructure:"buffer"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LOUNGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Grace: %s\n", cfg.Mode, cfg.Port, cfg.Room.GracePeriod)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "dev-secret-key-change-in-production")
	v.SetDefault("log_level", "info")

	v.SetDefault("room.code_length", 4)
	v.SetDefault("room.grace_period", "5s")
	v.SetDefault("room.max_message_length", 500)
	v.SetDefault("room.kick_slow_members", true)

	v.SetDefault("ws.send_buffer", 64)
	v.SetDefault("ws.rate_limit", 10)
	v.SetDefault("ws.rate_interval", "5s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel_prefix", "lounge:room:")
	v.SetDefault("redis.buffer", 256)
}

func (c *Config) Validate() error {
	if c.Room.CodeLength < 1 {
		return fmt.Errorf("room.code_length must be positive, got %d", c.Room.CodeLength)
	}
	if c.Room.GracePeriod < 0 {
		return fmt.Errorf("room.grace_period must not be negative, got %s", c.Room.GracePeriod)
	}
	if c.WS.SendBuffer < 1 {
		return fmt.Errorf("ws.send_buffer must be positive, got %d", c.WS.SendBuffer)
	}
	return nil
}
