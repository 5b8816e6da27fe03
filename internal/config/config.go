package config

import (
	"bytes"
	_ "embed"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Vendor    VendorConfig    `mapstructure:"vendor"`
	Campaign  CampaignConfig  `mapstructure:"campaign"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	GroupID        string   `mapstructure:"group_id"`
	CustomersTopic string   `mapstructure:"customers_topic"`
	OrdersTopic    string   `mapstructure:"orders_topic"`
	PublishEnabled bool     `mapstructure:"publish_enabled"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

type GenAIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"`
}

// VendorConfig covers both sides of the simulated channel: the dispatcher's
// client (base_url, send_path, timeout, breaker) and the simulator itself
// (success_rate, delay, callback_url). The probability and delay are
// deliberately configuration, not constants.
type VendorConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	SendPath    string        `mapstructure:"send_path"`
	TimeoutMs   int           `mapstructure:"timeout_ms"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
	SuccessRate float64       `mapstructure:"success_rate"`
	Delay       time.Duration `mapstructure:"delay"`
	CallbackURL string        `mapstructure:"callback_url"`
}

type CampaignConfig struct {
	// Personalization selects how the per-customer message is produced:
	// "ai" regenerates content per customer, "template" substitutes tokens
	// into the submitted messageTemplate.
	Personalization string `mapstructure:"personalization"`
	WorkerCount     int    `mapstructure:"worker_count"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (CRMGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (CRMGW_*)
	v.SetEnvPrefix("CRMGW")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
