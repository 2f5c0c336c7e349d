package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"rentaBack/internal/models"
)

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Audience  string `yaml:"audience"`
	} `yaml:"auth"`
	Wompi struct {
		PublicKey       string  `yaml:"public_key"`
		EventsSecret    string  `yaml:"events_secret"`
		IntegritySecret string  `yaml:"integrity_secret"`
		RedirectURL     string  `yaml:"redirect_url"`
		WebhookRPS      float64 `yaml:"webhook_rps"`
		WebhookBurst    int     `yaml:"webhook_burst"`
	} `yaml:"wompi"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	Geocoding struct {
		BaseURL     string `yaml:"base_url"`
		UserAgent   string `yaml:"user_agent"`
		CountryCode string `yaml:"country_code"`
	} `yaml:"geocoding"`
	Contracts struct {
		ExpiryGraceDays int `yaml:"expiry_grace_days"`
	} `yaml:"contracts"`
	Plans []models.Plan `yaml:"plans"`
}

// Plan returns the configured plan with the given id.
func (c Config) Plan(id string) (models.Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.Plan{}, false
}

func (c Config) ExpiryGrace() time.Duration {
	return time.Duration(c.Contracts.ExpiryGraceDays) * 24 * time.Hour
}

// LoadConfig reads the YAML file at CONFIG_PATH (config/config.yaml by
// default) and applies environment overrides.
func LoadConfig() (Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config data: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"DATABASE_URL":           &cfg.Database.URL,
		"REDIS_ADDR":             &cfg.Redis.Addr,
		"REDIS_PASSWORD":         &cfg.Redis.Password,
		"JWT_SECRET":             &cfg.Auth.JWTSecret,
		"WOMPI_PUBLIC_KEY":       &cfg.Wompi.PublicKey,
		"WOMPI_EVENTS_SECRET":    &cfg.Wompi.EventsSecret,
		"WOMPI_INTEGRITY_SECRET": &cfg.Wompi.IntegritySecret,
		"FIREBASE_CREDENTIALS":   &cfg.Firebase.CredentialsFile,
	}
	for env, dst := range overrides {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			cfg.Server.Address = ":" + port
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":4001"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "renta"
	}
	if cfg.Wompi.WebhookRPS <= 0 {
		cfg.Wompi.WebhookRPS = 5
	}
	if cfg.Wompi.WebhookBurst <= 0 {
		cfg.Wompi.WebhookBurst = 10
	}
	if cfg.Contracts.ExpiryGraceDays <= 0 {
		cfg.Contracts.ExpiryGraceDays = 7
	}
	if cfg.Geocoding.UserAgent == "" {
		cfg.Geocoding.UserAgent = "rentaBack/1.0"
	}
	for i := range cfg.Plans {
		if cfg.Plans[i].Currency == "" {
			cfg.Plans[i].Currency = "COP"
		}
	}
}
