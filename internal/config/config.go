package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN" env-required:"true"`
	AppSecret   string            `yaml:"app_secret" env:"APP_SECRET" env-required:"true"`
	TokenTTL    time.Duration     `yaml:"token_ttl" env-default:"15m"`
	HTTP        HTTPConfig        `yaml:"http"`
	Redis       RedisConf         `yaml:"redis"`
	Storage     StorageConfig     `yaml:"storage"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	SuperAdmins []string          `yaml:"super_admins" env:"SUPER_ADMINS"`
	Staff       map[string]string `yaml:"staff"` // справочник имя -> email для автоподстановки
	SessionKey  string            `yaml:"session_key" env:"SESSION_KEY" env-default:"suivi-session"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

type StorageConfig struct {
	SupabaseURL string `yaml:"supabase_url" env:"SUPABASE_URL"`
	ServiceKey  string `yaml:"service_key" env:"SUPABASE_SERVICE_KEY"`
	Bucket      string `yaml:"bucket" env-default:"suivi-clients"`
}

type WebhookConfig struct {
	URL     string        `yaml:"url" env:"WEBHOOK_URL"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
