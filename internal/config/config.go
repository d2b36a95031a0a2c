// Package config предоставляет структуры и функции для загрузки конфигурации.
//
// Конфиг читается один раз при старте процесса из YAML‑файла (CONFIG_PATH),
// секреты можно переопределить переменными окружения. Готовая структура
// передаётся в компоненты явно, глобального состояния нет.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	GRPCServer      `yaml:"grpc_server"`
	JWTToken        `yaml:"jwttoken"`
	RabbitMQ        `yaml:"rabbitmq"`
	SMTP            `yaml:"smtp"`
	Notification    `yaml:"notification"`
	RateLimit       `yaml:"rate_limit"`
	BootstrapAdmin  `yaml:"bootstrap_admin"`
}

// Storage настройки хранилища пользователей и задач.
type Storage struct {
	Driver        string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	PostgresDSN   string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	MongoURI      string `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string `yaml:"mongo_database" env-default:"task_manager"`
}

// RedisConnection настройки подключения к redis. Пустой адрес отключает кэш.
type RedisConnection struct {
	RedisAddress     string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword    string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser        string        `yaml:"user"`
	RedisDB          int           `yaml:"db"`
	RedisMaxRetries  int           `yaml:"max_retries" env-default:"3"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	RedisTimeout     time.Duration `yaml:"timeoutredis" env-default:"3s"`
	UserCacheTTL     time.Duration `yaml:"user_cache_ttl" env-default:"5m"`
}

// HTTPServer настройки HTTP‑сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// GRPCServer настройки gRPC‑сервера проверки состояния. Пустой адрес отключает сервер.
type GRPCServer struct {
	GRPCAddress string `yaml:"address"`
}

// JWTToken настройки сессионных токенов.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"30m"`
}

// RabbitMQ настройки брокера. Пустой URL включает доставку писем в процессе.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP настройки почтового сервера. Пустой хост включает имитацию отправки.
type SMTP struct {
	SMTPHost     string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort     string `yaml:"port" env-default:"587"`
	SMTPUser     string `yaml:"user" env:"SMTP_USER"`
	SMTPPass     string `yaml:"password" env:"SMTP_PASSWORD"`
	SMTPFrom     string `yaml:"from"`
	SMTPFromName string `yaml:"from_name" env-default:"TaskManager"`
}

// Notification настройки асинхронной отправки писем.
type Notification struct {
	Workers   int    `yaml:"workers" env-default:"2"`
	QueueSize int    `yaml:"queue_size" env-default:"100"`
	LoginURL  string `yaml:"login_url" env-default:"http://localhost:8000"`
}

// RateLimit ограничение частоты запросов на вход с одного адреса.
type RateLimit struct {
	LoginRPS   float64 `yaml:"login_rps" env-default:"1"`
	LoginBurst int     `yaml:"login_burst" env-default:"5"`
}

// BootstrapAdmin учётная запись администратора, создаваемая при старте.
// Пустой email отключает создание.
type BootstrapAdmin struct {
	AdminEmail    string `yaml:"email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"password" env:"ADMIN_PASSWORD"`
	AdminFullname string `yaml:"fullname" env-default:"Administrator"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает и проверяет конфиг из файла.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt_secret_key is required")
	}
	switch c.Driver {
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for postgres driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("storage.mongo_uri is required for mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  MongoDatabase: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPCServer:\n"+
			"  Address: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Notification:\n"+
			"  Workers: %d\n"+
			"  QueueSize: %d\n"+
			"  LoginURL: %s\n",
		c.Env,
		c.Driver,
		c.MongoDatabase,
		c.RedisAddress,
		c.RedisDB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.GRPCAddress,
		c.TokenTTL,
		c.Workers,
		c.QueueSize,
		c.LoginURL,
	)
}
