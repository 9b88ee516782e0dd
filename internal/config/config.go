package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-yaml/yaml"
)

// Config is the full server configuration. Values come from a YAML
// file, then environment variables override whatever the file set.
type Config struct {
	Server  Server  `yaml:"server" envPrefix:"SERVER_"`
	Auth    Auth    `yaml:"auth" envPrefix:"AUTH_"`
	Storage Storage `yaml:"storage" envPrefix:"MINIO_"`
	Chain   Chain   `yaml:"chain" envPrefix:"CHAIN_"`
	Payment Payment `yaml:"payment" envPrefix:"PAYMENT_"`
}

type Server struct {
	Listen         string        `yaml:"listen" env:"LISTEN" envDefault:":8000"`
	PostgresDsn    string        `yaml:"postgresDsn" env:"POSTGRES_DSN"`
	RedisAddr      string        `yaml:"redisAddr" env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	RedisDB        int           `yaml:"redisDB" env:"REDIS_DB"`
	MemcachedAddr  string        `yaml:"memcachedAddr" env:"MEMCACHED_ADDR" envDefault:"localhost:11211"`
	EnableTrace    bool          `yaml:"enableTrace" env:"ENABLE_TRACE"`
	TraceEndpoint  string        `yaml:"traceEndpoint" env:"TRACE_ENDPOINT"`
	RequestTimeout time.Duration `yaml:"requestTimeout" env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel       int           `yaml:"logLevel" env:"LOG_LEVEL"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwtSecret" env:"JWT_SECRET"`
	AccessTTL time.Duration `yaml:"accessTTL" env:"ACCESS_TTL" envDefault:"24h"`
}

type Storage struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `yaml:"accessKey" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secretKey" env:"SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"BUCKET" envDefault:"trusthire-resumes"`
	UseSSL    bool   `yaml:"useSSL" env:"USE_SSL"`
}

type Chain struct {
	RPCURL          string        `yaml:"rpcUrl" env:"RPC_URL"`
	ContractAddress string        `yaml:"contractAddress" env:"CONTRACT_ADDRESS"`
	PrivateKey      string        `yaml:"privateKey" env:"PRIVATE_KEY"`
	ChainID         int64         `yaml:"chainId" env:"CHAIN_ID"`
	ConfirmTimeout  time.Duration `yaml:"confirmTimeout" env:"CONFIRM_TIMEOUT" envDefault:"2m"`
}

type Payment struct {
	// CallbackSecret authenticates the provider's confirmation webhook.
	CallbackSecret string `yaml:"callbackSecret" env:"CALLBACK_SECRET"`
}

// Load reads the YAML file at path (if it exists) and applies
// environment overrides on top.
func Load(path string) (Config, error) {
	var config Config

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("auth.jwtSecret must be set")
	}

	return config, nil
}
