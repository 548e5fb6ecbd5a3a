package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

func New() Config {
	return Config{
		BasePath: getEnvOrDefault("BASE_PATH", ""),
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		Redis: Redis{
			Host: requireEnv("REDIS_HOST"),
			Port: requireEnvAsInt("REDIS_PORT"),
		},
		RabbitMqURL: RabbitMQ{
			Host:     requireEnv("RABBITMQ_HOST"),
			Port:     requireEnvAsInt("RABBITMQ_PORT"),
			Username: requireEnv("RABBITMQ_USERNAME"),
			Password: requireEnv("RABBITMQ_PASSWORD"),
		},
		Atlas: Atlas{
			PublicKey:  requireEnv("ATLAS_PUBLIC_KEY"),
			PrivateKey: requireEnv("ATLAS_PRIVATE_KEY"),
			OrgID:      requireEnv("ATLAS_ORG_ID"),
			BaseURL:    getEnvOrDefault("ATLAS_BASE_URL", ""),
		},
		Authentication: Authentication{
			PublicKey: requireEnv("JWT_PUBLIC_KEY"),
		},
		Tracing: Tracing{
			JaegerEndpoint: getEnvOrDefault("JAEGER_ENDPOINT", ""),
		},
		CleanupInterval:  time.Duration(getEnvAsIntOrDefault("CLEANUP_INTERVAL_SECONDS", 900)) * time.Second,
		ProvisionLockTTL: time.Duration(getEnvAsIntOrDefault("PROVISION_LOCK_TTL_SECONDS", 120)) * time.Second,
		LogPretty:        getEnvAsBoolOrDefault("LOG_PRETTY", false),
	}
}

// NewCLI returns the configuration needed by the command line tool. It doesn't serve HTTP or
// consume messages so neither RabbitMQ nor token verification is configured.
func NewCLI() Config {
	c := Config{
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		Atlas: Atlas{
			PublicKey:  requireEnv("ATLAS_PUBLIC_KEY"),
			PrivateKey: requireEnv("ATLAS_PRIVATE_KEY"),
			OrgID:      requireEnv("ATLAS_ORG_ID"),
			BaseURL:    getEnvOrDefault("ATLAS_BASE_URL", ""),
		},
		LogPretty: getEnvAsBoolOrDefault("LOG_PRETTY", false),
	}
	return c
}

type Config struct {
	BasePath         string
	Postgresql       Postgresql
	Redis            Redis
	RabbitMqURL      RabbitMQ
	Atlas            Atlas
	Authentication   Authentication
	Tracing          Tracing
	CleanupInterval  time.Duration
	ProvisionLockTTL time.Duration
	LogPretty        bool
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

type Redis struct {
	Host string
	Port int
}

type RabbitMQ struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (r RabbitMQ) GetUrl() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.Username, r.Password, r.Host, r.Port)
}

// Atlas holds the programmatic API key of the organization clusters are provisioned in.
type Atlas struct {
	PublicKey  string
	PrivateKey string
	OrgID      string
	BaseURL    string
}

type Tracing struct {
	// JaegerEndpoint is the collector spans are sent to. Tracing is disabled if empty.
	JaegerEndpoint string
}

type Authentication struct {
	// PublicKey is the PEM encoded RSA key tokens are signed with.
	PublicKey string
}

func (a Authentication) GetPublicKey() (jwk.Key, error) {
	key, err := jwk.ParseKey([]byte(a.PublicKey), jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %v", err)
	}
	return key, nil
}

func requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("Can't find environment variable: %s\n", key)
	}
	return value
}

func requireEnvAsInt(key string) int {
	valueStr := requireEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse %s as integer: %s", key, err.Error())
	}
	return value
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Fatalf("Can't parse %s as boolean: %s", key, err.Error())
	}
	return value
}
