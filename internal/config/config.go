package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Broker drivers selectable via BROKER_DRIVER.
const (
	DriverAMQP  = "amqp"
	DriverKafka = "kafka"
)

// Generator holds configuration for the news generator daemon.
type Generator struct {
	BrokerDriver string
	BrokerHost   string
	BrokerPort   int
	BrokerUser   string
	BrokerPass   string
	Exchange     string

	MaxRetries     int
	ConnectBackoff time.Duration
	PublishTimeout time.Duration

	IntervalMin time.Duration
	IntervalMax time.Duration

	Preflight        bool
	PreflightTimeout time.Duration

	AdminAddr string

	DedupeCapacity int
	DedupeTTL      time.Duration
}

// LoadGenerator builds a Generator config from environment variables.
func LoadGenerator() (*Generator, error) {
	c := &Generator{
		BrokerDriver:     strings.ToLower(getEnv("BROKER_DRIVER", DriverAMQP)),
		BrokerHost:       getEnv("BROKER_HOST", "localhost"),
		BrokerPort:       getInt("BROKER_PORT", 5672),
		BrokerUser:       getEnv("BROKER_USER", "guest"),
		BrokerPass:       getEnv("BROKER_PASS", "guest"),
		Exchange:         getEnv("BROKER_EXCHANGE", "news_exchange"),
		MaxRetries:       getInt("MAX_CONNECT_RETRIES", 5),
		ConnectBackoff:   getDuration("CONNECT_BACKOFF", "3s"),
		PublishTimeout:   getDuration("PUBLISH_TIMEOUT", "5s"),
		IntervalMin:      getDuration("PUBLISH_INTERVAL_MIN", "5s"),
		IntervalMax:      getDuration("PUBLISH_INTERVAL_MAX", "10s"),
		Preflight:        getBool("PREFLIGHT", true),
		PreflightTimeout: getDuration("PREFLIGHT_TIMEOUT", "5s"),
		AdminAddr:        getEnv("ADMIN_ADDR", ""),
		DedupeCapacity:   getInt("DEDUPE_CAPACITY", 4096),
		DedupeTTL:        getDuration("DEDUPE_TTL", "1h"),
	}

	if c.BrokerDriver != DriverAMQP && c.BrokerDriver != DriverKafka {
		return nil, fmt.Errorf("BROKER_DRIVER must be %q or %q", DriverAMQP, DriverKafka)
	}
	if c.BrokerHost == "" {
		return nil, fmt.Errorf("BROKER_HOST cannot be empty")
	}
	if c.BrokerPort <= 0 || c.BrokerPort > 65535 {
		return nil, fmt.Errorf("BROKER_PORT must be a valid port")
	}
	if c.MaxRetries <= 0 {
		return nil, fmt.Errorf("MAX_CONNECT_RETRIES must be positive")
	}
	if c.ConnectBackoff <= 0 {
		return nil, fmt.Errorf("CONNECT_BACKOFF must be positive")
	}
	if c.PublishTimeout <= 0 {
		return nil, fmt.Errorf("PUBLISH_TIMEOUT must be positive")
	}
	if c.IntervalMin <= 0 {
		return nil, fmt.Errorf("PUBLISH_INTERVAL_MIN must be positive")
	}
	if c.IntervalMax < c.IntervalMin {
		return nil, fmt.Errorf("PUBLISH_INTERVAL_MAX cannot be below PUBLISH_INTERVAL_MIN")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// BrokerAddr returns host:port.
func (c *Generator) BrokerAddr() string {
	return net.JoinHostPort(c.BrokerHost, strconv.Itoa(c.BrokerPort))
}

// AMQPURL builds the broker URL for the AMQP driver.
func (c *Generator) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s/", c.BrokerUser, c.BrokerPass, c.BrokerAddr())
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
