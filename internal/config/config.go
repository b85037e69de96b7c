package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
	StorageMemory   = "memory"
)

type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Logging       LoggingConfig      `yaml:"logging"`
	Storage       StorageConfig      `yaml:"storage"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Kafka         KafkaConfig        `yaml:"kafka"`
	Notifications NotificationConfig `yaml:"notifications"`
	AI            AIConfig           `yaml:"ai"`
}

type ServerConfig struct {
	HTTPPort     string        `yaml:"http_port"`
	GRPCPort     string        `yaml:"grpc_port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
	FileName string `yaml:"file_name"`
}

type StorageConfig struct {
	Backend  string `yaml:"backend"`
	FilePath string `yaml:"file_path"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URLs     []string      `yaml:"urls"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type KafkaConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Brokers           []string `yaml:"brokers"`
	EventsTopic       string   `yaml:"events_topic"`
	NotificationTopic string   `yaml:"notification_topic"`
}

type NotificationConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Window   time.Duration `yaml:"window"`
}

type AIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Host    string        `yaml:"host"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:     "8081",
			GRPCPort:     "9090",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: "logs",
			FileName: "taskflow.log",
		},
		Storage: StorageConfig{
			Backend:  StoragePostgres,
			FilePath: "data/flows.json",
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			Name: "taskflow_db",
			User: "taskflow_user",
		},
		Redis: RedisConfig{
			URLs: []string{},
			TTL:  300 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:           []string{},
			EventsTopic:       "taskflow.events",
			NotificationTopic: "taskflow.notifications",
		},
		Notifications: NotificationConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Window:   10 * time.Minute,
		},
		AI: AIConfig{
			Host:    "http://localhost:11434",
			Model:   "llama3.2",
			Timeout: 60 * time.Second,
		},
	}
}

// Load reads .env (if any), then the YAML file named by TASKFLOW_CONFIG (if
// any), then lets environment variables override individual settings.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg := defaults()
	if path := os.Getenv("TASKFLOW_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPPort = getEnv("HTTP_PORT", c.Server.HTTPPort)
	c.Server.GRPCPort = getEnv("GRPC_PORT", c.Server.GRPCPort)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Logging.Output = getEnv("LOG_OUTPUT", c.Logging.Output)
	c.Logging.FilePath = getEnv("LOG_FILE_PATH", c.Logging.FilePath)
	c.Logging.FileName = getEnv("LOG_FILE_NAME", c.Logging.FileName)

	c.Storage.Backend = strings.ToLower(getEnv("STORAGE_BACKEND", c.Storage.Backend))
	c.Storage.FilePath = getEnv("STORAGE_FILE_PATH", c.Storage.FilePath)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	if v := os.Getenv("REDIS_URLS"); v != "" {
		c.Redis.URLs = splitList(v)
	}
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvDuration("REDIS_TTL", c.Redis.TTL)

	c.Kafka.Enabled = getEnvBool("KAFKA_ENABLED", c.Kafka.Enabled)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	c.Kafka.EventsTopic = getEnv("KAFKA_EVENTS_TOPIC", c.Kafka.EventsTopic)
	c.Kafka.NotificationTopic = getEnv("KAFKA_NOTIFICATION_TOPIC", c.Kafka.NotificationTopic)

	c.Notifications.Enabled = getEnvBool("NOTIFICATIONS_ENABLED", c.Notifications.Enabled)
	c.Notifications.Interval = getEnvDuration("NOTIFICATIONS_INTERVAL", c.Notifications.Interval)
	c.Notifications.Window = getEnvDuration("NOTIFICATIONS_WINDOW", c.Notifications.Window)

	c.AI.Enabled = getEnvBool("AI_ENABLED", c.AI.Enabled)
	c.AI.Host = getEnv("OLLAMA_HOST", c.AI.Host)
	c.AI.Model = getEnv("AI_MODEL", c.AI.Model)
	c.AI.Timeout = getEnvDuration("AI_TIMEOUT", c.AI.Timeout)
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StoragePostgres, StorageFile, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == StorageFile && c.Storage.FilePath == "" {
		return errors.New("storage file path is required for the file backend")
	}
	if c.Redis.Enabled && len(c.Redis.URLs) == 0 {
		return errors.New("redis is enabled but REDIS_URLS is empty")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka is enabled but KAFKA_BROKERS is empty")
	}
	if c.Notifications.Interval <= 0 || c.Notifications.Window <= 0 {
		return errors.New("notification interval and window must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}

func splitList(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
