package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	Env           string `mapstructure:"ENV"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`

	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SchedulerInterval time.Duration `mapstructure:"SCHEDULER_INTERVAL"`
	ConsistencyCheck  bool          `mapstructure:"CONSISTENCY_CHECK"`

	KafkaBrokers   string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string `mapstructure:"KAFKA_TOPIC"`
	ChatWebhookURL string `mapstructure:"CHAT_WEBHOOK_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	StorageBaseURL    string        `mapstructure:"STORAGE_BASE_URL"`
	StorageSigningKey string        `mapstructure:"STORAGE_SIGNING_KEY"`
	ReceiptURLTTL     time.Duration `mapstructure:"RECEIPT_URL_TTL"`
}

// IsDev сообщает, что приложение запущено в режиме разработки.
func (c Config) IsDev() bool {
	return c.Env == "development"
}

// Brokers возвращает список адресов Kafka.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// LoadConfig загружает конфигурацию из файла. Переменные окружения
// перекрывают значения из файла.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("MIGRATION_URL", "file://migrations")
	v.SetDefault("REQUEST_TIMEOUT", 5*time.Second)
	v.SetDefault("SCHEDULER_INTERVAL", time.Minute)
	v.SetDefault("CONSISTENCY_CHECK", true)
	v.SetDefault("KAFKA_TOPIC", "rfq-awards")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RECEIPT_URL_TTL", 15*time.Minute)
	// AutomaticEnv видит только ключи, известные viper.
	for _, key := range []string{
		"POSTGRES_CONN", "POSTGRES_USERNAME", "POSTGRES_PASSWORD", "POSTGRES_HOST",
		"POSTGRES_PORT", "POSTGRES_DATABASE", "KAFKA_BROKERS", "CHAT_WEBHOOK_URL",
		"REDIS_ADDR", "REDIS_PASSWORD", "STORAGE_BASE_URL", "STORAGE_SIGNING_KEY",
	} {
		v.SetDefault(key, "")
	}

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}
	err = v.Unmarshal(&cfg)
	return
}
