package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Store         StoreConfig             `mapstructure:"store"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Chatbot       ChatbotConfig           `mapstructure:"chatbot"`
	Analytics     AnalyticsConfig         `mapstructure:"analytics"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Scheduler     SchedulerConfig         `mapstructure:"scheduler"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig covers the public chat API and the ops endpoints.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	HealthPort     int      `mapstructure:"health_port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
}

// Document store backends.
const (
	StoreBackendMemory    = "memory"
	StoreBackendFirestore = "firestore"
	StoreBackendPostgres  = "postgres"
)

type StoreConfig struct {
	Backend   string          `mapstructure:"backend"`
	Timeout   int             `mapstructure:"timeout"` // milliseconds per query
	Firestore FirestoreConfig `mapstructure:"firestore"`
	SeedFile  string          `mapstructure:"seed_file"` // memory backend only
}

type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	EmulatorHost    string `mapstructure:"emulator_host"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Table          string `mapstructure:"table"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// Context store backends.
const (
	ContextBackendMemory = "memory"
	ContextBackendRedis  = "redis"
)

type ChatbotConfig struct {
	ContextBackend   string `mapstructure:"context_backend"`
	ContextTTL       int    `mapstructure:"context_ttl"` // milliseconds
	JobResultLimit   int    `mapstructure:"job_result_limit"`
	SearchAllLimit   int    `mapstructure:"search_all_limit"`
	CategoryLimit    int    `mapstructure:"category_limit"`
	BookingLimit     int    `mapstructure:"booking_limit"`
	TypeCacheTTL     int    `mapstructure:"type_cache_ttl"` // milliseconds
	FollowUpsEnabled bool   `mapstructure:"follow_ups_enabled"`
}

type AnalyticsConfig struct {
	DocStoreEnabled      bool   `mapstructure:"docstore_enabled"`
	ElasticsearchEnabled bool   `mapstructure:"elasticsearch_enabled"`
	ElasticsearchIndex   string `mapstructure:"elasticsearch_index"`
}

// NotificationConfig holds settings for booking and alert delivery.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	TypeCacheRefresh string `mapstructure:"type_cache_refresh"` // cron spec
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
