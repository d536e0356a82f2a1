package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	AWS       AWSConfig               `mapstructure:"aws"`
	Store     StoreConfig             `mapstructure:"store"`
	SMS       SMSConfig               `mapstructure:"sms"`
	Pipeline  PipelineConfig          `mapstructure:"pipeline"`
	Templates TemplateConfig          `mapstructure:"templates"`
	Megaphone MegaphoneConfig         `mapstructure:"megaphone"`
	HTTP      HTTPConfig              `mapstructure:"http"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
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
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AWSConfig holds the managed-service coordinates shared by every entry point.
type AWSConfig struct {
	Region string `mapstructure:"region"`
	S3     struct {
		Bucket string `mapstructure:"bucket"`
	} `mapstructure:"s3"`
	DynamoDB struct {
		Table        string `mapstructure:"table"`
		PendingIndex string `mapstructure:"pending_index"`
	} `mapstructure:"dynamodb"`
}

// Store backends.
const (
	StoreBackendDynamoDB = "dynamodb"
	StoreBackendPostgres = "postgres"
)

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Table   string `mapstructure:"table"` // postgres table name
}

// SMS providers.
const (
	SMSProviderSNS      = "sns"
	SMSProviderPinpoint = "pinpoint"
	SMSProviderLog      = "log"
)

type SMSConfig struct {
	Provider           string `mapstructure:"provider"`
	ApplicationID      string `mapstructure:"application_id"`
	OriginationNumber  string `mapstructure:"origination_number"`
	MaxConcurrentSends int    `mapstructure:"max_concurrent_sends"`
}

type PipelineConfig struct {
	DefaultRegion    string `mapstructure:"default_region"`
	AvailabilityKey  string `mapstructure:"availability_key"` // e.g. "%s/availability.json"
	LocationsKey     string `mapstructure:"locations_key"`    // e.g. "%s/locations.json"
	UnknownSlotCount int    `mapstructure:"unknown_slot_count"`
	Timeout          int    `mapstructure:"timeout"` // milliseconds
	RunLock          struct {
		Enabled bool `mapstructure:"enabled"`
		TTL     int  `mapstructure:"ttl"` // milliseconds
	} `mapstructure:"run_lock"`
}

// MessageTemplate is the start/end text wrapped around the per-location lines.
type MessageTemplate struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type TemplateConfig struct {
	DefaultLang string                     `mapstructure:"default_lang"`
	Languages   map[string]MessageTemplate `mapstructure:"languages"`
}

type MegaphoneConfig struct {
	LocationIDs []string       `mapstructure:"location_ids"`
	Send        bool           `mapstructure:"send"`
	Templates   TemplateConfig `mapstructure:"templates"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// WorkerConfig holds the core settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// AvailabilityKeyFor resolves the availability snapshot key for a region.
func (p PipelineConfig) AvailabilityKeyFor(region string) string {
	return fmt.Sprintf(p.AvailabilityKey, p.regionOrDefault(region))
}

// LocationsKeyFor resolves the location snapshot key for a region.
func (p PipelineConfig) LocationsKeyFor(region string) string {
	return fmt.Sprintf(p.LocationsKey, p.regionOrDefault(region))
}

func (p PipelineConfig) regionOrDefault(region string) string {
	if region == "" {
		return p.DefaultRegion
	}
	return region
}

// RegionOrDefault returns region, or the configured default when empty.
func (p PipelineConfig) RegionOrDefault(region string) string {
	return p.regionOrDefault(region)
}

// RunLockTTL returns the run lock expiry.
func (p PipelineConfig) RunLockTTL() time.Duration {
	return GetDuration(p.RunLock.TTL)
}
