package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys makes AutomaticEnv see keys that may be absent from every yaml
// file, so APP_SMS_ORIGINATION_NUMBER works without a placeholder entry.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"aws.region",
		"aws.s3.bucket",
		"aws.dynamodb.table",
		"aws.dynamodb.pending_index",
		"store.backend",
		"sms.provider",
		"sms.application_id",
		"sms.origination_number",
		"pipeline.default_region",
		"pipeline.run_lock.enabled",
		"camunda.enabled",
		"camunda.broker_address",
		"database.redis.address",
		"database.postgres.host",
		"http.address",
		"logging.level",
		"logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// unset variables expand to "" so overrideEmptyConfig and
			// validation see the gap
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills the gateway secrets from their conventional
// variable names when the yaml left them blank.
func overrideEmptyConfig(cfg *Config) {
	if cfg.SMS.ApplicationID == "" {
		if val := os.Getenv("PINPOINT_APPLICATION_ID"); val != "" {
			cfg.SMS.ApplicationID = val
		}
	}
	if cfg.SMS.OriginationNumber == "" {
		if val := os.Getenv("SMS_ORIGINATION_NUMBER"); val != "" {
			cfg.SMS.OriginationNumber = val
		}
	}
	if cfg.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.AWS.Region = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "findvax-notifier"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 1
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 60000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}
	if cfg.AWS.S3.Bucket == "" {
		cfg.AWS.S3.Bucket = "findvax-data"
	}
	if cfg.AWS.DynamoDB.Table == "" {
		cfg.AWS.DynamoDB.Table = "notify"
	}
	if cfg.AWS.DynamoDB.PendingIndex == "" {
		cfg.AWS.DynamoDB.PendingIndex = "location-isSent-index"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreBackendDynamoDB
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = "notify"
	}

	if cfg.SMS.Provider == "" {
		cfg.SMS.Provider = SMSProviderPinpoint
	}
	if cfg.SMS.MaxConcurrentSends == 0 {
		cfg.SMS.MaxConcurrentSends = 10
	}

	if cfg.Pipeline.DefaultRegion == "" {
		cfg.Pipeline.DefaultRegion = "MA"
	}
	if cfg.Pipeline.AvailabilityKey == "" {
		cfg.Pipeline.AvailabilityKey = "%s/availability.json"
	}
	if cfg.Pipeline.LocationsKey == "" {
		cfg.Pipeline.LocationsKey = "%s/locations.json"
	}
	if cfg.Pipeline.Timeout == 0 {
		cfg.Pipeline.Timeout = 60000
	}
	if cfg.Pipeline.RunLock.TTL == 0 {
		cfg.Pipeline.RunLock.TTL = 5 * 60000
	}

	applyTemplateDefaults(&cfg.Templates, DefaultTemplates())
	applyTemplateDefaults(&cfg.Megaphone.Templates, DefaultMegaphoneTemplates())

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 1
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Pipeline.Timeout
		}
		cfg.Workers[key] = worker
	}
}

func applyTemplateDefaults(tc *TemplateConfig, defaults TemplateConfig) {
	if tc.DefaultLang == "" {
		tc.DefaultLang = defaults.DefaultLang
	}
	if len(tc.Languages) == 0 {
		tc.Languages = defaults.Languages
	}
}

// DefaultTemplates returns the built-in availability alert wording.
func DefaultTemplates() TemplateConfig {
	return TemplateConfig{
		DefaultLang: "en",
		Languages: map[string]MessageTemplate{
			"en": {
				Start: "Findvax.us found available slots:\n\n",
				End:   "\n\nWe'll stop notifying you for these locations now. Re-subscribe on the site if needed.",
			},
		},
	}
}

// DefaultMegaphoneTemplates returns the built-in broadcast wording.
func DefaultMegaphoneTemplates() TemplateConfig {
	return TemplateConfig{
		DefaultLang: "en",
		Languages: map[string]MessageTemplate{
			"en": {
				Start: "MA now uses a preregistration tool for the 7 mass vaccination locations. Findvax.us may no longer be able to see availability at these locations you requested:\n\n",
				End:   "\n\nPlease register with the state tool: https://www.mass.gov/info-details/preregister-for-a-covid-19-vaccine-appointment",
			},
		},
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Store.Backend {
	case StoreBackendDynamoDB:
	case StoreBackendPostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required for the postgres store")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required for the postgres store")
		}
	default:
		return fmt.Errorf("store.backend %q is not supported", cfg.Store.Backend)
	}

	switch cfg.SMS.Provider {
	case SMSProviderPinpoint:
		if cfg.SMS.ApplicationID == "" {
			return fmt.Errorf("sms.application_id is required for pinpoint")
		}
		if cfg.SMS.OriginationNumber == "" {
			return fmt.Errorf("sms.origination_number is required for pinpoint")
		}
	case SMSProviderSNS, SMSProviderLog:
	default:
		return fmt.Errorf("sms.provider %q is not supported", cfg.SMS.Provider)
	}

	if _, ok := cfg.Templates.Languages[cfg.Templates.DefaultLang]; !ok {
		return fmt.Errorf("templates.default_lang %q has no template", cfg.Templates.DefaultLang)
	}
	if _, ok := cfg.Megaphone.Templates.Languages[cfg.Megaphone.Templates.DefaultLang]; !ok {
		return fmt.Errorf("megaphone.templates.default_lang %q has no template", cfg.Megaphone.Templates.DefaultLang)
	}

	if !strings.Contains(cfg.Pipeline.AvailabilityKey, "%s") || !strings.Contains(cfg.Pipeline.LocationsKey, "%s") {
		return fmt.Errorf("pipeline snapshot keys must contain a %%s region placeholder")
	}

	if cfg.Pipeline.RunLock.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when pipeline.run_lock is enabled")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 1,
		Timeout:       cfg.Pipeline.Timeout,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
