package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// when present, and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	return decode(v)
}

// LoadFromFile reads a single config file, still honouring env overrides.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers keys that may only come from the environment so
// AutomaticEnv can see them during Unmarshal.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"camunda.broker_address",
		"database.postgres.host",
		"database.postgres.user",
		"database.postgres.password",
		"database.redis.address",
		"database.elasticsearch.url",
		"aws.region",
		"aws.sns.topic_arn",
		"nats.url",
		"docugen.catalog_path",
		"docugen.article_source",
		"docugen.notifier",
		"docugen.review_email",
	} {
		_ = v.BindEnv(key)
	}
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

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
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "docugen-workers"
	}
	if cfg.App.HealthPort == 0 {
		cfg.App.HealthPort = 8080
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.DocuGen.ArticleSource == "" {
		cfg.DocuGen.ArticleSource = "static"
	}
	if cfg.DocuGen.ArticleIndex == "" {
		cfg.DocuGen.ArticleIndex = "sst-legal-articles"
	}
	if cfg.DocuGen.RegistryPath == "" {
		cfg.DocuGen.RegistryPath = "configs/activity-registry.json"
	}
	if cfg.DocuGen.CacheTTL == 0 {
		cfg.DocuGen.CacheTTL = 86400
	}
	if cfg.DocuGen.Notifier == "" {
		cfg.DocuGen.Notifier = "none"
	}
	if cfg.DocuGen.Breaker.MaxRequests == 0 {
		cfg.DocuGen.Breaker.MaxRequests = 1
	}
	if cfg.DocuGen.Breaker.Timeout == 0 {
		cfg.DocuGen.Breaker.Timeout = 30000
	}
	if cfg.DocuGen.Breaker.FailureThreshold == 0 {
		cfg.DocuGen.Breaker.FailureThreshold = 5
	}

	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "ca-central-1"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "docugen.document.generated"
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

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.DocuGen.AuditEnabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when docugen.audit_enabled is set")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when docugen.audit_enabled is set")
		}
	}

	if (cfg.DocuGen.AuditEnabled || cfg.DocuGen.CacheEnabled) && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required for the audit guard and document cache")
	}

	switch cfg.DocuGen.ArticleSource {
	case "static":
	case "elasticsearch":
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.url is required when docugen.article_source is elasticsearch")
		}
	default:
		return fmt.Errorf("docugen.article_source %q is not supported", cfg.DocuGen.ArticleSource)
	}

	switch cfg.DocuGen.Notifier {
	case "none":
	case "sns":
		if cfg.AWS.SNS.TopicARN == "" {
			return fmt.Errorf("aws.sns.topic_arn is required when docugen.notifier is sns")
		}
	case "nats":
		if cfg.NATS.URL == "" {
			return fmt.Errorf("nats.url is required when docugen.notifier is nats")
		}
	default:
		return fmt.Errorf("docugen.notifier %q is not supported", cfg.DocuGen.Notifier)
	}

	return nil
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
