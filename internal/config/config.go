// Package config resolves collector settings from defaults, an optional
// config file, CLOUDCOLLECTOR_* environment variables and command flags,
// in increasing precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"cloudcollector/internal/errors"
	"cloudcollector/internal/storage"
)

const (
	EnvPrefix = "CLOUDCOLLECTOR"

	MinConcurrency = 1
	MaxConcurrency = 10
)

// Config is the resolved configuration.
type Config struct {
	Profile        string   `mapstructure:"profile"`
	Regions        []string `mapstructure:"regions"`
	RegionServices []string `mapstructure:"region_services"`
	Services       []string `mapstructure:"services"`
	Concurrency    int      `mapstructure:"concurrency"`
	CreateNewFile  bool     `mapstructure:"create_new_file"`

	Output   OutputConfig   `mapstructure:"output"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	AWS      AWSConfig      `mapstructure:"aws"`
	Log      LogConfig      `mapstructure:"log"`
	S3       S3Config       `mapstructure:"s3"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type CatalogConfig struct {
	Paths []string `mapstructure:"paths"`
}

type AWSConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// Rate is operations per second across the run; 0 disables limiting.
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// Enabled reports whether an S3 sink was configured.
func (c S3Config) Enabled() bool { return c.Endpoint != "" }

// Storage converts c for storage.NewS3Service.
func (c S3Config) Storage() storage.S3Config {
	return storage.S3Config{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		UseSSL:    c.UseSSL,
		Bucket:    c.Bucket,
		Region:    c.Region,
	}
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	// Topic receives collected records.
	Topic string `mapstructure:"topic"`
	// NotificationsTopic carries bucket notifications for ingest.
	NotificationsTopic string `mapstructure:"notifications_topic"`
	GroupID            string `mapstructure:"group_id"`
	BatchSize          int    `mapstructure:"batch_size"`
}

// Enabled reports whether a Kafka record sink was configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 && c.Topic != "" }

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers every key so environment variables resolve during
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("profile", "default")
	v.SetDefault("regions", []string{})
	v.SetDefault("region_services", []string{})
	v.SetDefault("services", []string{})
	v.SetDefault("concurrency", 5)
	v.SetDefault("create_new_file", false)

	v.SetDefault("output.dir", "./output")
	v.SetDefault("catalog.paths", []string{})

	v.SetDefault("aws.timeout", 2*time.Minute)
	v.SetDefault("aws.rate", 0.0)
	v.SetDefault("aws.burst", 1)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("s3.bucket", "cloud-inventory")
	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "")
	v.SetDefault("kafka.notifications_topic", "inventory-events")
	v.SetDefault("kafka.group_id", "cloudcollector-ingest")
	v.SetDefault("kafka.batch_size", 100)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("sqlite.path", "")
}

// legacyEnv maps keys to the unprefixed variables used by existing
// MinIO/Kafka deployments.
var legacyEnv = map[string][]string{
	"s3.endpoint":               {"MINIO_ENDPOINT"},
	"s3.access_key":             {"MINIO_ACCESS_KEY"},
	"s3.secret_key":             {"MINIO_SECRET_KEY"},
	"s3.use_ssl":                {"MINIO_USE_SSL"},
	"kafka.brokers":             {"KAFKA_BROKER", "KAFKA_BROKER_LOCAL"},
	"kafka.notifications_topic": {"KAFKA_TOPIC"},
	"kafka.group_id":            {"KAFKA_GROUP_ID"},
	"postgres.dsn":              {"DATABASE_URL"},
}

// New returns a viper instance with defaults and environment binding. When
// configFile is set it is read as well.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	for key, names := range legacyEnv {
		envs := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", key)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}
	return v, nil
}

// Load unmarshals v and normalizes the result.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.Regions = splitList(cfg.Regions)
	cfg.RegionServices = splitList(cfg.RegionServices)
	cfg.Services = splitList(cfg.Services)
	cfg.Catalog.Paths = splitList(cfg.Catalog.Paths)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.Concurrency = ClampConcurrency(cfg.Concurrency)
	if cfg.AWS.Rate < 0 {
		return nil, errors.Newf("aws.rate must not be negative, got %v", cfg.AWS.Rate)
	}
	if cfg.AWS.Burst < 1 {
		cfg.AWS.Burst = 1
	}
	return &cfg, nil
}

// ClampConcurrency bounds n to [MinConcurrency, MaxConcurrency].
func ClampConcurrency(n int) int {
	return max(MinConcurrency, min(n, MaxConcurrency))
}

// splitList flattens comma-separated entries, trimming blanks.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
