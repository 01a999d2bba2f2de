package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"mnist-dashboard/internal/core/domain"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Dataset    DatasetConfig
	MinIO      MinIOConfig
	Trainer    TrainerConfig
	Database   DatabaseConfig
	Kubernetes KubernetesConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type DatasetConfig struct {
	Source          string // http | minio
	BaseURL         string
	CacheDir        string
	Timeout         time.Duration
	VerifyChecksums bool
	TrainLimit      int
	TestLimit       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Region    string
	UseSSL    bool
}

type TrainerConfig struct {
	Epochs          int
	BatchSize       int
	ValidationSplit float64
	LearningRate    float64
	Seed            int64
	MinAccuracy     float64
	AccuracyPolicy  string
	Warmup          bool
	UseGPU          bool
}

// Hyperparameters returns the configured training settings with invalid values
// replaced by defaults.
func (t TrainerConfig) Hyperparameters() domain.Hyperparameters {
	return domain.Hyperparameters{
		Epochs:          t.Epochs,
		BatchSize:       t.BatchSize,
		ValidationSplit: t.ValidationSplit,
		LearningRate:    t.LearningRate,
		Seed:            t.Seed,
	}.Normalize()
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	Namespace      string
	ConfigMap      string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	v.SetDefault("DATASET_SOURCE", "http")
	v.SetDefault("DATASET_BASE_URL", "https://ossci-datasets.s3.amazonaws.com/mnist")
	v.SetDefault("DATASET_CACHE_DIR", "/tmp/mnist")
	v.SetDefault("DATASET_TIMEOUT", "5m")
	v.SetDefault("DATASET_VERIFY_CHECKSUMS", true)
	v.SetDefault("DATASET_TRAIN_LIMIT", 0)
	v.SetDefault("DATASET_TEST_LIMIT", 0)

	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "datasets")
	v.SetDefault("MINIO_PREFIX", "mnist")
	v.SetDefault("MINIO_REGION", "")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("TRAINER_EPOCHS", domain.DefaultEpochs)
	v.SetDefault("TRAINER_BATCH_SIZE", domain.DefaultBatchSize)
	v.SetDefault("TRAINER_VALIDATION_SPLIT", domain.DefaultValidationSplit)
	v.SetDefault("TRAINER_LEARNING_RATE", domain.DefaultLearningRate)
	v.SetDefault("TRAINER_SEED", domain.DefaultSeed)
	v.SetDefault("TRAINER_MIN_ACCURACY", 0.9)
	v.SetDefault("TRAINER_ACCURACY_POLICY", "warn")
	v.SetDefault("TRAINER_WARMUP", false)
	v.SetDefault("TRAINER_USE_GPU", false)

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mnist_dashboard")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("K8S_ENABLED", false)
	v.SetDefault("K8S_IN_CLUSTER", false)
	v.SetDefault("K8S_KUBECONFIG", "")
	v.SetDefault("K8S_NAMESPACE", "default")
	v.SetDefault("K8S_CONFIGMAP", "mnist-dashboard-status")

	// Env
	v.AutomaticEnv()

	policy := v.GetString("TRAINER_ACCURACY_POLICY")
	if policy != "warn" && policy != "fail" {
		return nil, fmt.Errorf("invalid TRAINER_ACCURACY_POLICY %q: want warn or fail", policy)
	}
	source := v.GetString("DATASET_SOURCE")
	if source != "http" && source != "minio" {
		return nil, fmt.Errorf("invalid DATASET_SOURCE %q: want http or minio", source)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: parseDuration(v.GetString("SERVER_SHUTDOWN_TIMEOUT"), 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Dataset: DatasetConfig{
			Source:          source,
			BaseURL:         v.GetString("DATASET_BASE_URL"),
			CacheDir:        v.GetString("DATASET_CACHE_DIR"),
			Timeout:         parseDuration(v.GetString("DATASET_TIMEOUT"), 5*time.Minute),
			VerifyChecksums: v.GetBool("DATASET_VERIFY_CHECKSUMS"),
			TrainLimit:      v.GetInt("DATASET_TRAIN_LIMIT"),
			TestLimit:       v.GetInt("DATASET_TEST_LIMIT"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Prefix:    v.GetString("MINIO_PREFIX"),
			Region:    v.GetString("MINIO_REGION"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Trainer: TrainerConfig{
			Epochs:          v.GetInt("TRAINER_EPOCHS"),
			BatchSize:       v.GetInt("TRAINER_BATCH_SIZE"),
			ValidationSplit: v.GetFloat64("TRAINER_VALIDATION_SPLIT"),
			LearningRate:    v.GetFloat64("TRAINER_LEARNING_RATE"),
			Seed:            v.GetInt64("TRAINER_SEED"),
			MinAccuracy:     v.GetFloat64("TRAINER_MIN_ACCURACY"),
			AccuracyPolicy:  policy,
			Warmup:          v.GetBool("TRAINER_WARMUP"),
			UseGPU:          v.GetBool("TRAINER_USE_GPU"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), 30*time.Minute),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("K8S_ENABLED"),
			InCluster:      v.GetBool("K8S_IN_CLUSTER"),
			KubeConfigPath: v.GetString("K8S_KUBECONFIG"),
			Namespace:      v.GetString("K8S_NAMESPACE"),
			ConfigMap:      v.GetString("K8S_CONFIGMAP"),
		},
	}

	return cfg, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
