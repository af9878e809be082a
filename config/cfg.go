package config

import (
	"fmt"
	"time"

	"torchlight-intake/internal/envHelper"
	"torchlight-intake/internal/store"
)

type AppConfig struct {
	Server  ServerConfig  `json:"server"`
	Log     LogConfig     `json:"log"`
	Store   StoreConfig   `json:"store"`
	Export  ExportConfig  `json:"export"`
	Queue   QueueConfig   `json:"queue"`
	Worker  WorkerConfig  `json:"worker"`
	Archive ArchiveConfig `json:"archive"`
	AWS     AWSConfig     `json:"aws"`
}

type ServerConfig struct {
	Port    string `json:"port"`
	GinMode string `json:"gin_mode"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type StoreConfig struct {
	Driver       string        `json:"driver"`
	DSN          string        `json:"dsn"`
	Host         string        `json:"host"`
	Port         string        `json:"port"`
	Username     string        `json:"username"`
	Password     string        `json:"-"`
	Database     string        `json:"database"`
	Table        string        `json:"table"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

type ExportConfig struct {
	Enabled            bool          `json:"enabled"`
	ChromePath         string        `json:"chrome_path"`
	ChromeFallbackPath string        `json:"chrome_fallback_path"`
	LaunchTimeout      time.Duration `json:"launch_timeout"`
	RenderTimeout      time.Duration `json:"render_timeout"`
	SubmitTimeout      time.Duration `json:"submit_timeout"`
	GenerateTimeout    time.Duration `json:"generate_timeout"`
	MaxConcurrent      int           `json:"max_concurrent"`
}

type QueueConfig struct {
	QueueURL          string `json:"queue_url"`
	PollingWaitTime   int64  `json:"polling_wait_time"`
	VisibilityTimeout int64  `json:"visibility_timeout"`
	MaxMessages       int64  `json:"max_messages"`
}

type WorkerConfig struct {
	Count int `json:"count"`
}

type ArchiveConfig struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
}

type AWSConfig struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"-"`
	SecretAccessKey string `json:"-"`
}

// Load reads the configuration from the environment. Nothing is required:
// unset database or queue settings leave those components unconfigured.
func Load() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port:    envHelper.GetString("PORT", "3001"),
			GinMode: envHelper.GetString("GIN_MODE", "release"),
		},
		Log: LogConfig{
			Level:  envHelper.GetString("LOG_LEVEL", "info"),
			Format: envHelper.GetString("LOG_FORMAT", "json"),
		},
		Store: StoreConfig{
			Driver:       envHelper.GetString("DB_DRIVER", "mysql"),
			DSN:          envHelper.GetString("DB_DSN", ""),
			Host:         envHelper.GetString("DB_HOST", ""),
			Port:         envHelper.GetString("DB_PORT", ""),
			Username:     envHelper.GetString("DB_USERNAME", ""),
			Password:     envHelper.GetString("DB_PASSWORD", ""),
			Database:     envHelper.GetString("DB_DATABASE", ""),
			Table:        envHelper.GetString("DB_TABLE", "submissions"),
			WriteTimeout: envHelper.GetDuration("DB_WRITE_TIMEOUT", 10*time.Second),
		},
		Export: ExportConfig{
			Enabled:            envHelper.GetBool("PDF_ENABLED", true),
			ChromePath:         envHelper.GetString("CHROME_PATH", ""),
			ChromeFallbackPath: envHelper.GetString("CHROME_FALLBACK_PATH", "/opt/chromium/chrome"),
			LaunchTimeout:      envHelper.GetDuration("PDF_LAUNCH_TIMEOUT", 10*time.Second),
			RenderTimeout:      envHelper.GetDuration("PDF_RENDER_TIMEOUT", 30*time.Second),
			SubmitTimeout:      envHelper.GetDuration("SUBMIT_PDF_TIMEOUT", 30*time.Second),
			GenerateTimeout:    envHelper.GetDuration("GENERATE_PDF_TIMEOUT", 30*time.Second),
			MaxConcurrent:      envHelper.GetInt("EXPORT_MAX_CONCURRENT", 2),
		},
		Queue: QueueConfig{
			QueueURL:          envHelper.GetString("SQS_QUEUE_URL", ""),
			PollingWaitTime:   20,
			VisibilityTimeout: 120,
			MaxMessages:       10,
		},
		Worker: WorkerConfig{
			Count: envHelper.GetInt("WORKER_COUNT", 1),
		},
		Archive: ArchiveConfig{
			Bucket: envHelper.GetString("AWS_BUCKET", ""),
			Prefix: envHelper.GetString("ARCHIVE_PREFIX", "submissions"),
		},
		AWS: AWSConfig{
			Region:          envHelper.GetString("AWS_REGION", "us-east-1"),
			AccessKeyID:     envHelper.GetString("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: envHelper.GetString("AWS_SECRET_ACCESS_KEY", ""),
		},
	}
}

// Configured reports whether enough is set to open a connection.
func (c StoreConfig) Configured() bool {
	return c.DSN != "" || (c.Host != "" && c.Database != "")
}

// DataSourceName returns DB_DSN when set, otherwise builds one for the driver.
func (c StoreConfig) DataSourceName() string {
	if c.DSN != "" {
		return c.DSN
	}
	if dialect, err := store.ParseDialect(c.Driver); err == nil && dialect == store.Postgres {
		port := c.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=require",
			c.Host, port, c.Username, c.Password, c.Database)
	}
	port := c.Port
	if port == "" {
		port = "3306"
	}
	return c.Username + ":" + c.Password + "@tcp(" + c.Host + ":" + port + ")/" + c.Database + "?parseTime=true"
}

// Enabled reports whether the export queue should run.
func (c QueueConfig) Enabled() bool {
	return c.QueueURL != ""
}

func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}
