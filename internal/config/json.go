package config

import (
	"encoding/json"
	"os"

	"github.com/picshare/readpath/internal/flagx"
	"github.com/picshare/readpath/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Duration fields accept both strings such as "60s" and integer
// nanoseconds. After unmarshalling, non-zero fields are copied into the
// runtime Config.
type JsonConfig struct {
	DatabaseDSN   string `json:"database_dsn"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`

	ConnectTimeout timex.Duration `json:"connect_timeout"`
	QueryTimeout   timex.Duration `json:"query_timeout"`
	ConnectRetries uint64         `json:"connect_retries"`
	RetryBackoff   timex.Duration `json:"retry_backoff"`

	SessionTTL       timex.Duration `json:"session_ttl"`
	LoginTTL         timex.Duration `json:"login_ttl"`
	PostTTL          timex.Duration `json:"post_ttl"`
	FeedTTL          timex.Duration `json:"feed_ttl"`
	ImageTTL         timex.Duration `json:"image_ttl"`
	NegativeImageTTL timex.Duration `json:"negative_image_ttl"`

	SessionValidity timex.Duration `json:"session_validity"`

	PageSize       int   `json:"page_size"`
	RecentComments int   `json:"recent_comments"`
	UploadLimit    int64 `json:"upload_limit"`

	ImageSource    string `json:"image_source"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If neither flag is set, nothing
// is loaded. An unreadable or invalid file panics: a half-applied config is
// worse than a crash at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.RedisPassword != "" {
		config.RedisPassword = c.RedisPassword
	}
	if c.ConnectTimeout.Duration != 0 {
		config.ConnectTimeout = c.ConnectTimeout.Duration
	}
	if c.QueryTimeout.Duration != 0 {
		config.QueryTimeout = c.QueryTimeout.Duration
	}
	if c.ConnectRetries != 0 {
		config.ConnectRetries = c.ConnectRetries
	}
	if c.RetryBackoff.Duration != 0 {
		config.RetryBackoff = c.RetryBackoff.Duration
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.LoginTTL.Duration != 0 {
		config.LoginTTL = c.LoginTTL.Duration
	}
	if c.PostTTL.Duration != 0 {
		config.PostTTL = c.PostTTL.Duration
	}
	if c.FeedTTL.Duration != 0 {
		config.FeedTTL = c.FeedTTL.Duration
	}
	if c.ImageTTL.Duration != 0 {
		config.ImageTTL = c.ImageTTL.Duration
	}
	if c.NegativeImageTTL.Duration != 0 {
		config.NegativeImageTTL = c.NegativeImageTTL.Duration
	}
	if c.SessionValidity.Duration != 0 {
		config.SessionValidity = c.SessionValidity.Duration
	}
	if c.PageSize != 0 {
		config.PageSize = c.PageSize
	}
	if c.RecentComments != 0 {
		config.RecentComments = c.RecentComments
	}
	if c.UploadLimit != 0 {
		config.UploadLimit = c.UploadLimit
	}
	if c.ImageSource != "" {
		config.ImageSource = c.ImageSource
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
}
