package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays connection settings from the environment. A local .env
// file, if present, is loaded first; a missing file is not an error.
//
// Recognized variables:
//
//	PICSHARE_DB_DSN          PostgreSQL DSN
//	PICSHARE_REDIS_ADDR      Redis address (host:port); empty keeps the
//	                         in-process cache
//	PICSHARE_REDIS_PASSWORD  Redis password
//	PICSHARE_IMAGE_SOURCE    "store" or "s3"
//	PICSHARE_S3_BUCKET / PICSHARE_S3_REGION / PICSHARE_S3_ENDPOINT
//	PICSHARE_S3_ACCESS_KEY / PICSHARE_S3_SECRET_KEY
func parseEnv(config *Config) {
	_ = godotenv.Load()

	overlay := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	overlay(&config.DatabaseDSN, "PICSHARE_DB_DSN")
	overlay(&config.RedisAddr, "PICSHARE_REDIS_ADDR")
	overlay(&config.RedisPassword, "PICSHARE_REDIS_PASSWORD")
	overlay(&config.ImageSource, "PICSHARE_IMAGE_SOURCE")
	overlay(&config.S3Bucket, "PICSHARE_S3_BUCKET")
	overlay(&config.S3Region, "PICSHARE_S3_REGION")
	overlay(&config.S3BaseEndpoint, "PICSHARE_S3_ENDPOINT")
	overlay(&config.S3AccessKey, "PICSHARE_S3_ACCESS_KEY")
	overlay(&config.S3SecretKey, "PICSHARE_S3_SECRET_KEY")
}
