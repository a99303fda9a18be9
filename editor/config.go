package editor

import "time"

// Config holds the editor endpoint settings.
type Config struct {
	// DefaultBucket is used when a request names no bucket.
	DefaultBucket string `yaml:"default_bucket" default:"docs"`

	// KeyPrefix starts every Document Server conversion key.
	KeyPrefix string `yaml:"key_prefix" default:"st"`

	// CacheControl is stored with every uploaded object.
	CacheControl string `yaml:"cache_control" default:"max-age=3600"`

	// SourceURLExpiry bounds the signed URL handed to the Document Server.
	SourceURLExpiry time.Duration `yaml:"source_url_expiry" default:"300s"`

	// ResultURLExpiry bounds the signed URL returned for a converted file.
	ResultURLExpiry time.Duration `yaml:"result_url_expiry" default:"168h"`

	// VerifyCallbackToken rejects save callbacks without a valid Document Server JWT.
	VerifyCallbackToken bool `yaml:"verify_callback_token" default:"false"`
}
