package docserver

import "time"

// Config holds the Document Server connection settings.
type Config struct {
	// URL is the Document Server base URL. Empty disables conversion.
	URL string `yaml:"url" validate:"omitempty,url"`

	// JWTSecret signs outgoing requests and verifies callbacks. Empty disables signing.
	JWTSecret string `yaml:"jwt_secret" mask:"true"`

	// JWTHeader carries the bearer token on outgoing multipart uploads.
	// Callback tokens are read from the body or the Authorization header.
	JWTHeader string `yaml:"jwt_header" default:"Authorization"`

	ConvertPath    string        `yaml:"convert_path" default:"/ConvertService.ashx"`
	PollAttempts   uint          `yaml:"poll_attempts" default:"20" validate:"gte=1"`
	PollDelay      time.Duration `yaml:"poll_delay" default:"700ms"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`

	// MaxDownloadSize bounds downloaded documents in bytes.
	MaxDownloadSize int64 `yaml:"max_download_size" default:"104857600" validate:"gte=1"`
}
