package miniowr

// Config defines the configuration options for MinIO client.
// The credentials are checked by New since the backend is optional.
type Config struct {
	// Endpoint is the MinIO server endpoint (e.g., "localhost:9000").
	Endpoint string `yaml:"endpoint"`

	// AccessKey is the access key for authentication.
	AccessKey string `yaml:"access_key"`

	// SecretKey is the secret key for authentication.
	SecretKey string `yaml:"secret_key" mask:"true"`

	// UseSSL enables HTTPS connection to MinIO server.
	UseSSL bool `yaml:"use_ssl" default:"false"`

	// Region skips the bucket location lookup when presigning.
	Region string `yaml:"region" default:"us-east-1"`

	// PublicBaseURL is the origin serving public buckets, e.g. "https://cdn.example.com".
	// Empty means objects are only reachable through signed URLs.
	PublicBaseURL string `yaml:"public_base_url" validate:"omitempty,url"`
}
