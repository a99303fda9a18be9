package gcswr

// Config defines the configuration options for the Google Cloud Storage client.
type Config struct {
	// CredentialsFile is a service account JSON key. Empty uses application default credentials.
	CredentialsFile string `yaml:"credentials_file"`

	// Endpoint overrides the JSON API endpoint, e.g. for the storage emulator.
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`

	// GoogleAccessID and PrivateKey sign URLs when the credentials cannot,
	// e.g. on workload identity without iam.serviceAccounts.signBlob.
	GoogleAccessID string `yaml:"google_access_id"`
	PrivateKey     string `yaml:"private_key" mask:"true"`

	// PublicObjects reports buckets as publicly readable so PublicURL returns a link.
	PublicObjects bool `yaml:"public_objects" default:"false"`

	// PublicBaseURL is the origin serving public objects.
	PublicBaseURL string `yaml:"public_base_url" default:"https://storage.googleapis.com" validate:"url"`
}
