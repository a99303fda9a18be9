package filestore

// Error codes for filestore operations.
const (
	// CodeFileNotFound is returned when an object does not exist at the specified path.
	CodeFileNotFound = "FILE_NOT_FOUND"

	// CodeBucketNotFound is returned when the bucket itself does not exist.
	CodeBucketNotFound = "BUCKET_NOT_FOUND"

	// CodeSignedURLUnsupported is returned when the backend cannot presign URLs
	// with the configured credentials.
	CodeSignedURLUnsupported = "SIGNED_URL_UNSUPPORTED"
)
