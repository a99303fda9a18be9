// Package filestore provides an abstraction for object storage operations.
//
// It defines a FileStore interface implemented by the MinIO/S3 and Google
// Cloud Storage backends. Objects are addressed by bucket and path.
package filestore

import (
	"context"
	"io"
	"time"
)

// FileStore defines the interface for object storage operations.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Put uploads obj, replacing any existing object at the same path.
	Put(ctx context.Context, obj Object) (*FileInfo, error)

	// Get retrieves an object and its metadata.
	// The caller is responsible for closing File.Content.
	Get(ctx context.Context, bucket, path string) (*File, error)

	// Stat returns object metadata without the content.
	Stat(ctx context.Context, bucket, path string) (*FileInfo, error)

	// SignedURL returns a presigned GET URL valid for expiry.
	SignedURL(ctx context.Context, bucket, path string, expiry time.Duration) (string, error)

	// PublicURL returns the unauthenticated URL of the object if the backend exposes one.
	PublicURL(bucket, path string) (string, bool)
}

// Object describes an upload.
type Object struct {
	Bucket       string
	Path         string
	Content      io.Reader
	Size         int64
	ContentType  string
	CacheControl string
}

// File represents a stored object with its content and metadata.
type File struct {
	Content io.ReadCloser
	Info    FileInfo
}

// FileInfo contains metadata about a stored object.
type FileInfo struct {
	Bucket       string
	Path         string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}
