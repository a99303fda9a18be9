// Package miniowr provides a MinIO implementation of the filestore.FileStore interface.
package miniowr

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rise-and-shine/docbridge/filestore"
)

const (
	codeNoSuchKey    = "NoSuchKey"
	codeNoSuchBucket = "NoSuchBucket"
)

// Client implements the filestore.FileStore interface using MinIO.
type Client struct {
	client     *minio.Client
	publicBase string
}

var _ filestore.FileStore = (*Client)(nil)

// New creates a new MinIO filestore client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errx.New("minio endpoint, access_key and secret_key are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Client{
		client:     client,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Put uploads obj, replacing any existing object.
// A negative or zero Size streams the content with an unknown length.
func (c *Client) Put(ctx context.Context, obj filestore.Object) (*filestore.FileInfo, error) {
	size := obj.Size
	if size <= 0 {
		size = -1
	}

	info, err := c.client.PutObject(ctx, obj.Bucket, obj.Path, obj.Content, size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		CacheControl: obj.CacheControl,
	})
	if err != nil {
		return nil, c.wrapMinioError(err, errx.M{"bucket": obj.Bucket, "path": obj.Path})
	}

	return &filestore.FileInfo{
		Bucket:       obj.Bucket,
		Path:         obj.Path,
		Size:         info.Size,
		ContentType:  obj.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Get retrieves an object and its metadata.
func (c *Client) Get(ctx context.Context, bucket, path string) (*filestore.File, error) {
	obj, err := c.client.GetObject(ctx, bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, c.wrapMinioError(err, errx.M{"bucket": bucket, "path": path})
	}

	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, c.wrapMinioError(err, errx.M{"bucket": bucket, "path": path})
	}

	return &filestore.File{
		Content: obj,
		Info:    toFileInfo(bucket, stat),
	}, nil
}

// Stat returns object metadata.
func (c *Client) Stat(ctx context.Context, bucket, path string) (*filestore.FileInfo, error) {
	stat, err := c.client.StatObject(ctx, bucket, path, minio.StatObjectOptions{})
	if err != nil {
		return nil, c.wrapMinioError(err, errx.M{"bucket": bucket, "path": path})
	}
	info := toFileInfo(bucket, stat)
	return &info, nil
}

// SignedURL returns a presigned GET URL.
func (c *Client) SignedURL(ctx context.Context, bucket, path string, expiry time.Duration) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, bucket, path, expiry, url.Values{})
	if err != nil {
		return "", c.wrapMinioError(err, errx.M{"bucket": bucket, "path": path})
	}
	return u.String(), nil
}

// PublicURL returns "<public_base_url>/<bucket>/<path>" when a public base is configured.
func (c *Client) PublicURL(bucket, path string) (string, bool) {
	if c.publicBase == "" {
		return "", false
	}
	return c.publicBase + "/" + url.PathEscape(bucket) + "/" + escapePath(path), true
}

func toFileInfo(bucket string, stat minio.ObjectInfo) filestore.FileInfo {
	return filestore.FileInfo{
		Bucket:       bucket,
		Path:         stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}
}

// escapePath escapes each segment of p and keeps the slashes.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// wrapMinioError converts MinIO errors to filestore error codes.
func (c *Client) wrapMinioError(err error, fields errx.M) error {
	switch minio.ToErrorResponse(err).Code {
	case codeNoSuchKey:
		return errx.New("file not found",
			errx.WithCode(filestore.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithFields(fields),
		)
	case codeNoSuchBucket:
		return errx.New("bucket not found",
			errx.WithCode(filestore.CodeBucketNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithFields(fields),
		)
	}
	return errx.Wrap(err, errx.WithFields(fields))
}
