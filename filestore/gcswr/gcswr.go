// Package gcswr provides a Google Cloud Storage implementation of the filestore.FileStore interface.
package gcswr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/code19m/errx"
	"google.golang.org/api/option"

	"github.com/rise-and-shine/docbridge/filestore"
)

// Client implements the filestore.FileStore interface using Google Cloud Storage.
type Client struct {
	gs  *storage.Client
	cfg Config
}

var _ filestore.FileStore = (*Client)(nil)

// New creates a new GCS filestore client.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	gs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &Client{gs: gs, cfg: cfg}, nil
}

// Close releases resources associated with the client.
func (c *Client) Close() error {
	return c.gs.Close()
}

// Put uploads obj, replacing any existing object.
func (c *Client) Put(ctx context.Context, obj filestore.Object) (*filestore.FileInfo, error) {
	fields := errx.M{"bucket": obj.Bucket, "path": obj.Path}

	w := c.gs.Bucket(obj.Bucket).Object(obj.Path).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.CacheControl = obj.CacheControl

	if _, err := io.Copy(w, obj.Content); err != nil {
		_ = w.Close()
		return nil, wrapStorageError(err, fields)
	}
	if err := w.Close(); err != nil {
		return nil, wrapStorageError(err, fields)
	}

	info := toFileInfo(w.Attrs())
	return &info, nil
}

// Get retrieves an object and its metadata.
func (c *Client) Get(ctx context.Context, bucket, path string) (*filestore.File, error) {
	r, err := c.gs.Bucket(bucket).Object(path).NewReader(ctx)
	if err != nil {
		return nil, wrapStorageError(err, errx.M{"bucket": bucket, "path": path})
	}

	return &filestore.File{
		Content: r,
		Info: filestore.FileInfo{
			Bucket:       bucket,
			Path:         path,
			Size:         r.Attrs.Size,
			ContentType:  r.Attrs.ContentType,
			LastModified: r.Attrs.LastModified,
		},
	}, nil
}

// Stat returns object metadata.
func (c *Client) Stat(ctx context.Context, bucket, path string) (*filestore.FileInfo, error) {
	attrs, err := c.gs.Bucket(bucket).Object(path).Attrs(ctx)
	if err != nil {
		return nil, wrapStorageError(err, errx.M{"bucket": bucket, "path": path})
	}
	info := toFileInfo(attrs)
	return &info, nil
}

// SignedURL returns a V4 signed GET URL.
func (c *Client) SignedURL(_ context.Context, bucket, path string, expiry time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(expiry),
	}
	if c.cfg.GoogleAccessID != "" {
		opts.GoogleAccessID = c.cfg.GoogleAccessID
	}
	if c.cfg.PrivateKey != "" {
		opts.PrivateKey = []byte(c.cfg.PrivateKey)
	}

	u, err := c.gs.Bucket(bucket).SignedURL(path, opts)
	if err != nil {
		return "", errx.Wrap(err,
			errx.WithCode(filestore.CodeSignedURLUnsupported),
			errx.WithFields(errx.M{"bucket": bucket, "path": path}),
		)
	}
	return u, nil
}

// PublicURL returns "<public_base_url>/<bucket>/<path>" when objects are public.
func (c *Client) PublicURL(bucket, path string) (string, bool) {
	if !c.cfg.PublicObjects {
		return "", false
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.cfg.PublicBaseURL + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/"), true
}

func toFileInfo(attrs *storage.ObjectAttrs) filestore.FileInfo {
	if attrs == nil {
		return filestore.FileInfo{}
	}
	return filestore.FileInfo{
		Bucket:       attrs.Bucket,
		Path:         attrs.Name,
		Size:         attrs.Size,
		ContentType:  attrs.ContentType,
		ETag:         attrs.Etag,
		LastModified: attrs.Updated,
	}
}

func wrapStorageError(err error, fields errx.M) error {
	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		return errx.New("file not found",
			errx.WithCode(filestore.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithFields(fields),
		)
	case errors.Is(err, storage.ErrBucketNotExist):
		return errx.New("bucket not found",
			errx.WithCode(filestore.CodeBucketNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithFields(fields),
		)
	}
	return errx.Wrap(err, errx.WithFields(fields))
}
