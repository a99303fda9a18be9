package editor

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // etag only
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/docbridge/filestore"
)

type storedObject struct {
	data         []byte
	contentType  string
	cacheControl string
	etag         string
}

// memStore is an in-memory filestore.FileStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string]storedObject

	public  bool
	signErr error
	putErr  error
	statErr error
	getErr  error

	signed []time.Duration
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]storedObject{}}
}

func objectID(bucket, path string) string { return bucket + "/" + path }

func (s *memStore) seed(bucket, path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := md5.Sum(data) //nolint:gosec // etag only
	s.objects[objectID(bucket, path)] = storedObject{data: data, etag: `"` + hex.EncodeToString(sum[:]) + `"`}
}

func (s *memStore) object(bucket, path string) (storedObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[objectID(bucket, path)]
	return o, ok
}

func (s *memStore) Put(_ context.Context, obj filestore.Object) (*filestore.FileInfo, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	data, err := io.ReadAll(obj.Content)
	if err != nil {
		return nil, err
	}
	s.seed(obj.Bucket, obj.Path, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.objects[objectID(obj.Bucket, obj.Path)]
	o.contentType = obj.ContentType
	o.cacheControl = obj.CacheControl
	s.objects[objectID(obj.Bucket, obj.Path)] = o

	return &filestore.FileInfo{Bucket: obj.Bucket, Path: obj.Path, Size: int64(len(data)), ETag: o.etag}, nil
}

func (s *memStore) Get(_ context.Context, bucket, path string) (*filestore.File, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	o, ok := s.object(bucket, path)
	if !ok {
		return nil, errx.New("file not found", errx.WithCode(filestore.CodeFileNotFound), errx.WithType(errx.T_NotFound))
	}
	return &filestore.File{
		Content: io.NopCloser(bytes.NewReader(o.data)),
		Info:    filestore.FileInfo{Bucket: bucket, Path: path, Size: int64(len(o.data)), ETag: o.etag},
	}, nil
}

func (s *memStore) Stat(_ context.Context, bucket, path string) (*filestore.FileInfo, error) {
	if s.statErr != nil {
		return nil, s.statErr
	}
	o, ok := s.object(bucket, path)
	if !ok {
		return nil, errx.New("file not found", errx.WithCode(filestore.CodeFileNotFound), errx.WithType(errx.T_NotFound))
	}
	return &filestore.FileInfo{Bucket: bucket, Path: path, Size: int64(len(o.data)), ETag: o.etag}, nil
}

func (s *memStore) SignedURL(_ context.Context, bucket, path string, expiry time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.mu.Lock()
	s.signed = append(s.signed, expiry)
	s.mu.Unlock()
	return "https://storage.local/" + bucket + "/" + path + "?sig=1", nil
}

func (s *memStore) PublicURL(bucket, path string) (string, bool) {
	if !s.public {
		return "", false
	}
	return "https://cdn.local/" + bucket + "/" + path, true
}
