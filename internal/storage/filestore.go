package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/AvalonLA/atelier/pkg/common"
)

// Bucket names
const (
	BucketProducts = "products"
)

// FileStore is a local-disk object store. It serves the same contract the
// hosted storage did: upload bytes under a bucket, hand back a public URL,
// remove by path or by URL.
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore roots the store at dir and prefixes public URLs with
// baseURL (typically "<site>/files").
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create file store root")
	}
	return &FileStore{root: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the on-disk root directory, used to mount the static route.
func (s *FileStore) Root() string {
	return s.root
}

// Upload stores data under bucket with a random name prefix and returns
// the public URL.
func (s *FileStore) Upload(bucket, filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s-%s", common.RandomHex(8), sanitizeName(filename))
	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create bucket dir")
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", errors.Wrap(err, "write object")
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, name), nil
}

// Remove deletes one object. The path may be a bare object name or a full
// public URL; a missing object is not an error.
func (s *FileStore) Remove(bucket, path string) error {
	name := s.objectName(bucket, path)
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, bucket, name))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "remove object")
}

// Exists reports whether an object is present.
func (s *FileStore) Exists(bucket, path string) bool {
	name := s.objectName(bucket, path)
	if name == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.root, bucket, name))
	return err == nil
}

// objectName strips the public URL prefix down to the stored name.
func (s *FileStore) objectName(bucket, path string) string {
	marker := "/" + bucket + "/"
	if idx := strings.LastIndex(path, marker); idx >= 0 {
		path = path[idx+len(marker):]
	}
	return sanitizeName(path)
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
