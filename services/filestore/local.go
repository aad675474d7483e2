// Package filestore implements core.FileStore on the local disk and on S3-compatible object storage.
package filestore

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/studman/core"
)

var errInvalidKey = errors.New("invalid file key")

type localStore struct {
	dir       string
	publicURL string
}

var _ core.FileStore = (*localStore)(nil)

// NewLocalStore saves files under dir; they are served from publicURL.
func NewLocalStore(dir, publicURL string) *localStore {
	return &localStore{dir: dir, publicURL: strings.TrimSuffix(publicURL, "/")}
}

// Dir is the root directory, to be served statically.
func (s *localStore) Dir() string { return s.dir }

func (s *localStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", errInvalidKey
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

func (s *localStore) Save(_ context.Context, key string, r io.Reader, size int64, _ string) (string, error) {
	fpath, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Dir(fpath), 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload directory")
	}

	f, err := os.Create(fpath)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	defer func() { _ = f.Close() }()

	if size > 0 {
		r = io.LimitReader(r, size)
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = os.Remove(fpath)
		return "", errors.Wrap(err, "writing file")
	}
	return s.publicURL + "/" + strings.TrimPrefix(path.Clean("/"+key), "/"), nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	fpath, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.Remove(fpath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}

// New returns the store selected by conf.Storage.Backend.
func New(ctx context.Context, conf *core.Config) (core.FileStore, error) {
	switch conf.Storage.Backend {
	case "s3":
		return NewS3Store(ctx, conf.Storage)
	case "", "local":
		return NewLocalStore(conf.Storage.LocalDir, conf.Storage.PublicURL), nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
