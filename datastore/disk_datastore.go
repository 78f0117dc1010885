package datastore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/obfuscator/utils"
)

type (
	// DiskDataStore maps bucket to a directory under rootPath and key to a file in it.
	// Buckets are never created implicitly, mirroring S3.
	DiskDataStore struct {
		rootPath string
	}
)

func NewDiskDataStore(rootPath string) (*DiskDataStore, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "stat", Path: rootPath, Err: errors.New("not a directory")}
	}
	dds := &DiskDataStore{
		rootPath: rootPath,
	}

	return dds, nil
}

func (dds *DiskDataStore) bucketPath(loc Location) string {
	return filepath.Join(dds.rootPath, filepath.Base(loc.Bucket))
}

func (dds *DiskDataStore) objectPath(loc Location) (string, error) {
	p := filepath.Join(dds.bucketPath(loc), filepath.FromSlash(loc.Key))
	rel, err := filepath.Rel(dds.bucketPath(loc), p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", &utils.TransportError{Code: utils.CodeInvalidURI, URI: loc.String(), Err: errors.New("key escapes bucket")}
	}
	return p, nil
}

func (dds *DiskDataStore) checkBucket(loc Location) error {
	info, err := os.Stat(dds.bucketPath(loc))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return &utils.TransportError{Code: utils.CodeNoSuchBucket, URI: loc.String(), Err: fs.ErrNotExist}
	}
	if errors.Is(err, fs.ErrPermission) {
		return &utils.TransportError{Code: utils.CodeAccessDenied, URI: loc.String(), Err: err}
	}
	if err != nil {
		return &utils.TransportError{Code: utils.CodeUnknown, URI: loc.String(), Err: err}
	}
	return nil
}

func (dds *DiskDataStore) Get(ctx context.Context, loc Location) ([]byte, error) {
	if err := dds.checkBucket(loc); err != nil {
		return nil, err
	}
	fullPath, err := dds.objectPath(loc)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &utils.NotFoundError{URI: loc.String(), Err: err}
	}
	if errors.Is(err, fs.ErrPermission) {
		return nil, &utils.TransportError{Code: utils.CodeAccessDenied, URI: loc.String(), Err: err}
	}
	if err != nil {
		return nil, &utils.TransportError{Code: utils.CodeUnknown, URI: loc.String(), Err: err}
	}
	zerolog.Ctx(ctx).Debug().Str("uri", loc.String()).Int("bytes", len(b)).Msg("read file from disk")
	return b, nil
}

func (dds *DiskDataStore) Put(ctx context.Context, loc Location, data []byte, _ string) error {
	if err := dds.checkBucket(loc); err != nil {
		return err
	}
	fullPath, err := dds.objectPath(loc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return &utils.TransportError{Code: utils.CodeAccessDenied, URI: loc.String(), Err: err}
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return &utils.TransportError{Code: utils.CodeUnknown, URI: loc.String(), Err: err}
	}
	zerolog.Ctx(ctx).Debug().Str("uri", loc.String()).Int("bytes", len(data)).Msg("wrote file to disk")
	return nil
}
