package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize caps profile pictures at 5MB.
const MaxUploadSize = 5 << 20

var (
	ErrFileTooLarge = errors.New("file too large, max size is 5MB")
	ErrBadFileType  = errors.New("only image files are allowed")
)

var imageExts = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

// BlobStore persists uploaded files and returns the reference path the core
// stores on the user record.
type BlobStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
}

// DiskStore writes uploads under a local directory served at /uploads/.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) Dir() string { return d.dir }

func (d *DiskStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxUploadSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := imageExts[ext]; !ok {
		return "", ErrBadFileType
	}

	name := "picture-" + uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// The size limit is enforced on the copy as well; the header value is
	// client-supplied.
	if _, err := io.Copy(dst, io.LimitReader(file, MaxUploadSize+1)); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if fi, err := dst.Stat(); err == nil && fi.Size() > MaxUploadSize {
		_ = os.Remove(dst.Name())
		return "", ErrFileTooLarge
	}
	return "/uploads/" + name, nil
}
