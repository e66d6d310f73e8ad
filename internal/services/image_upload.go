package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadURLPrefix is where stored files are served from.
const UploadURLPrefix = "/uploads/"

// Upload is an incoming file, independent of how it was transported.
type Upload struct {
	Filename string
	Content  io.Reader
}

// FileStore persists uploaded images and returns their public path.
type FileStore interface {
	Save(u *Upload) (string, error)
	Remove(publicPath string) error
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalImageStore writes images into a directory on disk under uuid names.
type LocalImageStore struct {
	dir      string
	maxBytes int64
}

func NewLocalImageStore(dir string, maxBytes int64) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *LocalImageStore) Dir() string {
	return s.dir
}

// Save validates the upload and copies it to <dir>/<uuid><ext>.
func (s *LocalImageStore) Save(u *Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("%w: unsupported image type %q", ErrBadRequest, ext)
	}

	// 读取文件头用于判断内容类型
	head := make([]byte, 512)
	n, err := io.ReadFull(u.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return "", fmt.Errorf("%w: file is not an image", ErrBadRequest)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	src := io.MultiReader(bytes.NewReader(head), u.Content)
	written, err := io.Copy(f, io.LimitReader(src, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrBadRequest, s.maxBytes)
	}

	return UploadURLPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Unknown paths and
// already-missing files are ignored.
func (s *LocalImageStore) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, UploadURLPrefix) {
		return nil
	}
	name := strings.TrimPrefix(publicPath, UploadURLPrefix)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
