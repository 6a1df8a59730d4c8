package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore 将对象写入本地目录，并以 URLPath 为前缀对外提供。
type LocalStore struct {
	Dir     string
	URLPath string
}

// NewLocalStore 构造 LocalStore
func NewLocalStore(dir, urlPath string) *LocalStore {
	urlPath = "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	return &LocalStore{Dir: dir, URLPath: urlPath}
}

// Save 写入文件并返回 URL
func (s *LocalStore) Save(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	path, err := s.path(objectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return s.URLPath + "/" + filepath.ToSlash(objectName), nil
}

// Delete 删除文件，不存在时视为成功
func (s *LocalStore) Delete(_ context.Context, objectName string) error {
	path, err := s.path(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}

func (s *LocalStore) path(objectName string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(objectName))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	return filepath.Join(s.Dir, clean), nil
}
