// Package storage 保存后台上传的媒体文件，支持本地磁盘与 MinIO。
package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage 在上传内容不是可识别的图片时返回
var ErrUnsupportedImage = errors.New("unsupported image")

// Store 保存对象并返回公开访问的 URL
type Store interface {
	Save(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// ImageInfo 描述上传图片的格式与尺寸
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// InspectImage 只解码图片头部，验证格式并读取尺寸。
func InspectImage(reader io.Reader) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(reader)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// ObjectName 生成形如 prefix/20240102-<uuid>.ext 的唯一对象名
func ObjectName(prefix, format string) string {
	ext := strings.ToLower(strings.TrimSpace(format))
	if ext == "jpeg" {
		ext = "jpg"
	}
	name := fmt.Sprintf("%s-%s.%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
