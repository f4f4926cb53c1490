package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes 上传图片的大小上限。
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// ImageService 保存善行照片
type ImageService struct {
	dir     string
	urlPath string
	now     func() time.Time
}

// StoredImage 描述保存后的图片。
type StoredImage struct {
	URL    string `json:"url"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NewImageService 构造 ImageService
func NewImageService(dir, urlPath string) *ImageService {
	if strings.TrimSpace(dir) == "" {
		dir = "web/static/uploads"
	}
	urlPath = "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	if urlPath == "/" {
		urlPath = "/static/uploads"
	}
	return &ImageService{dir: dir, urlPath: urlPath, now: time.Now}
}

// Save 校验图片格式后写入上传目录，文件名为 <yyyymmdd>-<uuid><ext>。
func (s *ImageService) Save(r io.Reader, size int64) (*StoredImage, error) {
	if size > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrImageRequired
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrImageInvalid
	}
	ext, ok := imageExtensions[format]
	if !ok {
		return nil, ErrImageInvalid
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	return &StoredImage{
		URL:    path.Join(s.urlPath, name),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// Owns 判断 url 是否指向本服务保存过的图片。
func (s *ImageService) Owns(url string) bool {
	name, ok := strings.CutPrefix(strings.TrimSpace(url), s.urlPath+"/")
	if !ok || name == "" || strings.ContainsAny(name, "/\\") || name == ".." {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && info.Mode().IsRegular()
}
