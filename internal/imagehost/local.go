package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	defaultMaxWidth = 1600
	jpegQuality     = 82
)

// Local 将图片重新编码为 JPEG 后保存到本地上传目录，由静态文件服务对外提供。
type Local struct {
	dir      string
	urlPath  string
	maxWidth int
}

// NewLocal 创建本地图床。dir 为上传根目录，urlPath 为其对外访问前缀。
func NewLocal(dir, urlPath string) *Local {
	return &Local{
		dir:      dir,
		urlPath:  strings.TrimRight(urlPath, "/"),
		maxWidth: defaultMaxWidth,
	}
}

// Upload 解码图片，宽度超过上限时等比缩放，写入 <dir>/<folder>/ 下的唯一文件名。
func (l *Local) Upload(ctx context.Context, raw, folder string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	data, err := decodeDataURI(raw)
	if err != nil {
		return Asset{}, err
	}

	encoded, err := l.reencode(data)
	if err != nil {
		return Asset{}, err
	}

	folder = cleanFolder(folder)
	targetDir := filepath.Join(l.dir, filepath.FromSlash(folder))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Asset{}, fmt.Errorf("create upload dir: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.jpg", time.Now().Format("20060102"), uuid.NewString())
	if err := os.WriteFile(filepath.Join(targetDir, filename), encoded, 0o644); err != nil {
		return Asset{}, fmt.Errorf("write image: %w", err)
	}

	key := path.Join(folder, filename)
	return Asset{URL: l.urlPath + "/" + key, Key: key}, nil
}

// Destroy 删除存储标识对应的文件，文件已不存在时视为成功。
func (l *Local) Destroy(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cleaned := path.Clean("/" + strings.TrimSpace(key))
	if key == "" || cleaned == "/" || cleaned != "/"+strings.TrimSpace(key) {
		return ErrInvalidKey
	}

	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) reencode(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if width := bounds.Dx(); width > l.maxWidth {
		height := bounds.Dy() * l.maxWidth / width
		dst := image.NewRGBA(image.Rect(0, 0, l.maxWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func cleanFolder(folder string) string {
	cleaned := strings.Trim(path.Clean("/"+strings.TrimSpace(folder)), "/")
	if cleaned == "" || cleaned == "." {
		return "posts"
	}
	return cleaned
}
