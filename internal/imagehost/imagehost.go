// Package imagehost 负责文章封面图片的上传与删除。
//
// 上传接受浏览器提交的 base64 data URI，返回可公开访问的地址与存储标识；
// 删除时只需要存储标识。Local 将图片写入本地静态目录，Cloudinary 使用远程图床。
package imagehost

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/fastqash/blog/internal/metrics"
)

var (
	ErrInvalidImage = errors.New("invalid image data")
	ErrInvalidKey   = errors.New("invalid storage key")
)

// Asset 是一次上传的结果。
type Asset struct {
	URL string
	Key string
}

// Host 是图床的最小接口。
type Host interface {
	Upload(ctx context.Context, image, folder string) (Asset, error)
	Destroy(ctx context.Context, key string) error
}

// decodeDataURI 解析 "data:image/png;base64,...." 格式，也接受不带前缀的纯 base64。
func decodeDataURI(raw string) ([]byte, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return nil, ErrInvalidImage
	}

	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, ErrInvalidImage
		}
		meta := payload[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") || !strings.HasPrefix(meta, "image/") {
			return nil, ErrInvalidImage
		}
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Join(ErrInvalidImage, err)
	}
	return data, nil
}

type instrumented struct {
	next Host
}

// Instrument 为 Host 的每次调用记录 Prometheus 计数。
func Instrument(next Host) Host {
	return &instrumented{next: next}
}

func (h *instrumented) Upload(ctx context.Context, image, folder string) (Asset, error) {
	asset, err := h.next.Upload(ctx, image, folder)
	metrics.ImageHostOperations.WithLabelValues("upload", resultLabel(err)).Inc()
	return asset, err
}

func (h *instrumented) Destroy(ctx context.Context, key string) error {
	err := h.next.Destroy(ctx, key)
	metrics.ImageHostOperations.WithLabelValues("destroy", resultLabel(err)).Inc()
	return err
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
