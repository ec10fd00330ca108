package service

import (
	"context"
	"errors"

	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/imagehost"
	"go.uber.org/zap"
)

// ImageHost 是文章图片所依赖的图床。
type ImageHost interface {
	Upload(ctx context.Context, image, folder string) (imagehost.Asset, error)
	Destroy(ctx context.Context, key string) error
}

// PostManager 串联图床与文章存储，处理后台的新建、编辑、删除流程。
//
// 图床与数据库之间没有事务：记录写入失败时会删除刚上传的图片；
// 旧图片删除失败只记录日志，接受图片残留。
type PostManager struct {
	posts  *PostService
	images ImageHost
	folder string
	log    *zap.SugaredLogger
}

// NewPostManager creates a PostManager instance.
func NewPostManager(posts *PostService, images ImageHost, folder string, log *zap.SugaredLogger) *PostManager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PostManager{posts: posts, images: images, folder: folder, log: log}
}

// Create 校验输入，上传图片（如有），再写入文章记录。
// 图片上传失败时文章不会被保存。
func (m *PostManager) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	fields := input.fields()
	uploaded, err := m.upload(ctx, input.ImageBase64)
	if err != nil {
		return nil, err
	}
	fields.Image = uploaded

	post, err := m.posts.Create(ctx, fields)
	if err != nil {
		m.discard(ctx, uploaded, "create")
		return nil, err
	}
	return post, nil
}

// Update 上传替换图片（如有），更新记录，成功后再删除旧图片。
func (m *PostManager) Update(ctx context.Context, id uint, input PostInput) (*db.Post, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousKey := existing.ImageKey

	fields := input.fields()
	uploaded, err := m.upload(ctx, input.ImageBase64)
	if err != nil {
		return nil, err
	}
	fields.Image = uploaded

	post, err := m.posts.Update(ctx, id, fields)
	if err != nil {
		m.discard(ctx, uploaded, "update")
		return nil, err
	}

	if uploaded != nil && previousKey != "" && previousKey != uploaded.Key {
		if err := m.images.Destroy(ctx, previousKey); err != nil {
			m.log.Warnw("failed to destroy replaced image", "post_id", id, "image_key", previousKey, "err", err)
		}
	}
	return post, nil
}

// Delete 先删除图床上的图片，再删除文章记录。
func (m *PostManager) Delete(ctx context.Context, id uint) error {
	existing, err := m.posts.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing.ImageKey != "" {
		if err := m.images.Destroy(ctx, existing.ImageKey); err != nil {
			m.log.Warnw("failed to destroy image of deleted post", "post_id", id, "image_key", existing.ImageKey, "err", err)
		}
	}

	return m.posts.Delete(ctx, id)
}

func (m *PostManager) upload(ctx context.Context, image string) (*imagehost.Asset, error) {
	if image == "" {
		return nil, nil
	}
	asset, err := m.images.Upload(ctx, image, m.folder)
	if err != nil {
		// 无法解码的图片属于输入错误，不是图床故障
		if errors.Is(err, imagehost.ErrInvalidImage) {
			return nil, invalidField("imageBase64", "must be a valid image")
		}
		return nil, imageHostError(err)
	}
	return &asset, nil
}

func (m *PostManager) discard(ctx context.Context, asset *imagehost.Asset, op string) {
	if asset == nil {
		return
	}
	if err := m.images.Destroy(ctx, asset.Key); err != nil {
		m.log.Errorw("failed to discard uploaded image", "op", op, "image_key", asset.Key, "err", err)
	}
}
