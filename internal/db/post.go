package db

import "time"

// DefaultCategory 是未填写分类时使用的默认值。
const DefaultCategory = "General"

// Post 定义了文章模型
// Slug 由标题派生，唯一索引保证不会出现重复链接
// ImageKey 为图床返回的存储标识，删除图片时使用
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"size:255;not null"`
	Excerpt   string    `gorm:"type:text"`
	Content   string    `gorm:"type:text"`
	Category  string    `gorm:"size:100;not null;default:General;index"`
	ImageURL  string    `gorm:"size:512"`
	ImageKey  string    `gorm:"size:255"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// HasImage 判断文章是否带有封面图片。
func (p Post) HasImage() bool {
	return p.ImageURL != ""
}

// Teaser 返回列表卡片使用的简介，优先使用摘要，其次截取正文。
func (p Post) Teaser(limit int) string {
	source := p.Excerpt
	if source == "" {
		source = p.Content
	}
	if source == "" {
		return ""
	}
	runes := []rune(source)
	if len(runes) <= limit {
		return source + "..."
	}
	return string(runes[:limit]) + "..."
}
