package service

import (
	"strings"

	"github.com/fastqash/blog/internal/db"
	"gorm.io/gorm"
)

// likeEscape 是 LIKE 的转义符。不用反斜杠，MySQL 字符串字面量会吞掉它。
const likeEscape = "!"

// Filter 是搜索条件的只读值，本身不做任何 I/O。
// 空条件匹配全部文章；否则在标题、摘要、分类中做不区分大小写的子串匹配。
type Filter struct {
	term string
}

// BuildFilter 根据用户输入的关键字构造过滤条件。
func BuildFilter(query string) Filter {
	return Filter{term: strings.TrimSpace(query)}
}

// Term 返回去除空白后的关键字。
func (f Filter) Term() string {
	return f.term
}

// IsMatchAll 表示该条件不做任何过滤。
func (f Filter) IsMatchAll() bool {
	return f.term == ""
}

// Matches 在内存中判断文章是否满足条件，语义与数据库查询一致
// （sqlite 连接上的 lower() 已替换为 Unicode 版本，见 db.Open）。
func (f Filter) Matches(post db.Post) bool {
	if f.IsMatchAll() {
		return true
	}
	needle := strings.ToLower(f.term)
	return strings.Contains(strings.ToLower(post.Title), needle) ||
		strings.Contains(strings.ToLower(post.Excerpt), needle) ||
		strings.Contains(strings.ToLower(post.Category), needle)
}

func (f Filter) apply(query *gorm.DB) *gorm.DB {
	if f.IsMatchAll() {
		return query
	}
	pattern := "%" + escapeLike(strings.ToLower(f.term)) + "%"
	return query.Where(
		"(LOWER(posts.title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(posts.excerpt) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(posts.category) LIKE ? ESCAPE '"+likeEscape+"')",
		pattern, pattern, pattern,
	)
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return replacer.Replace(s)
}
