// Package view 持有站点的 HTML 模板，并负责把文章列表与分页控件渲染成片段。
package view

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/pagination"
)

//go:embed templates/*.html
var templateFS embed.FS

const displayDateLayout = "Mon, January 2, 2006"

// FuncMap 返回模板中可用的辅助函数。
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"displayDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(displayDateLayout)
		},
		"isoDate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
		"year": func() int {
			return time.Now().Year()
		},
	}
}

// Parse 解析全部内嵌模板，模板名即文件名，片段通过 define 命名。
func Parse() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// Renderer 使用同一套模板渲染列表片段。
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a Renderer backed by the parsed templates.
func NewRenderer(tmpl *template.Template) *Renderer {
	return &Renderer{tmpl: tmpl}
}

// RenderPosts 渲染文章卡片列表。
func (r *Renderer) RenderPosts(posts []db.Post) (string, error) {
	return r.execute("post_cards", posts)
}

// RenderPagination 渲染分页控件，只有一页时输出为空。
func (r *Renderer) RenderPagination(pager pagination.Pager, link pagination.Link) (string, error) {
	return r.execute("pagination", PaginationView{Pager: pager, Link: link})
}

// PaginationView 是分页模板的数据。
type PaginationView struct {
	Pager pagination.Pager
	Link  pagination.Link
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
