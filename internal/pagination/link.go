package pagination

import (
	"net/url"
	"strconv"
)

// Link 描述分页控件中页码链接的生成方式。
type Link struct {
	// Path 为目标路径，例如 "/" 或 "/admin/posts"。
	Path string
	// QueryParam 为搜索关键字的参数名，为空时不附带关键字。
	QueryParam string
	// Query 为当前搜索关键字。
	Query string
	// Script 为 true 时链接为 href="#" 并通过 data-page 交给前端脚本处理。
	Script bool
}

// WithQuery 返回附带搜索关键字的副本。
func (l Link) WithQuery(query string) Link {
	l.Query = query
	return l
}

// URL 返回指定页码的链接地址。
func (l Link) URL(page int) string {
	if l.Script {
		return "#"
	}

	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	if l.QueryParam != "" && l.Query != "" {
		values.Set(l.QueryParam, l.Query)
	}

	path := l.Path
	if path == "" {
		path = "/"
	}
	return path + "?" + values.Encode()
}
