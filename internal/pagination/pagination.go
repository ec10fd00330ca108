// Package pagination 计算分页窗口与 offset/limit。
//
// 页码控件有两种编号方式：页数较少时列出全部页码（FullRange），
// 页数较多时只保留首尾锚点与当前页附近的滑动窗口（Sliding），
// 其余部分以省略号代替。Strategy 按总页数在两者之间选择。
package pagination

import (
	"strconv"
	"strings"
)

// ItemKind 区分页码与省略号。
type ItemKind int

const (
	KindPage ItemKind = iota
	KindEllipsis
)

// Item 是页码控件中的一个元素。
type Item struct {
	Kind   ItemKind
	Number int
	Active bool
}

// IsEllipsis 供模板判断是否渲染省略号。
func (i Item) IsEllipsis() bool {
	return i.Kind == KindEllipsis
}

// Pager 描述一次渲染所需的全部分页状态。
type Pager struct {
	Current int
	Total   int
	Items   []Item
	HasPrev bool
	HasNext bool
	Prev    int
	Next    int
}

// Visible 表示是否需要渲染分页控件。
func (p Pager) Visible() bool {
	return p.Total > 1
}

// Pages 返回控件中出现的页码（不含省略号）。
func (p Pager) Pages() []int {
	pages := make([]int, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Kind == KindPage {
			pages = append(pages, item.Number)
		}
	}
	return pages
}

// Strategy 根据总页数选择编号方式。
type Strategy struct {
	// Window 为滑动窗口中间部分的宽度。
	Window int
	// FullRangeMax 为仍然列出全部页码的最大总页数。
	FullRangeMax int
}

// DefaultStrategy 与前台列表保持一致：中间窗口 3 页，7 页以内全部展示。
var DefaultStrategy = Strategy{Window: 3, FullRangeMax: 7}

// Build 生成当前页的分页控件。
func (s Strategy) Build(current, total int) Pager {
	if total <= s.FullRangeMax {
		return FullRange(current, total)
	}
	return Sliding(current, total, s.Window)
}

// FullRange 列出 1..total 的全部页码，只适合页数较少的情况。
func FullRange(current, total int) Pager {
	p := newPager(current, total)
	for i := 1; i <= total; i++ {
		p.Items = append(p.Items, pageItem(i, current))
	}
	return p
}

// Sliding 总是展示第 1 页和最后一页，中间是以当前页为中心、宽度为 width 的窗口，
// 窗口被限制在 [2, total-1] 内；窗口与锚点不相邻时插入省略号。
func Sliding(current, total, width int) Pager {
	if width < 1 {
		width = 1
	}

	p := newPager(current, total)
	if total < 1 {
		return p
	}

	start := current - (width-1)/2
	end := start + width - 1
	if current == 1 {
		start = 2
		end = 2 + width - 1
	}
	if current == total {
		start = total - width
		end = total - 1
	}
	start = max(2, start)
	end = min(total-1, end)

	p.Items = append(p.Items, pageItem(1, current))
	if start > 2 {
		p.Items = append(p.Items, Item{Kind: KindEllipsis})
	}
	for i := start; i <= end; i++ {
		p.Items = append(p.Items, pageItem(i, current))
	}
	if end < total-1 {
		p.Items = append(p.Items, Item{Kind: KindEllipsis})
	}
	if total > 1 {
		p.Items = append(p.Items, pageItem(total, current))
	}
	return p
}

// TotalPages 返回 ceil(totalCount / perPage)。
func TotalPages(totalCount int64, perPage int) int {
	if perPage <= 0 || totalCount <= 0 {
		return 0
	}
	return int((totalCount + int64(perPage) - 1) / int64(perPage))
}

// Window 将页码换算为查询使用的 offset 与 limit。
func Window(page, perPage int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage, perPage
}

// ParsePage 解析查询参数中的页码，缺失或非法时回退到第 1 页。
// 超出总页数的页码原样返回，由调用方得到空列表。
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func newPager(current, total int) Pager {
	return Pager{
		Current: current,
		Total:   total,
		HasPrev: current > 1,
		HasNext: current < total,
		Prev:    current - 1,
		Next:    current + 1,
	}
}

func pageItem(number, current int) Item {
	return Item{Kind: KindPage, Number: number, Active: number == current}
}
