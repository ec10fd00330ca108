// Package slug 将文章标题转换为 URL 安全的短链接。
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make 将标题转换为小写、以连字符分隔的 slug。
//
// 带音调的拉丁字母先做 NFD 分解并去掉组合符号（"Café" -> "cafe"），
// 其余非 [a-z0-9] 字符的连续片段折叠为单个 "-"，首尾的 "-" 会被去掉。
// 空标题或只含标点的标题返回空字符串，由调用方负责拒绝。
func Make(title string) string {
	folded := foldMarks(title)

	var b strings.Builder
	b.Grow(len(folded))

	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}

	return b.String()
}

func foldMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
