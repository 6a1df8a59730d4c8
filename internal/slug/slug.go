// Package slug 生成 URL 友好的标识，并解决同一命名空间内的冲突。
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make 将文本转为 slug：NFKD 归一化后去掉组合符号，转小写，
// 非 [a-z0-9] 的连续字符替换为单个连字符，并去掉首尾连字符。
func Make(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Unique returns base when it is free, otherwise the first of base-1, base-2, ...
// for which taken reports false. Callers exclude the row being saved inside taken.
func Unique(base string, taken func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}
