// Package textutil 提供字幕行序列的纯函数处理：裁剪、连续去重与大小写检测。
package textutil

import (
	"strings"
	"unicode"
)

// StripWhitespace 裁剪每行首尾空白并丢弃裁剪后为空的行，保持原有顺序。
func StripWhitespace(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DeduplicateConsecutive 折叠连续重复项为单个出现（非全局去重）。
// 幂等：dedup(dedup(x)) == dedup(x)。
func DeduplicateConsecutive(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i, l := range lines {
		if i > 0 && l == lines[i-1] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// IsCased 判定字符串是否混合大小写：同时含有大写与小写字母。
// 纯大写、纯小写、以及不含字母的串（数字/标点）均视为非 cased。
func IsCased(s string) bool {
	var hasUpper, hasLower bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
		if hasUpper && hasLower {
			return true
		}
	}
	return false
}

// AreCased 判定 cased 项占比是否达到阈值。
// 空列表按“不达标”处理（避免 0/0），而非运行期错误。
func AreCased(items []string, threshold float64) bool {
	if len(items) == 0 {
		return false
	}
	cased := 0
	for _, s := range items {
		if IsCased(s) {
			cased++
		}
	}
	return float64(cased)/float64(len(items)) >= threshold
}
