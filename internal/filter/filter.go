// Package filter 实现对已解析文档的固定顺序过滤链。
package filter

import (
	"strings"

	"opussub/internal/document"
	"opussub/internal/textutil"
	"opussub/pkg/contract"
)

// Chain: 过滤链（一次构造，worker 间共享只读）。
// 固定顺序：原始语言匹配 → 行提取 → 大小写比例；首个不通过即短路。
// 归档语言码由调度器计算一次后传入，worker 不重复计算。
type Chain struct {
	cfg         contract.FilterConfig
	resolver    contract.Resolver
	archiveCode string // 归档自身的宏语言码（OriginalOnly 用）
}

// New 创建过滤链。archiveCode 为空且 OriginalOnly 开启时所有文档都会被拒绝，
// 调用方应在派发前校验。
func New(cfg contract.FilterConfig, resolver contract.Resolver, archiveCode string) *Chain {
	return &Chain{cfg: cfg, resolver: resolver, archiveCode: archiveCode}
}

// Apply 对单个文档执行过滤链。
// 幸存时返回 (行序列, true)；任何一环不通过返回 (nil, false)。
func (c *Chain) Apply(doc *document.Document) ([]string, bool) {
	// 1) 原始语言过滤：文档原始语言的宏语言码须等于归档自身的码。
	if c.cfg.OriginalOnly {
		if doc.LanguageCode(c.resolver) != c.archiveCode {
			return nil, false
		}
	}

	// 2) 行提取（可选连续去重）。
	lines := doc.Lines(c.cfg.Deduplicate)

	// 3) 大小写过滤：对空格连接后的全部 token 计比例。
	if c.cfg.CasedOnly {
		tokens := strings.Fields(strings.Join(lines, " "))
		if !textutil.AreCased(tokens, c.cfg.MinCased) {
			return nil, false
		}
	}

	return lines, true
}
