// Package archive 提供对 OPUS 原始字幕 ZIP 归档的条目目录访问。
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"opussub/pkg/contract"
)

const xmlSuffix = ".xml"

// Handle: 单个 ZIP 归档的不可变引用。
// 文件名主干（去 .zip）即归档自身声明的语言标签。
type Handle struct {
	path string
	tag  string
}

var _ contract.Archive = (*Handle)(nil)

// New 构造归档引用并校验容器有效性。
// 缺失或非 ZIP 格式在此处即失败（ErrArchive），无部分恢复。
func New(path string) (*Handle, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrArchive, path, err)
	}
	_ = zr.Close()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Handle{path: path, tag: stem}, nil
}

// Path 返回归档文件路径。
func (h *Handle) Path() string { return h.path }

// LanguageTag 返回归档声明的语言标签（文件名主干）。
func (h *Handle) LanguageTag() string { return h.tag }

// Open 打开一个独立的只读目录句柄。
// worker 各自调用，互不共享底层 reader。
func (h *Handle) Open() (contract.Catalog, error) {
	zr, err := zip.OpenReader(h.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrArchive, h.path, err)
	}
	return &Catalog{zr: zr}, nil
}

// Catalog: 一个打开的归档句柄上的条目目录。非并发安全。
type Catalog struct {
	zr *zip.ReadCloser
}

var _ contract.Catalog = (*Catalog)(nil)

// List 枚举 .xml 条目并按完整路径字典序排序。
// distinctTitle 时按排序后连续分组保留每个 title 的首个条目——
// 分组正确性依赖排序让同一 title 的条目相邻，"首个"即该 title 下
// 字典序最小的 DocID。
func (c *Catalog) List(distinctTitle bool) ([]contract.Entry, error) {
	paths := make([]string, 0, len(c.zr.File))
	for _, f := range c.zr.File {
		if strings.HasSuffix(f.Name, xmlSuffix) {
			paths = append(paths, f.Name)
		}
	}
	sort.Strings(paths)

	entries := make([]contract.Entry, 0, len(paths))
	var lastTitle contract.TitleID
	for _, p := range paths {
		id, ok := deriveID(p)
		if !ok {
			continue
		}
		if distinctTitle && len(entries) > 0 && id.Title == lastTitle {
			continue
		}
		entries = append(entries, contract.Entry{ID: id, Path: p})
		lastTitle = id.Title
	}
	return entries, nil
}

// Count 返回 List 的长度（重新推导；两者都需要的调用方应自行复用 List 结果）。
func (c *Catalog) Count(distinctTitle bool) (int, error) {
	entries, err := c.List(distinctTitle)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ReadEntry 读取单个条目的全部原始字节。
func (c *Catalog) ReadEntry(path string) ([]byte, error) {
	f, err := c.zr.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Close 释放底层 ZIP reader。
func (c *Catalog) Close() error { return c.zr.Close() }

// deriveID: 从条目路径派生 (title, doc)。
// 契约：.../{title_id}/{document_id}.xml，取倒数两段、末段去扩展名。
func deriveID(path string) (contract.EntryID, bool) {
	segs := strings.Split(strings.TrimSuffix(path, xmlSuffix), "/")
	if len(segs) < 2 {
		return contract.EntryID{}, false
	}
	title := segs[len(segs)-2]
	doc := segs[len(segs)-1]
	if title == "" || doc == "" {
		return contract.EntryID{}, false
	}
	return contract.EntryID{Title: contract.TitleID(title), Doc: contract.DocID(doc)}, true
}
