package contract

// TitleID: 从条目路径倒数第二段派生的作品标识（通常为 IMDb 数字，但不强制数值化）。
type TitleID string

// DocID: 从条目路径末段（去 .xml 后缀）派生的字幕文档标识。
type DocID string

// EntryID: (title, doc) 二元标识。
// 约束：同一归档内唯一；同一 TitleID 可对应多个 DocID（多轨/多版本字幕）。
type EntryID struct {
	Title TitleID
	Doc   DocID
}

// String: "title/doc" 形式，仅用于日志与错误信息。
func (id EntryID) String() string { return string(id.Title) + "/" + string(id.Doc) }

// Entry: 归档内一个 XML 条目（完整路径 + 派生标识）。
type Entry struct {
	ID   EntryID
	Path string
}

// Batch: 一次 worker 调度单元。
// 约束：
// - Entries 为目录排序后的连续切片，跨批不重叠、不遗漏；
// - Index 自 0 递增，仅用于日志定位，调度不保证跨批顺序。
type Batch struct {
	Index   int
	Entries []Entry
}

// Subtitle: 过滤链幸存文档的最终产物（已裁剪、可选去重的行序列）。
type Subtitle struct {
	ID    EntryID
	Lines []string
}

// FilterConfig: 过滤链配置（一次构造，运行期只读）。
type FilterConfig struct {
	// DistinctTitle: 目录排序后每个 TitleID 仅保留首个条目。
	DistinctTitle bool
	// OriginalOnly: 仅保留原始语言与归档语言一致的文档。
	OriginalOnly bool
	// CasedOnly: 丢弃大小写比例不达标的文档。
	CasedOnly bool
	// MinCased: 大小写比例阈值 (0,1]。CasedOnly 开启时必须显式给出，无静默默认。
	MinCased float64
	// Deduplicate: 折叠文档内连续重复行。
	Deduplicate bool
}
