package contract

// LangInfo: 语言解析结果。
type LangInfo struct {
	// Code: ISO 639-3 三字母码；无法识别时为空串。
	Code string
	// MacroCode: 宏语言折叠后的三字母码（如 cmn→zho）；无宏语言时等于 Code。
	MacroCode string
	// Scripts: 推断的书写文字（ISO 15924，如 "Latn"）；可为空。
	Scripts []string
}

// Resolver: 自由语言名或 BCP-47 风格标签 → LangInfo。
// 约束：纯函数、无状态、对未知输入返回零值而非错误。
type Resolver interface {
	Resolve(tagOrName string) LangInfo
}
