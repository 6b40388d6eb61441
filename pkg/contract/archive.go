package contract

// Archive: 对单个 ZIP 归档的不可变引用（路径 + 文件名主干即语言标签）。
// 约束：
// 1) 构造期校验容器有效性，失败返回 ErrArchive；
// 2) Open 每次产出独立只读句柄——worker 之间不共享句柄，并发安全由各自句柄保证；
// 3) 运行期只读，无内部状态。
type Archive interface {
	// Open 打开一个独立的目录句柄；调用方负责 Close。
	Open() (Catalog, error)
	// LanguageTag 返回归档自身声明的语言标签（文件名去扩展名）。
	LanguageTag() string
}

// Catalog: 归档条目目录。单句柄非并发安全；每个 worker 各持一个。
type Catalog interface {
	// List 枚举 .xml 条目，按完整路径字典序排序。
	// distinctTitle 时按排序后的连续分组每个 TitleID 仅保留首个条目
	// （即该 title 下字典序最小的 DocID）。
	List(distinctTitle bool) ([]Entry, error)
	// Count 返回 List 的长度（重新推导，不缓存）。
	Count(distinctTitle bool) (int, error)
	// ReadEntry 读取单个条目的全部原始字节。
	ReadEntry(path string) ([]byte, error)
	// Close 释放底层句柄。
	Close() error
}
