package contract

import "context"

// Writer: 将幸存文档的行序列持久化（文件系统/对象存储等）。
// 约束：
//  1. 同一 EntryID 单写者；
//  2. 产物命名必须能还原 (title, doc) 二元标识；
//  3. ctx 取消/超时需尽快返回；
//  4. 错误直接上抛（不做重试/回退）。
type Writer interface {
	WriteLines(ctx context.Context, id EntryID, lines []string) error
}
