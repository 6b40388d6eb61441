package contract

import "errors"

// 最小错误分类（哨兵；用于上层策略与退出码判定）。
var (
	// ErrArchive: 输入不是有效 ZIP 容器或无法打开；运行级致命，不重试。
	ErrArchive = errors.New("archive invalid")
	// ErrConfig: 批大小/worker 数/过滤阈值等配置非法；派发开始前致命。
	ErrConfig = errors.New("configuration invalid")
	// ErrPathInvalid: 产物标识无法映射为合法文件名。
	ErrPathInvalid = errors.New("path invalid")
)
