package diag

import (
	"archive/zip"
	"context"
	"errors"
	"net"
	"os"

	"opussub/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总与退出码映射，与具体错误类型解耦。
type Code string

const (
	CodeUnknown Code = "unknown"
	CodeArchive Code = "archive"
	CodeConfig  Code = "config"
	CodeNetwork Code = "network"
	CodeCancel  Code = "cancel"
	CodeIO      Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	// 归档容器
	if errors.Is(err, contract.ErrArchive) || errors.Is(err, zip.ErrFormat) {
		return CodeArchive
	}
	// 配置
	if errors.Is(err, contract.ErrConfig) || errors.Is(err, contract.ErrPathInvalid) {
		return CodeConfig
	}
	// I/O
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	// 网络（连接/超时等）
	var nerr net.Error
	if errors.As(err, &nerr) {
		return CodeNetwork
	}
	return CodeUnknown
}
