package diag

import "sync"

// 进程内最小指标：计数器语义对齐
// - op_total{comp,stage,result}
// - error_total{comp,code}
// 供运行结束时的调试汇总使用；无导出后端。

var (
	metricsMu sync.Mutex
	opTotal   = map[[3]string]int64{}
	errTotal  = map[[2]string]int64{}
)

// IncOp 累加操作计数（result=success|error|skip）。
func IncOp(comp, stage, result string) {
	metricsMu.Lock()
	opTotal[[3]string{comp, stage, result}]++
	metricsMu.Unlock()
}

// IncError 按分类累加错误计数。
func IncError(comp string, code Code) {
	metricsMu.Lock()
	errTotal[[2]string{comp, string(code)}]++
	metricsMu.Unlock()
}

// SnapshotOps 返回操作计数快照（comp/stage/result → n）。
func SnapshotOps() map[[3]string]int64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	out := make(map[[3]string]int64, len(opTotal))
	for k, v := range opTotal {
		out[k] = v
	}
	return out
}

// SnapshotErrors 返回错误计数快照（comp/code → n）。
func SnapshotErrors() map[[2]string]int64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	out := make(map[[2]string]int64, len(errTotal))
	for k, v := range errTotal {
		out[k] = v
	}
	return out
}

// ResetMetrics 清零（测试用）。
func ResetMetrics() {
	metricsMu.Lock()
	opTotal = map[[3]string]int64{}
	errTotal = map[[2]string]int64{}
	metricsMu.Unlock()
}
