package diag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opussub/pkg/contract"
)

// TestClassify 测试错误分类
func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code Code
	}{
		{nil, CodeUnknown},
		{context.Canceled, CodeCancel},
		{context.DeadlineExceeded, CodeCancel},
		{fmt.Errorf("open: %w", contract.ErrArchive), CodeArchive},
		{fmt.Errorf("validate: %w", contract.ErrConfig), CodeConfig},
		{contract.ErrPathInvalid, CodeConfig},
		{&os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, CodeIO},
		{errors.New("mystery"), CodeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, Classify(tt.err), "err=%v", tt.err)
	}
}

// TestLoggerEvents 测试事件结构与级别过滤
func TestLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "corr-1", "info")

	tm := l.StartWith("worker", "batch begin", "7/1", "0")
	tm.Finish("batch done", 3)
	l.Warn("worker", "parse failed", "7/2")
	l.Debug("config", "effective", map[string]string{"k": "v"}) // debug 被过滤

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "worker", ev["comp"])
	assert.Equal(t, "start", ev["stage"])
	assert.Equal(t, "corr-1", ev["corr_id"])
	assert.Equal(t, "7/1", ev["entry"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &ev))
	assert.Equal(t, "finish", ev["stage"])
	assert.EqualValues(t, 3, ev["count"])

	require.NoError(t, json.Unmarshal([]byte(lines[2]), &ev))
	assert.Equal(t, "warn", ev["level"])
}

// TestRotatingFile 测试大小轮转
func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewRotatingFile(dir, 64)
	line := []byte(strings.Repeat("x", 40) + "\n")
	_, err := w.Write(line)
	require.NoError(t, err)
	_, err = w.Write(line) // 超过 64 字节，触发轮转
	require.NoError(t, err)
	require.NoError(t, w.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "opussub-*.log"))
	require.NoError(t, err)
	// current + 一个轮转文件
	assert.Len(t, matches, 2)
}

// TestMetrics 测试计数器快照
func TestMetrics(t *testing.T) {
	ResetMetrics()
	IncOp("worker", "parse", "success")
	IncOp("worker", "parse", "success")
	IncOp("worker", "parse", "error")
	IncError("worker", CodeIO)

	ops := SnapshotOps()
	assert.EqualValues(t, 2, ops[[3]string{"worker", "parse", "success"}])
	assert.EqualValues(t, 1, ops[[3]string{"worker", "parse", "error"}])
	errs := SnapshotErrors()
	assert.EqualValues(t, 1, errs[[2]string{"worker", "io"}])
}
