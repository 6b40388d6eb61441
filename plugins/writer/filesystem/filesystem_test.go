package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opussub/pkg/contract"
)

func newFS(t *testing.T, opts Options) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	opts.OutputDir = dir
	w, err := New(&opts)
	require.NoError(t, err)
	return w, dir
}

func TestNewInvalid(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Options{OutputDir: "  "})
	assert.Error(t, err)
}

// TestWriteLines 测试基本写出与换行约定
func TestWriteLines(t *testing.T) {
	w, dir := newFS(t, Options{})
	id := contract.EntryID{Title: "7", Doc: "1"}
	require.NoError(t, w.WriteLines(context.Background(), id, []string{"Hi", "Bye"}))

	raw, err := os.ReadFile(filepath.Join(dir, "7-1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hi\nBye\n", string(raw))
}

// TestWriteLinesOverwrite 测试重写覆盖旧内容
func TestWriteLinesOverwrite(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		a := atomic
		w, dir := newFS(t, Options{Atomic: &a})
		id := contract.EntryID{Title: "t", Doc: "d"}
		require.NoError(t, w.WriteLines(context.Background(), id, []string{"Old", "Old2"}))
		require.NoError(t, w.WriteLines(context.Background(), id, []string{"New"}))
		raw, err := os.ReadFile(filepath.Join(dir, "t-d.txt"))
		require.NoError(t, err)
		assert.Equal(t, "New\n", string(raw))
	}
}

// TestWriteLinesEmpty 测试空幸存集仍写出空文件
func TestWriteLinesEmpty(t *testing.T) {
	w, dir := newFS(t, Options{})
	id := contract.EntryID{Title: "9", Doc: "5"}
	require.NoError(t, w.WriteLines(context.Background(), id, nil))
	raw, err := os.ReadFile(filepath.Join(dir, "9-5.txt"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}

// TestFileNameInvalid 测试分隔符与空分量拒绝
func TestFileNameInvalid(t *testing.T) {
	bad := []contract.EntryID{
		{Title: "", Doc: "1"},
		{Title: "7", Doc: ""},
		{Title: "a/b", Doc: "1"},
		{Title: "7", Doc: "..\\x"},
		{Title: "..", Doc: "1"},
	}
	for _, id := range bad {
		_, err := FileName(id)
		assert.ErrorIs(t, err, contract.ErrPathInvalid, "id %q", id.String())
	}
	w, _ := newFS(t, Options{})
	err := w.WriteLines(context.Background(), bad[2], []string{"x"})
	assert.ErrorIs(t, err, contract.ErrPathInvalid)
}

// TestParseName 测试 FileName 的逆
func TestParseName(t *testing.T) {
	id, ok := ParseName("7-1.txt")
	require.True(t, ok)
	assert.Equal(t, contract.EntryID{Title: "7", Doc: "1"}, id)

	for _, name := range []string{"7-1", "-1.txt", "7-.txt", "71.txt", ".txt"} {
		_, ok := ParseName(name)
		assert.False(t, ok, "name %q", name)
	}
}

// TestReadLines 测试写后回读
func TestReadLines(t *testing.T) {
	w, _ := newFS(t, Options{})
	id := contract.EntryID{Title: "7", Doc: "2"}
	require.NoError(t, w.WriteLines(context.Background(), id, []string{"A", "B", "C"}))

	lines, err := w.ReadLines(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, lines)

	empty := contract.EntryID{Title: "7", Doc: "3"}
	require.NoError(t, w.WriteLines(context.Background(), empty, nil))
	lines, err = w.ReadLines(empty)
	require.NoError(t, err)
	assert.Nil(t, lines)
}

// TestWriteCanceled 测试取消的 ctx 直接返回
func TestWriteCanceled(t *testing.T) {
	w, dir := newFS(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.WriteLines(ctx, contract.EntryID{Title: "7", Doc: "1"}, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
	_, serr := os.Stat(filepath.Join(dir, "7-1.txt"))
	assert.True(t, os.IsNotExist(serr))
}
