package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opussub/pkg/contract"
)

// writeZip 在临时目录构造一个测试归档。
func writeZip(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for p, body := range files {
		w, err := zw.Create(p)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// TestNewInvalid 测试缺失/非 ZIP 输入在构造期失败
func TestNewInvalid(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.zip"))
	assert.ErrorIs(t, err, contract.ErrArchive)

	bad := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	_, err = New(bad)
	assert.ErrorIs(t, err, contract.ErrArchive)
}

// TestLanguageTag 测试语言标签取文件名主干
func TestLanguageTag(t *testing.T) {
	path := writeZip(t, "pt_br.zip", map[string]string{"x/7/1.xml": "<d/>"})
	h, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "pt_br", h.LanguageTag())
}

// TestListSortedAndIDs 测试枚举排序与标识派生
func TestListSortedAndIDs(t *testing.T) {
	path := writeZip(t, "en.zip", map[string]string{
		"raw/en/9/5.xml": "<d/>",
		"raw/en/7/3.xml": "<d/>",
		"raw/en/7/1.xml": "<d/>",
		"raw/en/7/2.xml": "<d/>",
		"raw/en/README":  "ignored",
		"orphan.xml":     "ignored, no title segment",
	})
	h, err := New(path)
	require.NoError(t, err)
	cat, err := h.Open()
	require.NoError(t, err)
	defer cat.Close()

	entries, err := cat.List(false)
	require.NoError(t, err)
	var ids []contract.EntryID
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []contract.EntryID{
		{Title: "7", Doc: "1"},
		{Title: "7", Doc: "2"},
		{Title: "7", Doc: "3"},
		{Title: "9", Doc: "5"},
	}, ids)

	n, err := cat.Count(false)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

// TestListDistinctTitle 测试每 title 仅保留字典序最小的文档
func TestListDistinctTitle(t *testing.T) {
	path := writeZip(t, "en.zip", map[string]string{
		"raw/en/7/3.xml": "<d/>",
		"raw/en/7/1.xml": "<d/>",
		"raw/en/7/2.xml": "<d/>",
		"raw/en/9/5.xml": "<d/>",
	})
	h, err := New(path)
	require.NoError(t, err)
	cat, err := h.Open()
	require.NoError(t, err)
	defer cat.Close()

	entries, err := cat.List(true)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, contract.EntryID{Title: "7", Doc: "1"}, entries[0].ID)
	assert.Equal(t, contract.EntryID{Title: "9", Doc: "5"}, entries[1].ID)

	n, err := cat.Count(true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// TestReadEntry 测试条目字节读取
func TestReadEntry(t *testing.T) {
	path := writeZip(t, "en.zip", map[string]string{"a/7/1.xml": "<doc/>"})
	h, err := New(path)
	require.NoError(t, err)
	cat, err := h.Open()
	require.NoError(t, err)
	defer cat.Close()

	b, err := cat.ReadEntry("a/7/1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<doc/>", string(b))

	_, err = cat.ReadEntry("a/7/404.xml")
	assert.Error(t, err)
}

// TestOpenIndependentHandles 测试多句柄互不干扰
func TestOpenIndependentHandles(t *testing.T) {
	path := writeZip(t, "en.zip", map[string]string{"a/7/1.xml": "<doc/>"})
	h, err := New(path)
	require.NoError(t, err)
	c1, err := h.Open()
	require.NoError(t, err)
	c2, err := h.Open()
	require.NoError(t, err)
	require.NoError(t, c1.Close())
	// c1 关闭后 c2 仍可读
	b, err := c2.ReadEntry("a/7/1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<doc/>", string(b))
	require.NoError(t, c2.Close())
}
