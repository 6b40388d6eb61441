package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opussub/internal/archive"
	"opussub/internal/diag"
	"opussub/pkg/contract"
	"opussub/pkg/langtag"
)

// memWriter: 进程内收集器（测试用）。
type memWriter struct {
	mu   sync.Mutex
	subs map[contract.EntryID][]string
}

func newMemWriter() *memWriter {
	return &memWriter{subs: map[contract.EntryID][]string{}}
}

func (w *memWriter) WriteLines(_ context.Context, id contract.EntryID, lines []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs[id] = append([]string(nil), lines...)
	return nil
}

// failWriter: 恒定失败（测试首错传播）。
type failWriter struct{}

func (failWriter) WriteLines(context.Context, contract.EntryID, []string) error {
	return errors.New("disk full")
}

func subtitleXML(original string, lines ...string) string {
	s := "<document><meta><source><original>" + original + "</original></source></meta>"
	for _, l := range lines {
		s += "<s>" + l + "</s>"
	}
	return s + "</document>"
}

func writeZip(t *testing.T, name string, files map[string]string) *archive.Handle {
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
	h, err := archive.New(path)
	require.NoError(t, err)
	return h
}

func testLogger() *diag.Logger { return diag.NewLoggerTo(io.Discard, "test", "error") }

// TestPartition 测试精确上取整切批
func TestPartition(t *testing.T) {
	mkEntries := func(n int) []contract.Entry {
		out := make([]contract.Entry, n)
		for i := range out {
			out[i] = contract.Entry{Path: fmt.Sprintf("p/%d/1.xml", i)}
		}
		return out
	}

	// N=2500, B=1000 → 3 批：1000,1000,500
	batches := partition(mkEntries(2500), 1000)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Entries, 1000)
	assert.Len(t, batches[1].Entries, 1000)
	assert.Len(t, batches[2].Entries, 500)

	// 恰为整数倍：无空尾批
	batches = partition(mkEntries(2000), 1000)
	require.Len(t, batches, 2)
	assert.Len(t, batches[1].Entries, 1000)

	// 并集 == 全集，无重复无遗漏
	batches = partition(mkEntries(7), 3)
	seen := map[string]bool{}
	for _, b := range batches {
		for _, e := range b.Entries {
			assert.False(t, seen[e.Path], "duplicate %s", e.Path)
			seen[e.Path] = true
		}
	}
	assert.Len(t, seen, 7)

	assert.Nil(t, partition(nil, 10))
}

// TestRunEndToEnd 测试单条目端到端：去重后写出
func TestRunEndToEnd(t *testing.T) {
	h := writeZip(t, "en.zip", map[string]string{
		"raw/en/7/1.xml": subtitleXML("English", "Hi", "Hi", "Bye"),
	})
	w := newMemWriter()
	comp := Components{Archive: h, Resolver: langtag.New(), Writer: w}
	set := Settings{
		Filters:   contract.FilterConfig{Deduplicate: true},
		BatchSize: 1000,
		Workers:   2,
	}
	n, err := Run(context.Background(), comp, set, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"Hi", "Bye"}, w.subs[contract.EntryID{Title: "7", Doc: "1"}])
}

// TestRunWorkerEquivalence 测试 worker 数不同但幸存集合一致
func TestRunWorkerEquivalence(t *testing.T) {
	files := map[string]string{}
	for title := 1; title <= 5; title++ {
		for doc := 1; doc <= 4; doc++ {
			orig := "English"
			if doc%2 == 0 {
				orig = "German"
			}
			files[fmt.Sprintf("raw/en/%d/%d.xml", title, doc)] =
				subtitleXML(orig, "Line One", "Line Two")
		}
	}
	h := writeZip(t, "en.zip", files)

	run := func(workers int) []contract.EntryID {
		w := newMemWriter()
		comp := Components{Archive: h, Resolver: langtag.New(), Writer: w}
		set := Settings{
			Filters:   contract.FilterConfig{OriginalOnly: true},
			BatchSize: 3,
			Workers:   workers,
		}
		_, err := Run(context.Background(), comp, set, testLogger())
		require.NoError(t, err)
		ids := make([]contract.EntryID, 0, len(w.subs))
		for id := range w.subs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		return ids
	}

	assert.Equal(t, run(1), run(8))
	// original-only：仅奇数 doc（English）幸存 → 每 title 2 个
	assert.Len(t, run(4), 10)
}

// TestRunMalformedEntry 测试单条目解析失败不拖垮整批
func TestRunMalformedEntry(t *testing.T) {
	h := writeZip(t, "en.zip", map[string]string{
		"raw/en/7/1.xml": subtitleXML("English", "Good Line"),
		"raw/en/7/2.xml": "<document><s>trunca",
		"raw/en/9/1.xml": subtitleXML("English", "Also Good"),
	})
	w := newMemWriter()
	comp := Components{Archive: h, Resolver: langtag.New(), Writer: w}
	n, err := Run(context.Background(), comp, Settings{BatchSize: 10, Workers: 2}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, w.subs, contract.EntryID{Title: "7", Doc: "2"})
}

// TestRunDistinctTitle 测试 title 去重端到端
func TestRunDistinctTitle(t *testing.T) {
	h := writeZip(t, "en.zip", map[string]string{
		"raw/en/7/3.xml": subtitleXML("English", "C"),
		"raw/en/7/1.xml": subtitleXML("English", "A"),
		"raw/en/7/2.xml": subtitleXML("English", "B"),
		"raw/en/9/5.xml": subtitleXML("English", "D"),
	})
	w := newMemWriter()
	comp := Components{Archive: h, Resolver: langtag.New(), Writer: w}
	set := Settings{Filters: contract.FilterConfig{DistinctTitle: true}, BatchSize: 2, Workers: 2}
	n, err := Run(context.Background(), comp, set, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, w.subs, contract.EntryID{Title: "7", Doc: "1"})
	assert.Contains(t, w.subs, contract.EntryID{Title: "9", Doc: "5"})
}

// TestRunConfigErrors 测试非法配置在派发前失败
func TestRunConfigErrors(t *testing.T) {
	h := writeZip(t, "en.zip", map[string]string{"raw/en/7/1.xml": "<d/>"})
	comp := Components{Archive: h, Resolver: langtag.New(), Writer: newMemWriter()}

	_, err := Run(context.Background(), comp, Settings{BatchSize: 0, Workers: 1}, testLogger())
	assert.ErrorIs(t, err, contract.ErrConfig)
	_, err = Run(context.Background(), comp, Settings{BatchSize: 10, Workers: -1}, testLogger())
	assert.ErrorIs(t, err, contract.ErrConfig)
}

// TestRunWriterError 测试写出失败记录首错并中止
func TestRunWriterError(t *testing.T) {
	h := writeZip(t, "en.zip", map[string]string{
		"raw/en/7/1.xml": subtitleXML("English", "Hello"),
	})
	comp := Components{Archive: h, Resolver: langtag.New(), Writer: failWriter{}}
	_, err := Run(context.Background(), comp, Settings{BatchSize: 10, Workers: 1}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// TestRunCancel 测试取消停发并尽快收尾
func TestRunCancel(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 50; i++ {
		files[fmt.Sprintf("raw/en/%d/1.xml", i)] = subtitleXML("English", "Some Line")
	}
	h := writeZip(t, "en.zip", files)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	comp := Components{Archive: h, Resolver: langtag.New(), Writer: newMemWriter()}
	_, err := Run(ctx, comp, Settings{BatchSize: 5, Workers: 2}, testLogger())
	assert.ErrorIs(t, err, context.Canceled)
}
