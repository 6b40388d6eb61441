package filesystem

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"opussub/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// OutputDir: 输出根目录（必需）。
	OutputDir string `json:"output_dir"`
	// Atomic: 是否使用原子替换（同目录临时文件 + rename）。
	// 默认值：true。未提供该字段时采用原子写；显式 false 可关闭。
	Atomic *bool `json:"atomic,omitempty"`
	// PermFile/PermDir: 可选权限；为 0 表示使用实现/平台默认。
	PermFile os.FileMode `json:"perm_file,omitempty"`
	PermDir  os.FileMode `json:"perm_dir,omitempty"`
	// BufSize: 写缓冲区大小；<=0 使用实现默认。
	BufSize int `json:"buf_size,omitempty"`
}

type FS struct {
	root    string
	atomic  bool
	permF   os.FileMode
	permD   os.FileMode
	bufSize int
}

// New 创建文件系统 Writer 实现。
func New(opts *Options) (*FS, error) {
	if opts == nil || strings.TrimSpace(opts.OutputDir) == "" {
		return nil, os.ErrInvalid
	}
	bsz := opts.BufSize
	if bsz <= 0 {
		bsz = 64 * 1024
	}
	pf := opts.PermFile
	if pf == 0 {
		pf = 0o644
	}
	pd := opts.PermDir
	if pd == 0 {
		pd = 0o755
	}
	atomic := true
	if opts.Atomic != nil {
		atomic = *opts.Atomic
	}
	return &FS{root: opts.OutputDir, atomic: atomic, permF: pf, permD: pd, bufSize: bsz}, nil
}

var _ contract.Writer = (*FS)(nil)

// WriteLines 将幸存行序列写为 "{title}-{doc}.txt"，每行以 \n 结尾。
// 同一 EntryID 单写者；并发安全由调用侧的单线程收集保证。
func (w *FS) WriteLines(ctx context.Context, id contract.EntryID, lines []string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	name, err := FileName(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.root, w.permD); err != nil {
		return err
	}
	dest := filepath.Join(w.root, name)

	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	if w.atomic {
		return w.writeAtomic(ctx, dest, &buf)
	}
	return w.writeOverwrite(ctx, dest, &buf)
}

// FileName: EntryID → 扁平文件名。拒绝含分隔符或空分量的标识。
func FileName(id contract.EntryID) (string, error) {
	t, d := string(id.Title), string(id.Doc)
	if t == "" || d == "" || !safeComponent(t) || !safeComponent(d) {
		return "", fmt.Errorf("%w: %q", contract.ErrPathInvalid, id.String())
	}
	return t + "-" + d + ".txt", nil
}

// ParseName: 文件名 → EntryID（FileName 的逆）。不匹配返回 false。
func ParseName(name string) (contract.EntryID, bool) {
	base := strings.TrimSuffix(name, ".txt")
	if base == name {
		return contract.EntryID{}, false
	}
	i := strings.IndexByte(base, '-')
	if i <= 0 || i == len(base)-1 {
		return contract.EntryID{}, false
	}
	return contract.EntryID{Title: contract.TitleID(base[:i]), Doc: contract.DocID(base[i+1:])}, true
}

// ReadLines 回读一个已写出的文档（去掉行结尾）。
func (w *FS) ReadLines(id contract.EntryID) ([]string, error) {
	name, err := FileName(id)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(w.root, name))
	if err != nil {
		return nil, err
	}
	s := strings.TrimSuffix(string(raw), "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}

func safeComponent(s string) bool {
	if s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\:\x00")
}

func (w *FS) writeOverwrite(ctx context.Context, dest string, r io.Reader) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.permF)
	if err != nil {
		return err
	}
	// 确保及时关闭
	defer f.Close()

	bw := bufio.NewWriterSize(f, w.bufSize)
	if _, err := io.Copy(bw, readerWithCtx(ctx, r)); err != nil {
		return err
	}
	return bw.Flush()
}

func (w *FS) writeAtomic(ctx context.Context, dest string, r io.Reader) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	// 目标权限：尽量与期望一致
	_ = os.Chmod(tmpPath, w.permF)

	bw := bufio.NewWriterSize(tmp, w.bufSize)
	if _, err := io.Copy(bw, readerWithCtx(ctx, r)); err != nil {
		_ = bw.Flush()
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// 平台特定的原子替换（或最佳努力）：
	if err := osReplace(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// 最佳努力：在部分平台同步父目录，提升崩溃安全性
	_ = syncDir(dir)
	return nil
}

// readerWithCtx: 在每次 Read 前检查 ctx 是否已取消。
func readerWithCtx(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
	}
	return cr.r.Read(p)
}
