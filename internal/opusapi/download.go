package opusapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Progress 在下载过程中按块回报（已写字节数, 总字节数）。
// total 为 -1 表示服务端未提供 Content-Length。
type Progress func(written, total int64)

// Download 将 "{tag}.zip" 流式下载到 dir 下，返回落盘路径。
// overwrite=false 且目标已存在时跳过下载直接返回。
// 写入走同目录临时文件 + rename，失败不留半成品。
func (c *Client) Download(ctx context.Context, tag, dir string, overwrite bool, progress Progress) (string, error) {
	name := tag + ".zip"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, name)
	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return dest, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.downloadURL+name, nil)
	if err != nil {
		return "", err
	}
	// 下载可能远超常规超时，由 ctx 控制生命周期。
	hc := &http.Client{Transport: c.hc.Transport}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("opusapi: download request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("opusapi: download %s status %d", name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	src := io.Reader(resp.Body)
	if progress != nil {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("opusapi: download %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return dest, nil
}

type progressReader struct {
	r       io.Reader
	total   int64
	written int64
	fn      Progress
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.written += int64(n)
		pr.fn(pr.written, pr.total)
	}
	return n, err
}
