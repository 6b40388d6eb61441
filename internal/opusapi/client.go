// Package opusapi 封装 OPUS OpenSubtitles 的两个外部接口：
// 语言清单查询与原始 ZIP 归档下载。
package opusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultAPIURL: OPUS 查询 API 根。
	DefaultAPIURL = "https://opus.nlpl.eu/opusapi/"
	// DefaultDownloadURL: v2024 raw 归档对象存储根。
	DefaultDownloadURL = "https://object.pouta.csc.fi/OPUS-OpenSubtitles/v2024/raw/"
	// Corpus: 固定查询 OpenSubtitles 语料库。
	Corpus = "OpenSubtitles"
)

// Client: OPUS API 客户端。零值不可用，经 New 构造。
type Client struct {
	apiURL      string
	downloadURL string
	hc          *http.Client
}

// Option 调整 Client 构造（测试期替换端点与 http.Client）。
type Option func(*Client)

// WithAPIURL 覆盖查询 API 根。
func WithAPIURL(u string) Option { return func(c *Client) { c.apiURL = u } }

// WithDownloadURL 覆盖下载根。
func WithDownloadURL(u string) Option { return func(c *Client) { c.downloadURL = u } }

// WithHTTPClient 覆盖底层 http.Client。
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// New 构造 Client。默认 30s 超时（下载请求单独不限时，由 ctx 控制）。
func New(opts ...Option) *Client {
	c := &Client{
		apiURL:      DefaultAPIURL,
		downloadURL: DefaultDownloadURL,
		hc:          &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListLanguages 查询语料库可用的 OPUS 语言标签清单。
func (c *Client) ListLanguages(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("languages", "true")
	q.Set("corpus", Corpus)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opusapi: languages request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opusapi: languages status %d", resp.StatusCode)
	}
	var body struct {
		Languages []string `json:"languages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("opusapi: languages decode: %w", err)
	}
	return body.Languages, nil
}
