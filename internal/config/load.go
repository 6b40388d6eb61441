package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Defaults 返回带有安全默认值的 Config 雏形。
// 注意：Archive 不设默认（必须由 JSON/ENV/CLI 提供）。
func Defaults() Config {
	return Config{
		BatchSize: 1000,
		Workers:   0,
		Components: Components{
			Writer: "fs",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 标量空值不覆盖；指针字段以非 nil 为“存在”；原样 JSON 为整体替换。
func Merge(base, over Config) Config {
	out := base
	// 顶层
	if strings.TrimSpace(over.Archive) != "" {
		out.Archive = strings.TrimSpace(over.Archive)
	}
	if over.BatchSize != 0 {
		out.BatchSize = over.BatchSize
	}
	if over.Workers != 0 {
		out.Workers = over.Workers
	}
	// Logging（仅 level）
	if strings.TrimSpace(over.Logging.Level) != "" {
		out.Logging.Level = strings.TrimSpace(over.Logging.Level)
	}

	// 过滤链（指针非 nil 才覆盖，显式 false 可关闭）
	if over.Filters.DistinctTitle != nil {
		out.Filters.DistinctTitle = cloneBool(over.Filters.DistinctTitle)
	}
	if over.Filters.OriginalOnly != nil {
		out.Filters.OriginalOnly = cloneBool(over.Filters.OriginalOnly)
	}
	if over.Filters.CasedOnly != nil {
		out.Filters.CasedOnly = cloneBool(over.Filters.CasedOnly)
	}
	if over.Filters.MinCased != nil {
		v := *over.Filters.MinCased
		out.Filters.MinCased = &v
	}
	if over.Filters.Deduplicate != nil {
		out.Filters.Deduplicate = cloneBool(over.Filters.Deduplicate)
	}

	// 组件名（空不覆盖）
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	// Options（完整替换对应键）
	if len(over.Options.Writer) > 0 {
		out.Options.Writer = cloneRaw(over.Options.Writer)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 OPUSSUB_；集合之外的键忽略。
// 支持：ARCHIVE, BATCH_SIZE, WORKERS, LOGGING_LEVEL,
// FILTERS_{DISTINCT_TITLE,ORIGINAL_ONLY,CASED_ONLY,MIN_CASED,DEDUPLICATE},
// COMPONENTS_WRITER, OPTIONS_WRITER_JSON。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "OPUSSUB_") {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len("OPUSSUB_") {
			continue
		}
		key := kv[:eq]
		val := kv[eq+1:]
		nk := strings.TrimPrefix(key, "OPUSSUB_")
		switch nk {
		case "ARCHIVE":
			over.Archive = strings.TrimSpace(val)
		case "BATCH_SIZE":
			if v, err := atoi(val); err == nil {
				over.BatchSize = v
			}
		case "WORKERS":
			if v, err := atoi(val); err == nil {
				over.Workers = v
			}
		case "LOGGING_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "FILTERS_DISTINCT_TITLE":
			if v, err := atob(val); err == nil {
				over.Filters.DistinctTitle = &v
			}
		case "FILTERS_ORIGINAL_ONLY":
			if v, err := atob(val); err == nil {
				over.Filters.OriginalOnly = &v
			}
		case "FILTERS_CASED_ONLY":
			if v, err := atob(val); err == nil {
				over.Filters.CasedOnly = &v
			}
		case "FILTERS_MIN_CASED":
			if v, err := atof(val); err == nil {
				over.Filters.MinCased = &v
			}
		case "FILTERS_DEDUPLICATE":
			if v, err := atob(val); err == nil {
				over.Filters.Deduplicate = &v
			}
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		case "OPTIONS_WRITER_JSON":
			// 原样 JSON；空值视为未设置，避免清空现有配置
			if strings.TrimSpace(val) != "" {
				over.Options.Writer = json.RawMessage(val)
			}
		default:
			// 非本集合的键忽略（例如观测等章节的 ENV）。
		}
	}
	return over, nil
}

func cloneBool(in *bool) *bool {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func atoi(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func atof(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &f)
	if err != nil {
		return 0, err
	}
	return f, nil
}

func atob(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool %q", s)
}
