package config

import "encoding/json"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 归档路径指向工作目录下的示例文件名（需替换为真实下载产物）；
// - 过滤链全部显式列出，默认关闭，阈值给出常用值；
// - Writer 输出到 ./out 目录，原子替换开启。
func DefaultTemplateConfig() Config {
	d := Defaults()
	off := false
	mc := 0.5
	cfg := Config{
		Archive:   "en.zip",
		BatchSize: d.BatchSize,
		Workers:   0,
		Logging:   Logging{Level: "info"},
		Filters: Filters{
			DistinctTitle: &off,
			OriginalOnly:  &off,
			CasedOnly:     &off,
			MinCased:      &mc,
			Deduplicate:   &off,
		},
		Components: d.Components,
	}
	// Options：包含所有键（值可为空/默认），确保键存在。
	cfg.Options.Writer = json.RawMessage(`{
  "output_dir": "out",
  "atomic": true,
  "perm_file": 0,
  "perm_dir": 0,
  "buf_size": 65536
}`)
	return cfg
}
