package main

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "opussub/internal/config"
	"opussub/internal/diag"
)

// app: 子命令共享的顶层状态（旗标值 + 运行关联 ID）。
type app struct {
	cfgPath  string
	logLevel string
	corrID   string
}

func newRootCmd() *cobra.Command {
	a := &app{corrID: uuid.NewString()}
	root := &cobra.Command{
		Use:           "opussub",
		Short:         "OPUS OpenSubtitles 原始归档的下载与批量抽取工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "日志级别（debug/info/warn/error；覆盖配置）")

	root.AddCommand(
		newExtractCmd(a),
		newDownloadCmd(a),
		newLanguagesCmd(a),
		newInitCmd(a),
	)
	return root
}

// loadConfig 按优先级构建有效配置：Defaults < JSON < ENV。
// CLI 覆盖由各子命令自行叠加（仅对显式变更的旗标）。
func (a *app) loadConfig() (cfgpkg.Config, error) {
	// JSON 配置（文件或 ENV: OPUSSUB_CONFIG_JSON）
	var cfgJSON []byte
	if s := os.Getenv("OPUSSUB_CONFIG_JSON"); s != "" {
		cfgJSON = []byte(s)
	}
	path := a.cfgPath
	if path == "" {
		if s := os.Getenv("OPUSSUB_CONFIG_FILE"); s != "" {
			path = s
		}
	}
	// 默认读取工作目录下 config.json（若存在）
	if path == "" && len(cfgJSON) == 0 {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if path != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(path, cfgJSON)
		if err != nil {
			return cfg, err
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	over, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, err
	}
	return cfgpkg.Merge(cfg, over), nil
}

// newLogger 按最终级别构建 logger：CLI 旗标 > 配置 > "info"。
func (a *app) newLogger(cfg cfgpkg.Config) *diag.Logger {
	level := "info"
	if s := strings.TrimSpace(cfg.Logging.Level); s != "" {
		level = s
	}
	if s := strings.TrimSpace(a.logLevel); s != "" {
		level = s
	}
	return diag.NewLogger(a.corrID, level)
}
