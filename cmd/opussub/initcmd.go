package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "opussub/internal/config"
)

func newInitCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "在指定目录生成默认 config.json 与 .env 模板（不覆盖已有文件）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = strings.TrimSpace(args[0])
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			cfgPath := filepath.Join(dir, "config.json")
			if err := writeConfig(cfgPath, cfgpkg.DefaultTemplateConfig()); err != nil {
				return err
			}
			envPath := filepath.Join(dir, ".env")
			if err := writeDotEnv(envPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "提示：.env 生成失败（已跳过）：%v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfgPath)
			return nil
		},
	}
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	_, _ = f.Write([]byte("\n"))
	return nil
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
// 仅创建文件；不覆盖，不合并。
func writeDotEnv(path string) error {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		// 已存在直接跳过
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return err
	}
	var b strings.Builder
	b.WriteString("# opussub .env 模板（由 init 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > JSON\n")
	b.WriteString("# 空值表示未设置；按需填写后移除本行注释。\n\n")

	b.WriteString("# 配置来源（可二选一）\n")
	b.WriteString("OPUSSUB_CONFIG_FILE=\n")
	b.WriteString("OPUSSUB_CONFIG_JSON=\n\n")

	b.WriteString("# 运行参数覆盖\n")
	b.WriteString("OPUSSUB_ARCHIVE=\n")
	b.WriteString("OPUSSUB_BATCH_SIZE=\n")
	b.WriteString("OPUSSUB_WORKERS=\n")
	b.WriteString("OPUSSUB_LOGGING_LEVEL=\n\n")

	b.WriteString("# 过滤链覆盖\n")
	b.WriteString("OPUSSUB_FILTERS_DISTINCT_TITLE=\n")
	b.WriteString("OPUSSUB_FILTERS_ORIGINAL_ONLY=\n")
	b.WriteString("OPUSSUB_FILTERS_CASED_ONLY=\n")
	b.WriteString("OPUSSUB_FILTERS_MIN_CASED=\n")
	b.WriteString("OPUSSUB_FILTERS_DEDUPLICATE=\n\n")

	b.WriteString("# 组件选择与选项\n")
	b.WriteString("OPUSSUB_COMPONENTS_WRITER=\n")
	b.WriteString("OPUSSUB_OPTIONS_WRITER_JSON=\n")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}
