package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	cfgpkg "opussub/internal/config"
	"opussub/internal/diag"
	"opussub/internal/pipeline"
	wfs "opussub/plugins/writer/filesystem"
)

var pipelineRun = pipeline.Run

func newExtractCmd(a *app) *cobra.Command {
	var (
		flagOut           string
		flagDistinctTitle bool
		flagOriginalOnly  bool
		flagCasedOnly     bool
		flagMinCased      float64
		flagDeduplicate   bool
		flagBatchSize     int
		flagWorkers       int
		flagNoProgress    bool
		flagVerify        bool
	)

	cmd := &cobra.Command{
		Use:   "extract [archive.zip]",
		Short: "从原始归档抽取字幕为逐行文本文件",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			// CLI 覆盖：仅对显式变更的旗标生效，避免零值误覆盖。
			fl := cmd.Flags()
			var over cfgpkg.Config
			if len(args) == 1 {
				over.Archive = args[0]
			}
			if fl.Changed("distinct-title") {
				over.Filters.DistinctTitle = &flagDistinctTitle
			}
			if fl.Changed("original-only") {
				over.Filters.OriginalOnly = &flagOriginalOnly
			}
			if fl.Changed("cased-only") {
				over.Filters.CasedOnly = &flagCasedOnly
			}
			if fl.Changed("min-cased") {
				over.Filters.MinCased = &flagMinCased
			}
			if fl.Changed("deduplicate") {
				over.Filters.Deduplicate = &flagDeduplicate
			}
			if fl.Changed("batch-size") {
				over.BatchSize = flagBatchSize
			}
			if fl.Changed("workers") {
				over.Workers = flagWorkers
			}
			cfg = cfgpkg.Merge(cfg, over)
			if fl.Changed("out") {
				if err := patchWriterDir(&cfg, flagOut); err != nil {
					return err
				}
			}

			if err := cfgpkg.Validate(cfg); err != nil {
				return err
			}
			logger := a.newLogger(cfg)

			comp, set, err := cfgpkg.Assemble(cfg)
			if err != nil {
				logger.Error("cli", diag.Classify(err), "assemble failed", err)
				return err
			}
			if !flagNoProgress {
				var bar *progressbar.ProgressBar
				set.Progress = func(done, total int) {
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetDescription("extracting"),
							progressbar.OptionSetWriter(os.Stderr),
							progressbar.OptionShowCount(),
							progressbar.OptionClearOnFinish(),
						)
					}
					_ = bar.Set(done)
				}
			}

			start := time.Now()
			n, err := pipelineRun(cmd.Context(), comp, set, logger)
			if err != nil {
				logger.Error("cli", diag.Classify(err), "run failed", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d documents in %s\n", n, time.Since(start).Round(time.Millisecond))
			if flagVerify {
				got, err := countCorpus(cfg)
				if err != nil {
					return err
				}
				if got < n {
					return fmt.Errorf("verify: %d documents on disk, expected at least %d", got, n)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "verified %d documents on disk\n", got)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagOut, "out", "", "输出目录（覆盖配置中的 writer output_dir）")
	cmd.Flags().BoolVar(&flagDistinctTitle, "distinct-title", false, "每个 title 只保留一个文档")
	cmd.Flags().BoolVar(&flagOriginalOnly, "original-only", false, "只保留原始语言与归档语言一致的文档")
	cmd.Flags().BoolVar(&flagCasedOnly, "cased-only", false, "只保留大小写混排的文档（需 --min-cased）")
	cmd.Flags().Float64Var(&flagMinCased, "min-cased", 0, "混排词比例阈值，(0,1]")
	cmd.Flags().BoolVar(&flagDeduplicate, "deduplicate", false, "折叠相邻的重复行")
	cmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "每批条目数（覆盖配置）")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "worker 数；0 表示自动（覆盖配置）")
	cmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "关闭进度条")
	cmd.Flags().BoolVar(&flagVerify, "verify", false, "运行后回读输出目录核对文档数")
	return cmd
}

// countCorpus 统计输出目录中文件名可还原为 EntryID 的文档数。
func countCorpus(cfg cfgpkg.Config) (int, error) {
	var wopts struct {
		OutputDir string `json:"output_dir"`
	}
	if len(cfg.Options.Writer) > 0 {
		if err := json.Unmarshal(cfg.Options.Writer, &wopts); err != nil {
			return 0, err
		}
	}
	if wopts.OutputDir == "" {
		return 0, nil
	}
	ents, err := os.ReadDir(wopts.OutputDir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if _, ok := wfs.ParseName(e.Name()); ok {
			n++
		}
	}
	return n, nil
}

// patchWriterDir 局部改写 writer options 的 output_dir，保留其余键。
func patchWriterDir(cfg *cfgpkg.Config, dir string) error {
	opts := map[string]any{}
	if len(cfg.Options.Writer) > 0 {
		if err := json.Unmarshal(cfg.Options.Writer, &opts); err != nil {
			return err
		}
	}
	opts["output_dir"] = dir
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	cfg.Options.Writer = raw
	return nil
}
