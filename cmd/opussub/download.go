package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	cfgpkg "opussub/internal/config"
	"opussub/internal/opusapi"
)

func newDownloadCmd(a *app) *cobra.Command {
	var (
		flagDir        string
		flagOverwrite  bool
		flagNoProgress bool
	)

	cmd := &cobra.Command{
		Use:   "download <opus-language-tag>",
		Short: "下载指定语言的原始归档（{tag}.zip）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := args[0]
			logger := a.newLogger(cfgpkg.Defaults())
			t := logger.Start("download", tag)

			var progress opusapi.Progress
			if !flagNoProgress {
				var bar *progressbar.ProgressBar
				progress = func(written, total int64) {
					if bar == nil {
						bar = progressbar.DefaultBytes(total, "downloading "+tag+".zip")
					}
					_ = bar.Set64(written)
				}
			}

			dest, err := opusapi.New().Download(cmd.Context(), tag, flagDir, flagOverwrite, progress)
			if err != nil {
				return err
			}
			t.Finish("downloaded", 1)
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDir, "dir", ".", "归档落盘目录")
	cmd.Flags().BoolVar(&flagOverwrite, "overwrite", true, "目标已存在时重新下载")
	cmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "关闭进度条")
	return cmd
}
