package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"opussub/internal/opusapi"
)

func newLanguagesCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "列出语料库可用的 OPUS 语言标签",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := opusapi.New().ListLanguages(cmd.Context())
			if err != nil {
				return err
			}
			for _, tag := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}
}
