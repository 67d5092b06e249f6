package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/subtitler/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "subtitler "+version.Get().String())
			return nil
		},
	}
}
