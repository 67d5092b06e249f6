package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/subtitler/internal/app"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				cfg.Server.Port = port
			}
			a, err := ctx.newApp(cmd, false)
			if err != nil {
				return err
			}
			stack, err := app.Wire(a)
			if err != nil {
				return err
			}
			app.Serve(a, stack)
			return a.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides server.port)")
	return cmd
}
