package main

import (
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kbukum/subtitler/bootstrap"
	"github.com/kbukum/subtitler/internal/app"
	"github.com/kbukum/subtitler/version"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *app.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*app.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := app.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if cfg.Version == "" {
			cfg.Version = version.Get().Short()
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newApp builds the application. One-shot commands keep stdout for their
// own output, so logs and the startup summary go to stderr.
func (c *commandContext) newApp(cmd *cobra.Command, oneShot bool) (*bootstrap.App[*app.Config], error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var summary io.Writer = cmd.ErrOrStderr()
	if oneShot {
		cfg.Logging.Output = "stderr"
		summary = io.Discard
	}
	return bootstrap.NewApp(cfg, bootstrap.WithSummaryWriter(summary))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
