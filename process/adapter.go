package process

import (
	"context"
	"os/exec"
	"time"

	"github.com/kbukum/subtitler/provider"
)

var _ provider.RequestResponse[Command, *Result] = (*Adapter)(nil)

// Config holds defaults for every command an Adapter runs.
type Config struct {
	// Name is the binary, used for the PATH probe and as the provider name.
	Name        string        `yaml:"name,omitempty" mapstructure:"name"`
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each run. Zero means none.
	Timeout     time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	StderrLimit int           `yaml:"stderr_limit,omitempty" mapstructure:"stderr_limit"`
}

// Adapter exposes Run as a provider so the ffmpeg runner gets the same
// logging middleware as the HTTP backends.
type Adapter struct {
	cfg Config
}

func NewAdapter(cfg Config) *Adapter { return &Adapter{cfg: cfg} }

func (a *Adapter) Name() string { return a.cfg.Name }

// IsAvailable looks Config.Name up on PATH. An unnamed adapter is always
// available.
func (a *Adapter) IsAvailable(context.Context) bool {
	if a.cfg.Name == "" {
		return true
	}
	_, err := exec.LookPath(a.cfg.Name)
	return err == nil
}

func (a *Adapter) Execute(ctx context.Context, cmd Command) (*Result, error) {
	return a.Run(ctx, cmd)
}

// Run fills unset command fields from Config and applies the timeout.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 {
		cmd.GracePeriod = a.cfg.GracePeriod
	}
	if cmd.StderrLimit == 0 {
		cmd.StderrLimit = a.cfg.StderrLimit
	}
	if a.cfg.Timeout <= 0 {
		return Run(ctx, cmd)
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	return Run(ctx, cmd)
}
