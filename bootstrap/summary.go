package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kbukum/subtitler/component"
)

// writeSummary renders one row per registered component with its
// description and current health.
func writeSummary(ctx context.Context, w io.Writer, name, version string, reg *component.Registry, took time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s %s (started in %s)", name, version, took.Round(time.Millisecond)))
	t.AppendHeader(table.Row{"Component", "Type", "Details", "Health"})

	for _, c := range reg.All() {
		desc := component.Description{Name: c.Name()}
		if d, ok := c.(component.Describable); ok {
			desc = d.Describe()
		}
		h := c.Health(ctx)
		status := string(h.Status)
		if h.Message != "" {
			status += ": " + h.Message
		}
		details := desc.Details
		if desc.Port > 0 {
			details = fmt.Sprintf("%s port=%d", details, desc.Port)
		}
		t.AppendRow(table.Row{desc.Name, desc.Type, details, status})
	}
	t.Render()
}
