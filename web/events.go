package web

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/subtitler/server"
	"github.com/kbukum/subtitler/sse"
	"github.com/kbukum/subtitler/validation"
)

// RunTopic is the event topic of run id.
func RunTopic(id string) string {
	return "run:" + id
}

// Events streams pipeline transitions. ?run=<id> follows a single run.
func (h *Handlers) Events(c *gin.Context) {
	filter := RunTopic("*")
	if id := c.Query("run"); id != "" {
		if _, err := validation.ValidateUUID("run", id); err != nil {
			server.RespondWithError(c, err)
			return
		}
		filter = RunTopic(id)
	}
	sse.Serve(h.events, c.Writer, c.Request, filter)
}
