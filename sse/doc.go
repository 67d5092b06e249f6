// Package sse streams server-sent events to HTTP clients.
//
// A Hub routes published events to connected clients. Every event carries a
// topic and every client a glob filter over topics, so a client can follow
// one run ("run:<id>") or all of them ("run:*").
//
//	events := sse.NewComponent("/api/v1/events", log)
//	registry.Register(events)
//	engine.GET("/api/v1/events", func(c *gin.Context) {
//		sse.Serve(events.Hub(), c.Writer, c.Request, "run:*")
//	})
package sse
