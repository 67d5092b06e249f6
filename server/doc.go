// Package server is the HTTP server behind the web form and JSON API.
//
// Gin handles routing. The engine sits on a root ServeMux wrapped by the
// net/http middleware chain (server/middleware) and an h2c handler, so
// HTTP/2 cleartext clients are served on the same port.
//
// A Server is registered with the bootstrap app through NewComponent:
//
//	srv := server.New(&cfg.Server, log)
//	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll)
//	web.Register(srv.GinEngine(), handlers)
//	_ = app.RegisterComponent(server.NewComponent(srv))
package server
