// Package component defines the lifecycle contract shared by the service's
// infrastructure: the result store, the history database, the ffmpeg probe
// and the HTTP server.
//
// A Registry starts components in registration order, stops them in reverse
// and collects their health for the /health endpoint.
package component
