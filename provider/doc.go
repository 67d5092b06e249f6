// Package provider defines the request/response contract shared by the
// remote backends (speech-to-text, chat completion) and the ffmpeg runner,
// plus middleware that wraps any of them.
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("subtitler"),
//	)(raw)
//
// Adapt bridges a backend's own types to a domain interface.
package provider
