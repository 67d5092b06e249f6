// Package llm is a chat completion client that talks to any provider through
// a Dialect, the way database/sql talks to drivers.
//
// Import a dialect for its registration side effect, then build an adapter
// from configuration:
//
//	import _ "github.com/kbukum/subtitler/llm/openai"
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    Model:   "gpt-4-1106-preview",
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//	text, err := llm.Complete(ctx, adapter, systemPrompt, userPrompt)
//
// Adapter implements provider.RequestResponse, so the provider middleware
// (logging, tracing, metrics) can wrap it.
package llm
