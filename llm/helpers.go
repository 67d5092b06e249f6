package llm

import (
	"context"

	"github.com/kbukum/subtitler/provider"
)

// Complete sends a system and a user prompt and returns the reply text. It
// accepts any RequestResponse so middleware-wrapped adapters work too.
func Complete(ctx context.Context, p provider.RequestResponse[CompletionRequest, CompletionResponse], system, user string) (string, error) {
	resp, err := p.Execute(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
