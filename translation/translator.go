package translation

import (
	"context"
	"fmt"

	"github.com/kbukum/subtitler/llm"
	"github.com/kbukum/subtitler/provider"
)

const (
	SystemPrompt = "You are a very helpful and talented translator who can translate all languages and srt files."

	userPromptFormat = "Could you please translate the .srt text below to %s? Do not add any comments of yours only the translation. " +
		"Please do not change the timestamps and structure of the file.\n<Transcription>%s</Transcription>"
)

// Request is one translation job.
type Request struct {
	Transcript string
	Language   string
}

// UserPrompt builds the instruction sent with the transcript.
func UserPrompt(transcript, language string) string {
	return fmt.Sprintf(userPromptFormat, DisplayLanguage(language), transcript)
}

// LLMTranslator sends the transcript to a chat model with a fixed prompt.
// The reply is returned as is; its structure is not checked.
type LLMTranslator struct {
	rr provider.RequestResponse[Request, string]
}

// NewLLMTranslator wraps any chat completion provider, usually an
// *llm.Adapter with middleware applied.
func NewLLMTranslator(completer provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse]) *LLMTranslator {
	rr := provider.Adapt(completer, "translation",
		func(_ context.Context, in Request) (llm.CompletionRequest, error) {
			return llm.CompletionRequest{
				SystemPrompt: SystemPrompt,
				Messages:     []llm.Message{{Role: llm.RoleUser, Content: UserPrompt(in.Transcript, in.Language)}},
			}, nil
		},
		func(out llm.CompletionResponse) (string, error) {
			return out.Content, nil
		},
	)
	return &LLMTranslator{rr: rr}
}

func (t *LLMTranslator) Name() string { return t.rr.Name() }

func (t *LLMTranslator) IsAvailable(ctx context.Context) bool { return t.rr.IsAvailable(ctx) }

// Translate returns the model's translation of transcript into language.
func (t *LLMTranslator) Translate(ctx context.Context, transcript, language string) (string, error) {
	return t.rr.Execute(ctx, Request{Transcript: transcript, Language: language})
}
