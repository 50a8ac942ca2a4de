package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Inferencer is the single capability the review pipeline needs from a model
// provider: send a prompt, get text back.
type Inferencer interface {
	Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}
