// Package review builds editorial prompts, calls the model, and parses the
// structured critique that comes back. It has no side effects; persistence
// belongs to the store.
package review

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"redline/pkg/inference"
	"redline/pkg/schema"
	"redline/pkg/utils"
)

// Requester runs one chapter through one persona's review.
type Requester struct {
	inf      inference.Inferencer
	provider string
}

func NewRequester(inf inference.Inferencer, provider string) *Requester {
	if provider == "" {
		provider = "llm"
	}
	return &Requester{inf: inf, provider: provider}
}

// Request reviews the given chapter text. It returns *UpstreamError when the
// provider call fails and *ParseError when the response is not review JSON.
func (r *Requester) Request(ctx context.Context, chapterNum int, title, text, persona string) (*schema.Review, error) {
	p := PersonaFor(persona)
	system := BuildSystemPrompt(p)
	user, omitted := BuildUserPrompt(chapterNum, title, text)
	if omitted > 0 {
		log.Warn("chapter text truncated for review", "chapter", chapterNum, "omitted", omitted)
	}

	totalChars := int64(len(system) + len(user))
	if tokens, err := utils.NumTokens(system + user); err == nil {
		log.Debug("requesting review", "chapter", chapterNum, "persona", p.Name, "chars", totalChars, "tokens", tokens)
	} else {
		log.Debug("requesting review", "chapter", chapterNum, "persona", p.Name, "chars", totalChars)
	}

	params := &openai.ChatCompletionNewParams{
		MaxCompletionTokens: openai.Int(8192),
		Temperature:         openai.Float(0.4),
		ResponseFormat:      schema.StructuredOutputsResponseFormat(),
	}

	out, err := r.inf.Infer(ctx, params, system, user)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &UpstreamError{Provider: r.provider, Status: apiErr.StatusCode, Err: err}
		}
		return nil, &UpstreamError{Provider: r.provider, Err: err}
	}

	resp, err := Parse(out)
	if err != nil {
		return nil, err
	}

	rev := Normalize(chapterNum, p.Name, resp)
	log.Info("review complete", "chapter", chapterNum, "persona", p.Name, "score", float64(rev.Score), "suggestions", len(rev.Suggestions))
	return rev, nil
}
