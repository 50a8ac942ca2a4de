package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// ReviewResponse is the shape the model is instructed to return. Acceptance
// state is deliberately absent; every parsed suggestion starts out pending.
type ReviewResponse struct {
	Score           Score              `json:"score" jsonschema_description:"Overall chapter quality score from 1.0 to 10.0"`
	Summary         string             `json:"summary" jsonschema_description:"Two to four sentence editorial summary of the chapter"`
	Acts            []ActNote          `json:"acts" jsonschema_description:"Per-act editorial notes in act order"`
	Suggestions     []ReviewSuggestion `json:"suggestions" jsonschema_description:"Localized text edits, most important first"`
	CharacterArcs   []ArcNote          `json:"character_arcs,omitempty" jsonschema_description:"Notes on how each significant character develops in this chapter"`
	ContinuityFlags []string           `json:"continuity_flags,omitempty" jsonschema_description:"Potential continuity problems against earlier chapters"`
}

// ReviewSuggestion is one proposed edit as the model emits it.
type ReviewSuggestion struct {
	ID          string `json:"id,omitempty" jsonschema_description:"Short identifier such as s1, s2"`
	ActNumber   int    `json:"actNumber,omitempty" jsonschema_description:"1-based act number the edit belongs to"`
	Type        string `json:"type" jsonschema:"enum=rewrite,enum=insert,enum=delete,enum=rephrase" jsonschema_description:"Kind of edit being proposed"`
	Original    string `json:"original" jsonschema_description:"Verbatim text from the chapter to be replaced, 500 characters at most"`
	Replacement string `json:"replacement" jsonschema_description:"Text that should replace the original span"`
	Reason      string `json:"reason" jsonschema_description:"One sentence explaining why the edit improves the chapter"`
}

var ChapterReviewSchema = generateSchema[ReviewResponse]()

func StructuredOutputsResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "chapter_review",
		Description: openai.String("Editorial review of one novel chapter with localized edit suggestions"),
		Schema:      ChapterReviewSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
