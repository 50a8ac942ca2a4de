package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// tokenizerModel selects the BPE encoding used for prompt budgeting. Counts
// only need to be stable across calls; they do not have to match the serving
// model's tokenizer exactly.
const tokenizerModel = "gpt-4-0613"

// NumTokens returns the token count of text under the budgeting encoding.
func NumTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel(tokenizerModel)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
