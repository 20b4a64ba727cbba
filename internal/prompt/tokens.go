package prompt

import "github.com/pkoukk/tiktoken-go"

// encodingName matches the teacher-adjacent siftrank provider's choice:
// cl100k_base is the encoding Claude and GPT-4-class models both tokenize
// close enough to for a pre-flight size estimate; this is an estimate, not
// a provider-exact count, since neither Claude adapter exposes its own
// tokenizer.
const encodingName = "cl100k_base"

var estimator, estimatorErr = tiktoken.GetEncoding(encodingName)

// EstimateTokens approximates the token count of a composed prompt, used
// by cmd/persuade's --dry-run output and by callers that want to warn
// before sending an oversized prompt. Falls back to a byte/4 approximation
// if the encoding failed to load, which only happens on a broken install.
func EstimateTokens(text string) int {
	if estimatorErr != nil || estimator == nil {
		return len(text) / 4
	}
	return len(estimator.Encode(text, nil, nil))
}
