package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput reports that the model answered but its output did
// not conform to the requested JSON structure. It is distinguishable
// from transport failures so callers can decide whether a retry makes
// sense.
var ErrMalformedOutput = errors.New("llm returned non-conforming structured output")

// AnswerOutput is the structured result of an answer-generation call.
// Citations index into the retrieval result the prompt was built from.
type AnswerOutput struct {
	Answer    string `json:"answer"`
	Citations []int  `json:"citations"`
}

// ReformulatedOutput is the structured result of a question-reformulation call.
type ReformulatedOutput struct {
	Question string `json:"question"`
}

// CompleteJSON sends the request in JSON mode and decodes the model
// output into v. Markdown code fences around the payload are tolerated.
func CompleteJSON(ctx context.Context, p Provider, req CompletionRequest, v any) error {
	req.JSONMode = true

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return err
	}

	if err := DecodeJSON(resp.Content, v); err != nil {
		return err
	}
	return nil
}

// DecodeJSON parses a model response into v, stripping markdown code
// fences if present. A parse failure wraps ErrMalformedOutput.
func DecodeJSON(raw string, v any) error {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			// Remove first line (```json) and last line (```)
			start := 1
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			raw = strings.Join(lines[start:end], "\n")
		}
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}
