// Package llm is the boundary to the external text-reasoning service. It
// owns all non-determinism: everything downstream of a successful Complete
// call may treat the returned payload as validated data.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Request bundles one task for the reasoning service: a prompt, an optional
// system preamble, and the expected output shape. A nil Shape means free-text
// generation; the caller parses the payload itself.
type Request struct {
	Task        string
	System      string
	Prompt      string
	Shape       *Shape
	Temperature float32
}

// Client abstracts reasoning-service providers.
type Client interface {
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

// StripCodeFence removes markdown code-fence artifacts some providers wrap
// around JSON payloads.
func StripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// DecodeInto strips fence markers, validates raw against shape when one is
// given, and unmarshals into v. Any parse or validation failure comes back
// as a MalformedResponseError, never as a bare json error.
func DecodeInto(shape *Shape, raw json.RawMessage, v any) error {
	cleaned := json.RawMessage(StripCodeFence(string(raw)))
	if shape != nil {
		if err := shape.Validate(cleaned); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(cleaned, v); err != nil {
		return &MalformedResponseError{Reason: "decode response", Raw: string(cleaned), Err: err}
	}
	return nil
}
