package conversation

import (
	"encoding/json"
	"strings"
)

// ExtractionKind classifies a completion as plain chat or a structured
// payload.
type ExtractionKind string

const (
	PlainChat         ExtractionKind = "plain_chat"
	StructuredPayload ExtractionKind = "structured_payload"
)

// Extraction is the result of scanning one completion.
type Extraction struct {
	Kind ExtractionKind
	// Text is the full completion, shown verbatim on the chat path.
	Text string
	// Payload is the raw JSON span when Kind is StructuredPayload.
	Payload string
}

// ExtractIntent scans a completion for an embedded JSON object. The scan is
// deliberately tolerant: the span from the first '{' to the last '}' is
// taken even when wrapped in prose or code fences, because the gateway's
// output format is not contractually fixed. A span that fails to parse
// downgrades the whole completion to plain chat, shown unchanged.
func ExtractIntent(text string) Extraction {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return Extraction{Kind: PlainChat, Text: text}
	}

	span := text[start : end+1]
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &probe); err != nil {
		return Extraction{Kind: PlainChat, Text: text}
	}

	return Extraction{Kind: StructuredPayload, Text: text, Payload: span}
}
