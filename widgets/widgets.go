// Package widgets parses the structured widget payloads carried inside
// widget envelopes. Rendering is the presentation layer's job; this package
// only guarantees the payload handed over is well formed.
package widgets

import (
	"log"

	"github.com/bytedance/sonic"
)

// Payload is a widget as it arrives from the orchestrator: a type
// discriminator plus a JSON string of details the renderer parses.
type Payload struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

// Parse decodes a widget envelope's content. Malformed JSON is non-fatal:
// it is logged and the details fall back to an empty object so downstream
// rendering keeps working.
func Parse(content string) Payload {
	var p Payload
	if err := sonic.UnmarshalString(content, &p); err != nil {
		log.Printf("⚠️ Invalid widget JSON, dropping details: %v", err)
		return Payload{Details: "{}"}
	}
	if p.Details == "" {
		p.Details = "{}"
	}
	return p
}

// DecodeDetails unmarshals the double-encoded details string into v.
func DecodeDetails(p Payload, v any) error {
	return sonic.UnmarshalString(p.Details, v)
}
