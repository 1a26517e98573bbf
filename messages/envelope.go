// Package messages defines the JSON envelopes exchanged with the
// orchestrator over the transport's text frames.
package messages

import "github.com/bytedance/sonic"

// Envelope types
const (
	TypeWidget = "widget"
	TypeAction = "action"
	TypeText   = "text"
)

// Modalities for outbound action envelopes
const (
	ModalityAudio = "audio"
	ModalityText  = "text"
)

// Action contents the orchestrator sends. Anything else inside an action
// envelope is ignored.
const (
	ActionStartedThinking = "agent_started_thinking"
	ActionEndedThinking   = "agent_ended_thinking"
	ActionClearAudio      = "clear_audio_buffer"
	ActionAudioDone       = "audio_generation_done"
)

// Envelope is an inbound text message from the orchestrator. For widgets,
// Content is itself a JSON string of {type, details}.
type Envelope struct {
	Type    string `json:"type"`
	User    string `json:"user,omitempty"`
	Content string `json:"content"`
}

// Kind classifies an envelope for dispatch.
type Kind int

const (
	KindPlain Kind = iota
	KindWidget
	KindAction
)

// Kind returns the envelope's classification. Unknown types are plain
// content.
func (e *Envelope) Kind() Kind {
	switch e.Type {
	case TypeWidget:
		return KindWidget
	case TypeAction:
		return KindAction
	default:
		return KindPlain
	}
}

// Decode parses an inbound text frame.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// TextEnvelope carries a user-typed or voice-transcribed message to the
// orchestrator.
type TextEnvelope struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// NewTextEnvelope creates an outbound text envelope.
func NewTextEnvelope(content string) *TextEnvelope {
	return &TextEnvelope{Type: TypeText, Content: content}
}

// ActionContent names a tool and its serialized parameters.
type ActionContent struct {
	Tool       string `json:"tool"`
	Parameters string `json:"parameters"`
}

// ActionEnvelope carries a tool invocation to the orchestrator.
type ActionEnvelope struct {
	Type     string        `json:"type"`
	Content  ActionContent `json:"content"`
	Modality string        `json:"modality"`
}

// NewActionEnvelope creates an outbound action envelope. parameters is
// serialized to a JSON string, matching what the orchestrator expects.
func NewActionEnvelope(tool string, parameters any, modality string) (*ActionEnvelope, error) {
	params, err := sonic.MarshalString(parameters)
	if err != nil {
		return nil, err
	}
	return &ActionEnvelope{
		Type:     TypeAction,
		Content:  ActionContent{Tool: tool, Parameters: params},
		Modality: modality,
	}, nil
}

// Encode serializes an outbound envelope for a text frame.
func Encode(v any) ([]byte, error) {
	return sonic.Marshal(v)
}
