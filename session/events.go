package session

import "github.com/room4-2/converselink/messages"

// Event is a single input to the session state machine. Every asynchronous
// producer (VAD, transport, playback timers, user commands) is funneled
// through Handle as one of these, so the transition table is testable
// without a live device or socket.
type Event interface {
	isEvent()
}

// SpeechStart is the VAD edge event for confirmed user speech.
type SpeechStart struct{}

// SpeechEnd is the VAD edge event for the end of an utterance. Captured is
// informational; the orchestrator runs its own end-of-utterance detection.
type SpeechEnd struct {
	Captured []int16
}

// EnvelopeReceived carries an inbound text envelope from the transport.
type EnvelopeReceived struct {
	Envelope *messages.Envelope
}

// AudioReceived carries an inbound binary PCM frame from the transport.
type AudioReceived struct {
	Frame []byte
}

// PlaybackFinished reports that a playback frame's duration has elapsed.
// Gen identifies which frame; the player rejects completions superseded by a
// newer frame.
type PlaybackFinished struct {
	Gen uint64
}

// ThinkingDone is posted by the thinking-debounce timer. Gen guards against
// a stale timer firing after a newer agent_started_thinking.
type ThinkingDone struct {
	Gen uint64
}

// Command events posted by the public methods.

type toggleMic struct{}

type toggleVoiceMode struct{}

type startAgent struct{}

type sendText struct {
	body string
}

type sendAction struct {
	tool   string
	params any
}

func (SpeechStart) isEvent()      {}
func (SpeechEnd) isEvent()        {}
func (EnvelopeReceived) isEvent() {}
func (AudioReceived) isEvent()    {}
func (PlaybackFinished) isEvent() {}
func (ThinkingDone) isEvent()     {}
func (toggleMic) isEvent()        {}
func (toggleVoiceMode) isEvent()  {}
func (startAgent) isEvent()       {}
func (sendText) isEvent()         {}
func (sendAction) isEvent()       {}
