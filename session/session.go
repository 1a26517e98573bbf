// Package session is the coordination core of the conversation client. It
// owns the session flags, the ordered message timeline and the widget replay
// queue, consumes events from the voice-activity monitor, the transport and
// the playback pipeline, and emits outbound envelopes.
package session

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/room4-2/converselink/messages"
	"github.com/room4-2/converselink/playback"
	"github.com/room4-2/converselink/widgets"
)

const defaultThinkingDebounce = 800 * time.Millisecond

// Outbound is the transport surface the session writes to.
type Outbound interface {
	SendAudio(frame []byte) error
	SendEnvelope(v any) error
}

// Capturer is the microphone pipeline surface the session toggles.
type Capturer interface {
	Start() error
	Stop()
}

// Flags is a snapshot of the session's boolean state. The flags are kept
// separate rather than folded into one enum because mode, turn-taking and
// mic power vary independently.
type Flags struct {
	MicEnabled          bool
	VoiceMode           bool
	UserSpeaking        bool
	AgentSpeaking       bool
	AgentThinking       bool
	AudioGenerationDone bool
}

// Session is the state machine for one live conversation. All mutation
// happens through Handle, either directly (tests) or via the Run loop fed by
// the public methods and the producers' callbacks.
type Session struct {
	ID string

	// OnMessage fires for every appended timeline entry.
	OnMessage func(Message)
	// OnWidget fires when a widget becomes visible, immediately or after
	// replay.
	OnWidget func(w widgets.Payload)

	conn    Outbound
	capture Capturer
	player  *playback.Player

	thinkingDebounce time.Duration

	events  chan Event
	running atomic.Bool

	mu          sync.RWMutex
	flags       Flags
	timeline    []Message
	widgetQueue []Message

	thinkingTimer *time.Timer
	thinkingGen   uint64
}

// New wires a session to its collaborators. The player's completion and
// drain callbacks are claimed by the session; don't set them elsewhere.
func New(conn Outbound, capture Capturer, player *playback.Player, thinkingDebounce time.Duration) *Session {
	if thinkingDebounce <= 0 {
		thinkingDebounce = defaultThinkingDebounce
	}
	s := &Session{
		ID:               uuid.New().String(),
		conn:             conn,
		capture:          capture,
		player:           player,
		thinkingDebounce: thinkingDebounce,
		events:           make(chan Event, 256),
	}
	player.OnFrameDone = func(gen uint64) { s.Post(PlaybackFinished{Gen: gen}) }
	player.OnSpeaking = s.setAgentSpeaking
	player.OnDrained = s.flushWidgets
	return s
}

// Run drives the event loop until ctx is cancelled. All producers post into
// the loop, so flags, timeline and queues are only ever mutated here.
func (s *Session) Run(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.Handle(ev)
		}
	}
}

// Post routes an event into the loop, or handles it inline when the loop is
// not running (tests drive Handle directly).
func (s *Session) Post(ev Event) {
	if s.running.Load() {
		s.events <- ev
		return
	}
	s.Handle(ev)
}

// ToggleMic flips the mic-enabled flag, stopping capture when turning off.
func (s *Session) ToggleMic() { s.Post(toggleMic{}) }

// ToggleVoiceMode flips between voice and text mode. Leaving voice mode also
// turns the mic off; in-flight playback is unaffected.
func (s *Session) ToggleVoiceMode() { s.Post(toggleVoiceMode{}) }

// StartAgent begins the conversation: voice mode on, mic on.
func (s *Session) StartAgent() { s.Post(startAgent{}) }

// SendText appends a user message to the timeline optimistically and
// transmits it.
func (s *Session) SendText(body string) { s.Post(sendText{body: body}) }

// SendAction transmits a tool invocation. The timeline is not touched.
func (s *Session) SendAction(tool string, params any) {
	s.Post(sendAction{tool: tool, params: params})
}

// Flags returns a snapshot of the session flags.
func (s *Session) Flags() Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

// Timeline returns a copy of the conversation timeline in order.
func (s *Session) Timeline() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.timeline...)
}

// QueuedWidgets returns the number of widgets held for replay.
func (s *Session) QueuedWidgets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.widgetQueue)
}

// Handle applies one event to the state machine. It must not be called
// concurrently with itself; Run guarantees that, tests call it from a single
// goroutine.
func (s *Session) Handle(ev Event) {
	switch ev := ev.(type) {
	case SpeechStart:
		s.handleSpeechStart()
	case SpeechEnd:
		s.setFlag(func(f *Flags) { f.UserSpeaking = false })
	case EnvelopeReceived:
		s.handleEnvelope(ev.Envelope)
	case AudioReceived:
		s.handleAudio(ev.Frame)
	case PlaybackFinished:
		s.player.Finish(ev.Gen)
	case ThinkingDone:
		s.handleThinkingDone(ev.Gen)
	case toggleMic:
		s.handleToggleMic()
	case toggleVoiceMode:
		s.handleToggleVoiceMode()
	case startAgent:
		s.handleStartAgent()
	case sendText:
		s.handleSendText(ev.body)
	case sendAction:
		s.handleSendAction(ev.tool, ev.params)
	}
}

// handleSpeechStart is the barge-in path. With the mic off the edge event is
// a detector artifact and must not cancel playback.
func (s *Session) handleSpeechStart() {
	if !s.Flags().MicEnabled {
		s.setFlag(func(f *Flags) { f.UserSpeaking = false })
		return
	}
	s.setFlag(func(f *Flags) { f.UserSpeaking = true })
	s.player.CancelAll()
	log.Printf("🎙️ [%s] User speaking, playback cancelled", s.shortID())
}

func (s *Session) handleEnvelope(env *messages.Envelope) {
	switch env.Kind() {
	case messages.KindAction:
		s.handleAction(env.Content)
	case messages.KindWidget:
		w := widgets.Parse(env.Content)
		msg := newWidgetMessage(w)
		if s.player.Playing() {
			// Held back so the widget surfaces with the audio it accompanies.
			s.mu.Lock()
			s.widgetQueue = append(s.widgetQueue, msg)
			s.mu.Unlock()
			return
		}
		s.append(msg)
		s.notifyWidget(w)
	case messages.KindPlain:
		// Plain content is never queued; it is not time-correlated with
		// playback the way widgets are.
		sender := SenderAgent
		if env.User != "" {
			sender = Sender(env.User)
		}
		s.append(newPlainMessage(sender, env.Content))
	}
}

func (s *Session) handleAction(content string) {
	switch content {
	case messages.ActionStartedThinking:
		s.cancelThinkingTimer()
		s.setFlag(func(f *Flags) {
			f.AgentThinking = true
			f.AudioGenerationDone = false
		})
	case messages.ActionEndedThinking:
		// Debounced so consecutive thinking bursts don't flicker.
		s.armThinkingTimer()
	case messages.ActionClearAudio:
		// Server-initiated interruption: drop unplayed audio but let the
		// audible frame finish, unlike barge-in.
		s.player.ClearQueue()
		log.Printf("🔇 [%s] Audio buffer cleared by orchestrator", s.shortID())
	case messages.ActionAudioDone:
		s.setFlag(func(f *Flags) { f.AudioGenerationDone = true })
	}
}

// handleAudio forwards an inbound frame to playback. Frames arriving while
// the user speaks are dropped here, at enqueue, so nothing queued mid
// barge-in can reach the pump later.
func (s *Session) handleAudio(frame []byte) {
	if s.Flags().UserSpeaking {
		return
	}
	s.player.Enqueue(frame)
}

func (s *Session) handleThinkingDone(gen uint64) {
	s.mu.Lock()
	stale := gen != s.thinkingGen
	s.mu.Unlock()
	if stale {
		return
	}
	s.setFlag(func(f *Flags) { f.AgentThinking = false })
}

func (s *Session) handleToggleMic() {
	if s.Flags().MicEnabled {
		s.setFlag(func(f *Flags) {
			f.MicEnabled = false
			f.UserSpeaking = false
		})
		s.capture.Stop()
		return
	}
	if err := s.capture.Start(); err != nil {
		log.Printf("❌ [%s] Microphone unavailable: %v", s.shortID(), err)
		return
	}
	s.setFlag(func(f *Flags) { f.MicEnabled = true })
}

func (s *Session) handleToggleVoiceMode() {
	leavingVoice := s.Flags().VoiceMode
	s.setFlag(func(f *Flags) { f.VoiceMode = !f.VoiceMode })
	if leavingVoice && s.Flags().MicEnabled {
		// Text mode implies no capture.
		s.setFlag(func(f *Flags) {
			f.MicEnabled = false
			f.UserSpeaking = false
		})
		s.capture.Stop()
	}
}

func (s *Session) handleStartAgent() {
	s.setFlag(func(f *Flags) { f.VoiceMode = true })
	if err := s.capture.Start(); err != nil {
		log.Printf("❌ [%s] Microphone unavailable: %v", s.shortID(), err)
		return
	}
	s.setFlag(func(f *Flags) { f.MicEnabled = true })
	log.Printf("✅ [%s] Session started", s.shortID())
}

func (s *Session) handleSendText(body string) {
	s.append(newPlainMessage(SenderUser, body))
	if err := s.conn.SendEnvelope(messages.NewTextEnvelope(body)); err != nil {
		log.Printf("❌ [%s] Failed to send text: %v", s.shortID(), err)
	}
}

func (s *Session) handleSendAction(tool string, params any) {
	modality := messages.ModalityText
	if s.Flags().VoiceMode {
		modality = messages.ModalityAudio
	}
	env, err := messages.NewActionEnvelope(tool, params, modality)
	if err != nil {
		log.Printf("❌ [%s] Failed to encode action %q: %v", s.shortID(), tool, err)
		return
	}
	if err := s.conn.SendEnvelope(env); err != nil {
		log.Printf("❌ [%s] Failed to send action %q: %v", s.shortID(), tool, err)
	}
}

// flushWidgets replays held widgets, in arrival order, once playback has
// drained. Widgets queued before a barge-in survive it and surface here.
func (s *Session) flushWidgets() {
	s.mu.Lock()
	queued := s.widgetQueue
	s.widgetQueue = nil
	s.mu.Unlock()

	for _, msg := range queued {
		s.append(msg)
		s.notifyWidget(msg.Widget)
	}
}

func (s *Session) armThinkingTimer() {
	s.mu.Lock()
	if s.thinkingTimer != nil {
		s.thinkingTimer.Stop()
	}
	s.thinkingGen++
	gen := s.thinkingGen
	s.thinkingTimer = time.AfterFunc(s.thinkingDebounce, func() {
		s.Post(ThinkingDone{Gen: gen})
	})
	s.mu.Unlock()
}

// cancelThinkingTimer invalidates any pending false-transition. Bumping the
// generation also neutralizes a timer that already fired but whose event has
// not been handled yet.
func (s *Session) cancelThinkingTimer() {
	s.mu.Lock()
	if s.thinkingTimer != nil {
		s.thinkingTimer.Stop()
		s.thinkingTimer = nil
	}
	s.thinkingGen++
	s.mu.Unlock()
}

func (s *Session) setAgentSpeaking(speaking bool) {
	s.setFlag(func(f *Flags) { f.AgentSpeaking = speaking })
}

func (s *Session) setFlag(mutate func(*Flags)) {
	s.mu.Lock()
	mutate(&s.flags)
	s.mu.Unlock()
}

func (s *Session) append(msg Message) {
	s.mu.Lock()
	s.timeline = append(s.timeline, msg)
	s.mu.Unlock()
	if s.OnMessage != nil {
		s.OnMessage(msg)
	}
}

func (s *Session) notifyWidget(w widgets.Payload) {
	if s.OnWidget != nil {
		s.OnWidget(w)
	}
}

func (s *Session) shortID() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}
