// Package playback owns the ordered queue of received agent audio frames and
// plays them back to back with no gap, with hard cancellation for barge-in.
package playback

import (
	"log"
	"sync"
	"time"

	"github.com/room4-2/converselink/pcm"
)

// defaultMaxBuffered caps the queued audio at 5MB, a little over 100 seconds
// at the voice rate.
const defaultMaxBuffered = 5 * 1024 * 1024

// Sink is where decoded frames are scheduled for audible playback. Play must
// schedule and return without waiting for the frame to finish; the Player
// tracks completion by frame duration.
type Sink interface {
	Play(samples []int16) error
	// Flush drops anything scheduled but not yet played.
	Flush()
}

// Player drives the playback queue. Enqueue, Pump, Finish and CancelAll are
// expected to be called from a single event loop; completion is reported via
// OnFrameDone rather than a blocking wait, so the loop never stalls while a
// frame plays.
type Player struct {
	format pcm.Format
	sink   Sink

	// OnFrameDone fires when the in-flight frame's duration has elapsed,
	// carrying that frame's generation. The receiver must route it back to
	// the loop and call Finish with the same generation.
	OnFrameDone func(gen uint64)
	// OnSpeaking reports agentSpeaking transitions.
	OnSpeaking func(speaking bool)
	// OnDrained fires when the queue has played to empty.
	OnDrained func()

	// MaxBuffered caps the total bytes held in the queue; frames arriving
	// past the cap are dropped with a warning instead of growing the queue
	// without bound. Zero means no cap.
	MaxBuffered int

	queue frameQueue

	mu      sync.Mutex
	playing bool
	gen     uint64 // bumped per pumped frame; stale completions carry an older value

	timer *time.Timer // single-slot frame timer
	arm   func(d time.Duration)
}

// NewPlayer creates a Player for frames at the given format.
func NewPlayer(format pcm.Format, sink Sink) *Player {
	p := &Player{format: format, sink: sink, MaxBuffered: defaultMaxBuffered}
	p.arm = p.armTimer
	return p
}

// Enqueue appends a frame. Zero-length frames are silently ignored, and the
// caller is responsible for dropping frames that arrive while the user is
// speaking (barge-in drops at enqueue so nothing slips through to the pump).
func (p *Player) Enqueue(frame []byte) {
	if len(frame) == 0 {
		return
	}
	if p.MaxBuffered > 0 && p.queue.bytes()+len(frame) > p.MaxBuffered {
		log.Printf("⚠️ Playback queue full (%d bytes buffered), dropping %d-byte frame",
			p.queue.bytes(), len(frame))
		return
	}
	p.queue.push(frame)
	p.Pump()
}

// Pump starts the next frame if nothing is in flight. It marks the agent as
// speaking and arms a timer for the frame's exact duration; the timer either
// gets superseded by the next frame or flips agentSpeaking back off.
func (p *Player) Pump() {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return
	}
	frame := p.queue.pop()
	if frame == nil {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.gen++
	p.mu.Unlock()

	samples := pcm.Samples(frame)
	if p.OnSpeaking != nil {
		p.OnSpeaking(true)
	}
	p.sink.Play(samples)
	p.arm(p.format.Duration(len(samples)))
}

// Finish marks the frame of the given generation as done and either pumps
// the next frame or, when the queue has drained, clears the speaking state
// and reports the drain. Also the landing point for a timer left running by
// CancelAll. A completion whose generation predates the current frame is a
// fired-but-unprocessed timer that a newer Pump already superseded; it must
// not touch playback state or a frame still audible would be marked idle.
func (p *Player) Finish(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.playing = false
	empty := p.queue.len() == 0
	p.mu.Unlock()

	if !empty {
		p.Pump()
		return
	}
	if p.OnSpeaking != nil {
		p.OnSpeaking(false)
	}
	if p.OnDrained != nil {
		p.OnDrained()
	}
}

// CancelAll stops and discards the actively-playing frame and clears the
// queue. The speaking state is not reset here: the already-armed timer still
// fires and Finish clears it, which avoids a visible flicker when playback
// resumes immediately. If a new frame pumps before that timer lands, the
// bumped generation makes the old completion stale and Finish drops it.
func (p *Player) CancelAll() {
	p.queue.clear()
	p.sink.Flush()
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

// ClearQueue drops buffered-but-unplayed frames while letting the in-flight
// frame finish. Used for server-initiated interruption (clear_audio_buffer),
// which unlike barge-in does not cut audible playback.
func (p *Player) ClearQueue() {
	p.queue.clear()
}

// Playing reports whether a frame is currently in flight.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// QueueLen returns the number of frames waiting behind the in-flight one.
func (p *Player) QueueLen() int {
	return p.queue.len()
}

// Gen returns the generation of the most recently pumped frame. A completion
// delivered to Finish is only honored when it carries this value.
func (p *Player) Gen() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

func (p *Player) armTimer(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	gen := p.gen
	p.timer = time.AfterFunc(d, func() {
		if p.OnFrameDone != nil {
			p.OnFrameDone(gen)
		}
	})
}
