package playback

import (
	"testing"
	"time"

	"github.com/room4-2/converselink/pcm"
)

// fakeSink records scheduled frames without any device I/O.
type fakeSink struct {
	played  [][]int16
	flushes int
}

func (s *fakeSink) Play(samples []int16) error {
	s.played = append(s.played, samples)
	return nil
}

func (s *fakeSink) Flush() { s.flushes++ }

// newStepPlayer returns a player whose frame timer is recorded instead of
// armed, so tests drive completion by calling Finish explicitly.
func newStepPlayer(sink *fakeSink) (*Player, *[]time.Duration) {
	p := NewPlayer(pcm.Voice, sink)
	durations := &[]time.Duration{}
	p.arm = func(d time.Duration) {
		*durations = append(*durations, d)
	}
	return p, durations
}

func frameOf(samples int, value int16) []byte {
	s := make([]int16, samples)
	for i := range s {
		s[i] = value
	}
	return pcm.Bytes(s)
}

func TestGaplessOrdering(t *testing.T) {
	sink := &fakeSink{}
	p, durations := newStepPlayer(sink)

	counts := []int{2400, 4800, 1200}
	for i, n := range counts {
		p.Enqueue(frameOf(n, int16(i+1)))
	}

	// First frame starts immediately; the rest wait for completion.
	if len(sink.played) != 1 {
		t.Fatalf("played=%d after enqueue", len(sink.played))
	}
	p.Finish(p.Gen())
	p.Finish(p.Gen())
	if len(sink.played) != 3 {
		t.Fatalf("played=%d after two completions", len(sink.played))
	}

	// FIFO order.
	for i, n := range counts {
		if len(sink.played[i]) != n {
			t.Errorf("frame %d: %d samples, want %d", i, len(sink.played[i]), n)
		}
		if sink.played[i][0] != int16(i+1) {
			t.Errorf("frame %d out of order (first sample %d)", i, sink.played[i][0])
		}
	}

	// Total scheduled duration equals the sum of individual durations.
	var total time.Duration
	for _, d := range *durations {
		total += d
	}
	want := pcm.Voice.Duration(2400 + 4800 + 1200)
	if total != want {
		t.Errorf("total scheduled=%v want=%v", total, want)
	}
}

func TestSpeakingTransitions(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newStepPlayer(sink)

	var transitions []bool
	drained := 0
	p.OnSpeaking = func(speaking bool) { transitions = append(transitions, speaking) }
	p.OnDrained = func() { drained++ }

	p.Enqueue(frameOf(2400, 1))
	p.Enqueue(frameOf(2400, 2))
	p.Finish(p.Gen())
	p.Finish(p.Gen())

	// speaking=true per pumped frame, one false at drain.
	want := []bool{true, true, false}
	if len(transitions) != len(want) {
		t.Fatalf("transitions=%v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions=%v want=%v", transitions, want)
		}
	}
	if drained != 1 {
		t.Errorf("drained=%d", drained)
	}
}

func TestCancelAll(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newStepPlayer(sink)

	var speakingFalse bool
	p.OnSpeaking = func(speaking bool) {
		if !speaking {
			speakingFalse = true
		}
	}

	p.Enqueue(frameOf(2400, 1))
	p.Enqueue(frameOf(2400, 2))
	p.CancelAll()

	if p.QueueLen() != 0 {
		t.Errorf("queue len=%d after cancel", p.QueueLen())
	}
	if sink.flushes != 1 {
		t.Errorf("flushes=%d", sink.flushes)
	}
	if p.Playing() {
		t.Error("still playing after cancel")
	}
	// Speaking is not reset synchronously; the pending timer handles it.
	if speakingFalse {
		t.Error("speaking flipped false synchronously by CancelAll")
	}

	// The timer left running by CancelAll lands in Finish and clears it.
	p.Finish(p.Gen())
	if !speakingFalse {
		t.Error("speaking not cleared after pending timer fires")
	}
	if len(sink.played) != 1 {
		t.Errorf("played=%d, cancelled frames must not play", len(sink.played))
	}
}

func TestClearQueueKeepsInFlightFrame(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newStepPlayer(sink)

	p.Enqueue(frameOf(2400, 1))
	p.Enqueue(frameOf(2400, 2))
	p.ClearQueue()

	if !p.Playing() {
		t.Error("in-flight frame should keep playing")
	}
	if sink.flushes != 0 {
		t.Errorf("flushes=%d, clear_audio_buffer must not cut audible playback", sink.flushes)
	}
	if p.QueueLen() != 0 {
		t.Errorf("queue len=%d", p.QueueLen())
	}
}

func TestZeroLengthFrameIgnored(t *testing.T) {
	sink := &fakeSink{}
	p, durations := newStepPlayer(sink)

	p.Enqueue(nil)
	p.Enqueue([]byte{})

	if p.Playing() || len(sink.played) != 0 || len(*durations) != 0 {
		t.Error("zero-length frame must be a no-op")
	}
}

func TestRealTimerCompletion(t *testing.T) {
	sink := &fakeSink{}
	p := NewPlayer(pcm.Voice, sink)

	done := make(chan uint64, 4)
	p.OnFrameDone = func(gen uint64) { done <- gen }

	// 240 samples at 24kHz is 10ms.
	p.Enqueue(frameOf(240, 1))
	select {
	case gen := <-done:
		p.Finish(gen)
	case <-time.After(time.Second):
		t.Fatal("frame timer did not fire")
	}
	if p.Playing() {
		t.Error("still playing after single frame finished")
	}
}

func TestStaleCompletionAfterCancel(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newStepPlayer(sink)

	var transitions []bool
	drained := 0
	p.OnSpeaking = func(speaking bool) { transitions = append(transitions, speaking) }
	p.OnDrained = func() { drained++ }

	// Frame A is cancelled mid-flight; its completion is still in transit
	// when frame B starts.
	p.Enqueue(frameOf(2400, 1))
	staleGen := p.Gen()
	p.CancelAll()
	p.Enqueue(frameOf(2400, 2))

	p.Finish(staleGen)
	if !p.Playing() {
		t.Error("stale completion marked the player idle while a frame is in flight")
	}
	if drained != 0 {
		t.Errorf("drained=%d, stale completion must not report a drain", drained)
	}

	// A third frame must wait for B's real completion, not pump early.
	p.Enqueue(frameOf(2400, 3))
	if len(sink.played) != 2 {
		t.Fatalf("played=%d, frames overlapped after stale completion", len(sink.played))
	}

	p.Finish(p.Gen())
	p.Finish(p.Gen())
	if len(sink.played) != 3 || drained != 1 {
		t.Errorf("played=%d drained=%d after real completions", len(sink.played), drained)
	}
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	sink := &fakeSink{}
	p, _ := newStepPlayer(sink)
	p.MaxBuffered = 10000 // two 4800-byte frames

	p.Enqueue(frameOf(2400, 1)) // pumped immediately, leaves the queue
	p.Enqueue(frameOf(2400, 2))
	p.Enqueue(frameOf(2400, 3))
	p.Enqueue(frameOf(2400, 4)) // over the cap, dropped

	if p.QueueLen() != 2 {
		t.Fatalf("queue len=%d want 2", p.QueueLen())
	}
	p.Finish(p.Gen())
	p.Finish(p.Gen())
	p.Finish(p.Gen())
	if len(sink.played) != 3 {
		t.Errorf("played=%d, dropped frame must never play", len(sink.played))
	}
	if sink.played[2][0] != 3 {
		t.Errorf("last played frame starts with %d, want 3", sink.played[2][0])
	}
}
