package vad

// A Monitor feeds microphone frames through a Detector and raises
// edge-triggered callbacks. A speech start is confirmed only after
// StartFrames consecutive speech frames, guarding against spurious blips;
// a speech end after EndFrames consecutive non-speech frames.
type Monitor struct {
	StartFrames int
	EndFrames   int

	// OnSpeechStart fires once when speech is confirmed.
	OnSpeechStart func()
	// OnSpeechEnd fires once when the utterance ends, with the audio
	// accumulated since the first frame of the confirmation run.
	OnSpeechEnd func(captured []int16)

	det      Detector
	speaking bool
	run      int
	silence  int
	pending  []int16
	captured []int16
}

// NewMonitor wraps det with default run lengths. startFrames <= 0 falls back
// to 3; end detection defaults to the same count.
func NewMonitor(det Detector, startFrames int) *Monitor {
	if startFrames <= 0 {
		startFrames = 3
	}
	return &Monitor{
		StartFrames: startFrames,
		EndFrames:   startFrames,
		det:         det,
	}
}

// Speaking reports whether the monitor is inside a confirmed utterance.
func (m *Monitor) Speaking() bool {
	return m.speaking
}

// Feed consumes one capture frame. Callbacks fire synchronously on the
// caller's goroutine.
func (m *Monitor) Feed(frame []int16) {
	speech := m.det.IsSpeech(frame)

	if !m.speaking {
		if !speech {
			m.run = 0
			m.pending = nil
			return
		}
		m.run++
		m.pending = append(m.pending, frame...)
		if m.run < m.StartFrames {
			return
		}
		m.speaking = true
		m.run = 0
		m.silence = 0
		m.captured = m.pending
		m.pending = nil
		if m.OnSpeechStart != nil {
			m.OnSpeechStart()
		}
		return
	}

	m.captured = append(m.captured, frame...)
	if speech {
		m.silence = 0
		return
	}
	m.silence++
	if m.silence < m.EndFrames {
		return
	}
	captured := m.captured
	m.speaking = false
	m.silence = 0
	m.captured = nil
	if m.OnSpeechEnd != nil {
		m.OnSpeechEnd(captured)
	}
}

// Reset drops any in-progress utterance without firing callbacks.
func (m *Monitor) Reset() {
	m.speaking = false
	m.run = 0
	m.silence = 0
	m.pending = nil
	m.captured = nil
	m.det.Reset()
}
