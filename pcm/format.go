package pcm

import "time"

// Format describes a fixed-rate mono 16-bit PCM stream. The capture side and
// the agent voice side each assume their own fixed rate; the two are never
// reconciled here.
type Format struct {
	SampleRate int
}

// Capture is the fixed rate for outbound microphone audio.
var Capture = Format{SampleRate: 16000}

// Voice is the fixed rate for inbound agent audio.
var Voice = Format{SampleRate: 24000}

// Duration returns the playback duration of the given number of samples.
func (f Format) Duration(sampleCount int) time.Duration {
	return time.Duration(sampleCount) * time.Second / time.Duration(f.SampleRate)
}

// FrameDuration returns the playback duration of a wire-form frame of the
// given byte length.
func (f Format) FrameDuration(byteCount int) time.Duration {
	return f.Duration(byteCount / 2)
}

// SamplesInDuration returns the number of samples spanning d.
func (f Format) SamplesInDuration(d time.Duration) int {
	return int(time.Duration(f.SampleRate) * d / time.Second)
}
