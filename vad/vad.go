// Package vad turns a continuous microphone stream into discrete
// speech-started / speech-stopped edge events for barge-in handling.
package vad

import "math"

// Detector classifies a single frame of mono PCM as speech or not. The
// underlying model is pluggable; the session core only consumes the edge
// events produced by a Monitor.
type Detector interface {
	IsSpeech(frame []int16) bool
	Reset()
}

// Default thresholds tuned for 16kHz mono capture frames.
const (
	DefaultSpeechThreshold  = 0.015
	DefaultSilenceThreshold = 0.008
)

// Energy is an RMS energy detector with hysteresis: a higher threshold to
// enter speech than to leave it, so the classification does not flicker at
// the boundary.
type Energy struct {
	SpeechThreshold  float64
	SilenceThreshold float64

	inSpeech bool
}

// NewEnergy returns an Energy detector with the default thresholds.
func NewEnergy() *Energy {
	return &Energy{
		SpeechThreshold:  DefaultSpeechThreshold,
		SilenceThreshold: DefaultSilenceThreshold,
	}
}

// IsSpeech classifies one frame. The hysteresis latch means the answer for a
// given frame depends on whether the previous frames were speech.
func (e *Energy) IsSpeech(frame []int16) bool {
	level := rms(frame)
	if e.inSpeech {
		if level < e.SilenceThreshold {
			e.inSpeech = false
		}
	} else {
		if level >= e.SpeechThreshold {
			e.inSpeech = true
		}
	}
	return e.inSpeech
}

// Reset clears the hysteresis latch.
func (e *Energy) Reset() {
	e.inSpeech = false
}

func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s) / 32768
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
