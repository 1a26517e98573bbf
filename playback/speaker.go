package playback

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const speakerFramesPerBuffer = 1024

// Speaker plays scheduled frames on the default output device. Writes to the
// device happen on an internal goroutine so Play never blocks the caller.
type Speaker struct {
	stream *portaudio.Stream
	buf    []int16

	frames chan []int16
	flush  chan struct{}
	done   chan struct{}

	closeOnce sync.Once
}

// NewSpeaker opens the default output device at the given rate and starts
// the writer goroutine.
func NewSpeaker(sampleRate int) (*Speaker, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize audio: %w", err)
	}

	s := &Speaker{
		buf:    make([]int16, speakerFramesPerBuffer),
		frames: make(chan []int16, 64),
		flush:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), speakerFramesPerBuffer, &s.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open output device: %w", err)
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start output device: %w", err)
	}

	go s.writeLoop()
	return s, nil
}

// Play schedules a frame for gapless playback.
func (s *Speaker) Play(samples []int16) error {
	select {
	case s.frames <- samples:
		return nil
	case <-s.done:
		return ErrSpeakerClosed
	default:
		log.Printf("⚠️ Speaker queue full, dropping frame (%d samples)", len(samples))
		return nil
	}
}

// Flush drops everything scheduled but not yet played, including the
// remainder of the frame currently being written to the device.
func (s *Speaker) Flush() {
	for {
		select {
		case <-s.frames:
		default:
			select {
			case s.flush <- struct{}{}:
			default:
			}
			return
		}
	}
}

// Close stops the writer goroutine and releases the device.
func (s *Speaker) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.stream.Stop()
		s.stream.Close()
		portaudio.Terminate()
	})
	return nil
}

func (s *Speaker) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.flush:
			// Stale flush signal, nothing in flight.
		case samples := <-s.frames:
			s.writeFrame(samples)
		}
	}
}

func (s *Speaker) writeFrame(samples []int16) {
	for off := 0; off < len(samples); off += len(s.buf) {
		select {
		case <-s.done:
			return
		case <-s.flush:
			return
		default:
		}

		n := copy(s.buf, samples[off:])
		for i := n; i < len(s.buf); i++ {
			s.buf[i] = 0
		}
		if err := s.stream.Write(); err != nil {
			log.Printf("⚠️ Output device write failed: %v", err)
			return
		}
	}
}
