// Package capture acquires the microphone stream, resamples it to the fixed
// capture rate, and forwards fixed-size PCM frames to the transport and the
// voice-activity monitor.
package capture

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrDeviceUnavailable is returned when the platform denies or lacks a
// microphone. The pipeline never retries; the caller decides whether to call
// Start again.
var ErrDeviceUnavailable = errors.New("capture: no input device available")

// Source is a microphone device. Open acquires it once; Suspend/Resume mute
// and unmute without releasing it, so a mic toggle does not re-trigger the
// platform's permission flow.
type Source interface {
	Open(sampleRate, frameSize int) error
	Read() ([]int16, error)
	Suspend() error
	Resume() error
	Close() error
}

// Pipeline frames and resamples microphone audio. States: idle -> capturing
// -> idle; Stop suspends rather than tearing down.
type Pipeline struct {
	// OnFrame receives each fixed-size frame at the capture rate. Set before
	// Start; fires on the pipeline's read goroutine.
	OnFrame func(frame []int16)

	src         Source
	deviceRate  int
	captureRate int
	frameSize   int

	rs *resampler

	mu        sync.Mutex
	opened    bool
	capturing bool
	stop      chan struct{}
	done      chan struct{}
	pending   []int16
}

// NewPipeline creates a pipeline reading the device at deviceRate and
// emitting frameSize-sample frames at captureRate.
func NewPipeline(src Source, deviceRate, captureRate, frameSize int) *Pipeline {
	return &Pipeline{
		src:         src,
		deviceRate:  deviceRate,
		captureRate: captureRate,
		frameSize:   frameSize,
	}
}

// Start acquires the device on first use and begins producing frames. A
// denied or absent microphone surfaces as ErrDeviceUnavailable.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capturing {
		return nil
	}

	if !p.opened {
		if err := p.src.Open(p.deviceRate, p.frameSize); err != nil {
			return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
		if p.deviceRate != p.captureRate {
			rs, err := newResampler(p.deviceRate, p.captureRate)
			if err != nil {
				p.src.Close()
				return fmt.Errorf("failed to create resampler: %w", err)
			}
			p.rs = rs
		}
		p.opened = true
	}

	if err := p.src.Resume(); err != nil {
		return fmt.Errorf("failed to resume capture: %w", err)
	}

	p.capturing = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.readLoop(p.stop, p.done)
	log.Printf("🎤 Capture started (%dHz device -> %dHz, %d-sample frames)", p.deviceRate, p.captureRate, p.frameSize)
	return nil
}

// Stop mutes the stream and suspends frame production. The device stays
// acquired so a later Start resumes cheaply.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.capturing {
		p.mu.Unlock()
		return
	}
	p.capturing = false
	close(p.stop)
	done := p.done
	if err := p.src.Suspend(); err != nil {
		log.Printf("⚠️ Failed to suspend capture: %v", err)
	}
	p.mu.Unlock()

	// The read goroutine may be past its stop check, blocked in a device
	// read that suspending unblocks. Wait for it to drain out so a quick
	// restart cannot race it on the pending samples.
	<-done
	log.Printf("🎤 Capture stopped")
}

// Capturing reports whether frames are currently being produced.
func (p *Pipeline) Capturing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capturing
}

// Close releases the device.
func (p *Pipeline) Close() error {
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opened {
		return nil
	}
	p.opened = false
	return p.src.Close()
}

func (p *Pipeline) readLoop(stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		raw, err := p.src.Read()
		if err != nil {
			select {
			case <-stop:
				// Suspended mid-read, not an error.
			default:
				log.Printf("⚠️ Capture read failed: %v", err)
			}
			return
		}

		samples := raw
		if p.rs != nil {
			samples, err = p.rs.resample(raw)
			if err != nil {
				log.Printf("⚠️ Resample failed: %v", err)
				continue
			}
		}
		p.emit(samples, stop)
	}
}

// emit repackages resampled audio into fixed-size frames.
func (p *Pipeline) emit(samples []int16, stop chan struct{}) {
	p.pending = append(p.pending, samples...)
	for len(p.pending) >= p.frameSize {
		frame := make([]int16, p.frameSize)
		copy(frame, p.pending[:p.frameSize])
		p.pending = p.pending[p.frameSize:]

		select {
		case <-stop:
			return
		default:
		}
		if p.OnFrame != nil {
			p.OnFrame(frame)
		}
	}
}
