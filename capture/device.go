package capture

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Device is the default microphone opened through PortAudio. It satisfies
// Source; Suspend/Resume map to stopping and restarting the stream while the
// device itself stays open.
type Device struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	buf     []int16
	running bool
}

// Open acquires the default input device.
func (d *Device) Open(sampleRate, frameSize int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}

	d.buf = make([]int16, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), frameSize, &d.buf)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open input device: %w", err)
	}
	d.stream = stream
	return nil
}

// Read blocks until a full device frame is available and returns a copy.
func (d *Device) Read() ([]int16, error) {
	if err := d.stream.Read(); err != nil {
		return nil, err
	}
	frame := make([]int16, len(d.buf))
	copy(frame, d.buf)
	return frame, nil
}

// Resume starts or restarts the stream.
func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	if err := d.stream.Start(); err != nil {
		return err
	}
	d.running = true
	return nil
}

// Suspend stops the stream without releasing the device.
func (d *Device) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	d.running = false
	return d.stream.Abort()
}

// Close releases the device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return nil
	}
	err := d.stream.Close()
	d.stream = nil
	portaudio.Terminate()
	return err
}
