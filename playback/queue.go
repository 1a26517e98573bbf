package playback

import "sync"

// frameQueue is the FIFO of received agent audio frames awaiting playback.
// It is owned exclusively by the Player; other components go through the
// Player's methods.
type frameQueue struct {
	mu         sync.Mutex
	frames     [][]byte
	totalBytes int
}

// push appends a frame to the queue.
func (q *frameQueue) push(frame []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = append(q.frames, frame)
	q.totalBytes += len(frame)
}

// pop removes and returns the head frame, or nil if the queue is empty.
func (q *frameQueue) pop() []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil
	}
	frame := q.frames[0]
	q.frames = q.frames[1:]
	q.totalBytes -= len(frame)
	return frame
}

// clear empties the queue without returning data.
func (q *frameQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = nil
	q.totalBytes = 0
}

// len returns the number of queued frames.
func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// bytes returns the total queued bytes.
func (q *frameQueue) bytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalBytes
}
