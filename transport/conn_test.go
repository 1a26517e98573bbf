package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/room4-2/converselink/messages"
)

type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	conn     *websocket.Conn
	received []receivedMessage
	ready    chan struct{}
}

type receivedMessage struct {
	messageType int
	data        []byte
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{ready: make(chan struct{})}
	upgrader := websocket.Upgrader{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ts.mu.Lock()
		ts.conn = conn
		ts.mu.Unlock()
		close(ts.ready)
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			ts.mu.Lock()
			ts.received = append(ts.received, receivedMessage{messageType, data})
			ts.mu.Unlock()
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) send(t *testing.T, messageType int, data []byte) {
	t.Helper()
	<-ts.ready
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if err := ts.conn.WriteMessage(messageType, data); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func (ts *testServer) messages() []receivedMessage {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]receivedMessage(nil), ts.received...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestDialAndSend(t *testing.T) {
	ts := newTestServer(t)
	conn, err := Dial(context.Background(), ts.wsURL())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.Start()

	if err := conn.SendEnvelope(messages.NewTextEnvelope("hello")); err != nil {
		t.Fatal(err)
	}
	if err := conn.SendAudio([]byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return len(ts.messages()) == 2 })
	got := ts.messages()
	if got[0].messageType != websocket.TextMessage {
		t.Errorf("first message type=%d", got[0].messageType)
	}
	if string(got[0].data) != `{"type":"text","content":"hello"}` {
		t.Errorf("first message=%s", got[0].data)
	}
	if got[1].messageType != websocket.BinaryMessage || len(got[1].data) != 4 {
		t.Errorf("second message type=%d len=%d", got[1].messageType, len(got[1].data))
	}
}

func TestInboundDispatch(t *testing.T) {
	ts := newTestServer(t)
	conn, err := Dial(context.Background(), ts.wsURL())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var mu sync.Mutex
	var envs []*messages.Envelope
	var audio [][]byte
	conn.OnEnvelope = func(env *messages.Envelope) {
		mu.Lock()
		envs = append(envs, env)
		mu.Unlock()
	}
	conn.OnAudio = func(frame []byte) {
		mu.Lock()
		audio = append(audio, frame)
		mu.Unlock()
	}
	conn.Start()

	ts.send(t, websocket.TextMessage, []byte(`{"type":"action","content":"agent_started_thinking"}`))
	ts.send(t, websocket.TextMessage, []byte(`{broken json`)) // must be skipped, not fatal
	ts.send(t, websocket.BinaryMessage, []byte{0, 1, 0, 1})
	ts.send(t, websocket.TextMessage, []byte(`{"type":"message","user":"agent","content":"hi"}`))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(envs) == 2 && len(audio) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if envs[0].Kind() != messages.KindAction {
		t.Errorf("first envelope kind=%v", envs[0].Kind())
	}
	if envs[1].Content != "hi" {
		t.Errorf("second envelope content=%q", envs[1].Content)
	}
}

func TestServerClose(t *testing.T) {
	ts := newTestServer(t)
	conn, err := Dial(context.Background(), ts.wsURL())
	if err != nil {
		t.Fatal(err)
	}

	closed := make(chan struct{})
	conn.OnClose = func(error) { close(closed) }
	conn.Start()

	<-ts.ready
	ts.conn.Close()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called after server close")
	}

	if !conn.Closed() {
		t.Error("Closed() should report true")
	}
	if err := conn.SendAudio([]byte{0}); err != ErrClosed {
		t.Errorf("SendAudio after close: %v", err)
	}
}

func TestDialHandshakeRejected(t *testing.T) {
	// A plain HTTP endpoint that never upgrades; the handshake response
	// must be consumed and surfaced as an error, not leaked.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no websocket here", http.StatusNotFound)
	}))
	defer srv.Close()

	conn, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake failure")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("err=%v, want the rejection status surfaced", err)
	}
}
