package streamclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type frameRecorder struct {
	mu     sync.Mutex
	frames []Frame
	notify chan struct{}
}

func newFrameRecorder() *frameRecorder {
	return &frameRecorder{notify: make(chan struct{}, 16)}
}

func (r *frameRecorder) HandleFrame(frame Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, frame)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *frameRecorder) snapshot() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

func (r *frameRecorder) waitForFrames(t *testing.T, count int) []Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if frames := r.snapshot(); len(frames) >= count {
			return frames
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d frames, have %d", count, len(r.snapshot()))
		}
	}
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
	notify chan struct{}
}

func newStateRecorder() *stateRecorder {
	return &stateRecorder{notify: make(chan struct{}, 16)}
}

func (r *stateRecorder) HandleState(state State) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *stateRecorder) waitForConnected(t *testing.T, want bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		r.mu.Lock()
		n := len(r.states)
		matched := n > 0 && r.states[n-1].Connected == want
		r.mu.Unlock()
		if matched {
			return
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for connected=%v", want)
		}
	}
}

// testServer upgrades incoming requests and hands server-side connections to
// the test through a channel.
func newTestServer(t *testing.T) (*httptest.Server, chan *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conns := make(chan *websocket.Conn, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)
	return srv, conns
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientConnectAndDispatch(t *testing.T) {
	srv, conns := newTestServer(t)
	client := NewClient(Config{URL: wsURL(srv), Name: "TestStream"})
	defer client.Disconnect()

	recorder := newFrameRecorder()
	client.On("pods_added", recorder)

	states := newStateRecorder()
	client.AddStateListener(states)

	client.Connect()
	states.waitForConnected(t, true)

	server := <-conns
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`{"type":"pods_added","data":{"name":"web-0"},"room":"overview"}`)))

	frames := recorder.waitForFrames(t, 1)
	require.Equal(t, "pods_added", frames[0].Type)
	require.Equal(t, "overview", frames[0].Room)
	require.JSONEq(t, `{"name":"web-0"}`, string(frames[0].Data))
}

func TestClientConnectIdempotent(t *testing.T) {
	srv, conns := newTestServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	defer client.Disconnect()

	states := newStateRecorder()
	client.AddStateListener(states)

	client.Connect()
	states.waitForConnected(t, true)
	client.Connect()
	client.Connect()

	<-conns
	select {
	case <-conns:
		t.Fatal("connect opened a second connection")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientDisconnectBeforeConnect(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:0"})
	// Must be safe from an unmount cleanup that never connected.
	client.Disconnect()
	client.Disconnect()
	require.False(t, client.State().Connected)
}

func TestClientMultiLinePayloadSkipsMalformed(t *testing.T) {
	srv, conns := newTestServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	defer client.Disconnect()

	recorder := newFrameRecorder()
	client.OnAll(recorder)

	states := newStateRecorder()
	client.AddStateListener(states)
	client.Connect()
	states.waitForConnected(t, true)

	server := <-conns
	payload := `{"type":"services_updated","data":{"name":"api"}}` + "\n" +
		`{not json at all` + "\n" +
		`{"type":"pods_deleted","data":{"name":"web-0"}}`
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(payload)))

	frames := recorder.waitForFrames(t, 2)
	require.Len(t, frames, 2)
	require.Equal(t, "services_updated", frames[0].Type)
	require.Equal(t, "pods_deleted", frames[1].Type)
}

func TestClientDuplicateListenerDeliversOnce(t *testing.T) {
	srv, conns := newTestServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	defer client.Disconnect()

	recorder := newFrameRecorder()
	client.On("pods_added", recorder)
	client.On("pods_added", recorder)

	states := newStateRecorder()
	client.AddStateListener(states)
	client.Connect()
	states.waitForConnected(t, true)

	server := <-conns
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`{"type":"pods_added"}`)))
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`{"type":"pods_added"}`)))

	frames := recorder.waitForFrames(t, 2)
	require.Len(t, frames, 2)
}

type panicListener struct{}

func (panicListener) HandleFrame(Frame) { panic("listener exploded") }

func TestClientListenerPanicDoesNotBlockOthers(t *testing.T) {
	srv, conns := newTestServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	defer client.Disconnect()

	client.On("pods_added", panicListener{})
	recorder := newFrameRecorder()
	client.On("pods_added", recorder)

	states := newStateRecorder()
	client.AddStateListener(states)
	client.Connect()
	states.waitForConnected(t, true)

	server := <-conns
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`{"type":"pods_added"}`)))
	recorder.waitForFrames(t, 1)
}

func TestClientReconnectBackoffSchedule(t *testing.T) {
	client := NewClient(Config{URL: "ws://unused"})

	var mu sync.Mutex
	var delays []time.Duration
	var pending []func()
	client.afterFunc = func(d time.Duration, fn func()) *time.Timer {
		mu.Lock()
		delays = append(delays, d)
		pending = append(pending, fn)
		mu.Unlock()
		return time.NewTimer(time.Hour)
	}

	dialErr := errors.New("refused")
	client.dialFunc = func() (*websocket.Conn, error) { return nil, dialErr }

	client.Connect()

	// The dial runs on a goroutine; wait for each scheduled retry in turn.
	waitForDelays := func(count int) []time.Duration {
		deadline := time.Now().Add(2 * time.Second)
		for {
			mu.Lock()
			got := append([]time.Duration(nil), delays...)
			mu.Unlock()
			if len(got) >= count {
				return got
			}
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %d scheduled retries, have %d", count, len(got))
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	got := waitForDelays(1)
	mu.Lock()
	retry := pending[0]
	mu.Unlock()
	retry()

	got = waitForDelays(2)
	mu.Lock()
	retry = pending[1]
	mu.Unlock()
	retry()

	got = waitForDelays(3)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, got[:3])
}

func TestClientSuccessfulConnectResetsAttempts(t *testing.T) {
	srv, conns := newTestServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	defer client.Disconnect()

	var mu sync.Mutex
	var delays []time.Duration
	client.afterFunc = func(d time.Duration, fn func()) *time.Timer {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		// Fire immediately so reconnects proceed without waiting.
		go fn()
		return time.NewTimer(time.Hour)
	}

	states := newStateRecorder()
	client.AddStateListener(states)
	client.Connect()
	states.waitForConnected(t, true)

	// Abnormal close: no close frame, straight TCP teardown.
	server := <-conns
	require.NoError(t, server.Close())

	// Client reconnects; the retry delay starts back at the base.
	states.waitForConnected(t, false)
	states.waitForConnected(t, true)
	<-conns

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, delays)
	require.Equal(t, time.Second, delays[0])
	client.mu.Lock()
	require.Equal(t, 0, client.attempts)
	client.mu.Unlock()
}

func TestClientNormalCloseDoesNotReconnect(t *testing.T) {
	srv, conns := newTestServer(t)
	client := NewClient(Config{URL: wsURL(srv)})
	defer client.Disconnect()

	scheduled := make(chan time.Duration, 4)
	client.afterFunc = func(d time.Duration, fn func()) *time.Timer {
		scheduled <- d
		return time.NewTimer(time.Hour)
	}

	states := newStateRecorder()
	client.AddStateListener(states)
	client.Connect()
	states.waitForConnected(t, true)

	server := <-conns
	deadline := time.Now().Add(time.Second)
	require.NoError(t, server.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		deadline,
	))

	states.waitForConnected(t, false)
	select {
	case d := <-scheduled:
		t.Fatalf("unexpected reconnect scheduled after %s", d)
	case <-time.After(100 * time.Millisecond):
	}
	require.NoError(t, client.State().LastError)
}

func TestClientSendRequiresConnection(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:0"})
	err := client.Send(map[string]string{"type": "subscribe"})
	require.ErrorIs(t, err, ErrNotConnected)
}
