package liveseries

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/harborview/app/backend/streamclient"
)

func newOfflineClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Transport == nil {
		cfg.Transport = streamclient.NewClient(streamclient.Config{
			URL:  "ws://127.0.0.1:0/api/v1/stream/metrics",
			Name: "MetricsStream",
		})
	}
	return NewClient(cfg)
}

func initFrame(t *testing.T, groupID string, series map[string][]Point) streamclient.Frame {
	t.Helper()
	payload := map[string]any{
		"type":    "init",
		"groupId": groupID,
		"data":    map[string]any{"series": series},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return streamclient.Frame{Type: "init", Raw: raw}
}

func appendFrame(t *testing.T, key string, p Point) streamclient.Frame {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": "append", "key": key, "point": p})
	require.NoError(t, err)
	return streamclient.Frame{Type: "append", Raw: raw}
}

func TestBufferCapKeepsNewestPoints(t *testing.T) {
	buf := newSeriesBuffer(1000)
	for i := 0; i < 1500; i++ {
		buf.add(Point{T: int64(i), V: float64(i)})
	}

	points := buf.snapshot()
	require.Len(t, points, 1000)
	require.Equal(t, int64(500), points[0].T)
	require.Equal(t, int64(1499), points[999].T)
}

func TestInitReplacesOnlyListedSeries(t *testing.T) {
	c := newOfflineClient(t, Config{})
	c.Subscribe("g1", []string{"node-1/cpu", "node-1/mem"}, Options{})

	c.HandleFrame(initFrame(t, "g1", map[string][]Point{
		"node-1/cpu": {{T: 1, V: 0.5}, {T: 2, V: 0.6}},
		"node-1/mem": {{T: 1, V: 100}},
	}))

	c.HandleFrame(initFrame(t, "g1", map[string][]Point{
		"node-1/cpu": {{T: 3, V: 0.7}},
	}))

	require.Equal(t, []Point{{T: 3, V: 0.7}}, c.Series("node-1/cpu"))
	require.Equal(t, []Point{{T: 1, V: 100}}, c.Series("node-1/mem"))
}

func TestInitForUnknownGroupIgnored(t *testing.T) {
	c := newOfflineClient(t, Config{})

	c.HandleFrame(initFrame(t, "stale", map[string][]Point{
		"node-1/cpu": {{T: 1, V: 0.5}},
	}))

	require.Nil(t, c.Series("node-1/cpu"))
}

func TestAppendGrowsAndCapsBuffer(t *testing.T) {
	c := newOfflineClient(t, Config{BufferCap: 3})
	c.Subscribe("g1", []string{"pod/cpu"}, Options{})

	for i := 1; i <= 5; i++ {
		c.HandleFrame(appendFrame(t, "pod/cpu", Point{T: int64(i), V: float64(i)}))
	}

	points := c.Series("pod/cpu")
	require.Len(t, points, 3)
	require.Equal(t, int64(3), points[0].T)
	require.Equal(t, int64(5), points[2].T)
}

func TestPruneDropsExpiredPointsOnly(t *testing.T) {
	now := time.Now()
	fake := clocktesting.NewFakeClock(now)
	changes := 0
	c := newOfflineClient(t, Config{
		Clock:     fake,
		Retention: time.Hour,
		OnChange:  func() { changes++ },
	})
	c.Subscribe("g1", []string{"node-1/cpu"}, Options{})

	stale1 := now.Add(-90 * time.Minute).UnixMilli()
	stale2 := now.Add(-70 * time.Minute).UnixMilli()
	fresh := now.Add(-10 * time.Minute).UnixMilli()
	c.HandleFrame(initFrame(t, "g1", map[string][]Point{
		"node-1/cpu": {{T: stale1, V: 1}, {T: stale2, V: 2}, {T: fresh, V: 3}},
	}))
	changes = 0

	c.pruneOnce()
	require.Equal(t, []Point{{T: fresh, V: 3}}, c.Series("node-1/cpu"))
	require.Equal(t, 1, changes)

	c.pruneOnce()
	require.Equal(t, 1, changes, "prune with nothing to drop must not notify")
}

func TestUnsubscribeDropsOrphanBuffers(t *testing.T) {
	c := newOfflineClient(t, Config{})
	c.Subscribe("g1", []string{"node-1/cpu", "node-1/mem"}, Options{})
	c.Subscribe("g2", []string{"node-1/cpu"}, Options{})

	c.HandleFrame(initFrame(t, "g1", map[string][]Point{
		"node-1/cpu": {{T: 1, V: 0.5}},
		"node-1/mem": {{T: 1, V: 100}},
	}))

	c.Unsubscribe("g1")

	require.Nil(t, c.Series("node-1/mem"), "buffer only g1 referenced must drop")
	require.NotEmpty(t, c.Series("node-1/cpu"), "buffer g2 still references must survive")
}

func TestResubscribeReplacesGroupKeySet(t *testing.T) {
	c := newOfflineClient(t, Config{})
	c.Subscribe("g1", []string{"node-1/cpu"}, Options{})
	c.HandleFrame(initFrame(t, "g1", map[string][]Point{
		"node-1/cpu": {{T: 1, V: 0.5}},
	}))

	c.Subscribe("g1", []string{"node-2/cpu"}, Options{})

	require.Nil(t, c.Series("node-1/cpu"), "old keys must not linger after re-subscribe")
}

func TestSubscribeMintsGroupID(t *testing.T) {
	c := newOfflineClient(t, Config{})

	id := c.Subscribe("", []string{"node-1/cpu"}, Options{})
	require.NotEmpty(t, id)

	other := c.Subscribe("", []string{"node-2/cpu"}, Options{})
	require.NotEqual(t, id, other)
}

func TestReconnectReplaysSubscriptions(t *testing.T) {
	messages := make(chan subscribeMessage, 8)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			var msg subscribeMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "subscribe" {
				messages <- msg
			}
		}
	}))
	defer server.Close()

	transport := streamclient.NewClient(streamclient.Config{
		URL:  "ws" + strings.TrimPrefix(server.URL, "http"),
		Name: "MetricsStream",
	})
	transport.Connect()
	defer transport.Disconnect()
	require.Eventually(t, func() bool { return transport.State().Connected }, 2*time.Second, 10*time.Millisecond)

	c := NewClient(Config{Transport: transport})
	c.Subscribe("g1", []string{"node-1/cpu"}, Options{Resolution: ResolutionLow, Since: "30m"})

	first := waitForSubscribe(t, messages)
	require.Equal(t, "g1", first.GroupID)
	require.Equal(t, "lo", first.Res)
	require.Equal(t, "30m", first.Since)

	// The backend forgets groups on reconnect; a fresh connected state must
	// replay every group.
	c.HandleState(streamclient.State{Connected: true})

	replayed := waitForSubscribe(t, messages)
	require.Equal(t, "g1", replayed.GroupID)
	require.Equal(t, []string{"node-1/cpu"}, replayed.Series)
}

func waitForSubscribe(t *testing.T, messages <-chan subscribeMessage) subscribeMessage {
	t.Helper()
	select {
	case msg := <-messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscribe message")
		return subscribeMessage{}
	}
}

func TestPaletteIndexStableAndBounded(t *testing.T) {
	first := PaletteIndex("node-1/cpu", 8)
	require.Equal(t, first, PaletteIndex("node-1/cpu", 8))
	require.GreaterOrEqual(t, first, 0)
	require.Less(t, first, 8)
	require.Zero(t, PaletteIndex("node-1/cpu", 0))
}

func TestPruneLoopUsesInjectedClock(t *testing.T) {
	now := time.Now()
	fake := clocktesting.NewFakeClock(now)
	c := newOfflineClient(t, Config{
		Clock:         fake,
		Retention:     time.Hour,
		PruneInterval: 30 * time.Second,
	})
	c.Subscribe("g1", []string{"node-1/cpu"}, Options{})
	c.HandleFrame(initFrame(t, "g1", map[string][]Point{
		"node-1/cpu": {{T: now.Add(-2 * time.Hour).UnixMilli(), V: 1}},
	}))

	ctx := t.Context()
	c.Start(ctx)
	require.Eventually(t, func() bool { return fake.HasWaiters() }, time.Second, 5*time.Millisecond)

	fake.Step(31 * time.Second)
	require.Eventually(t, func() bool {
		return len(c.Series("node-1/cpu")) == 0
	}, time.Second, 5*time.Millisecond, "expired points must drop after the sweep")
}
