package liveseries

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/harborview/app/backend/internal/config"
	"github.com/harborview/app/backend/internal/hashutil"
	"github.com/harborview/app/backend/streamclient"
)

// Config wires a live-series client to its transport.
type Config struct {
	Transport *streamclient.Client
	Logger    Logger
	// Clock is used for retention pruning. Defaults to the real clock.
	Clock clock.WithTicker
	// OnChange fires after buffered data changes (init, append or prune).
	OnChange func()

	// BufferCap, Retention and PruneInterval default to the config package
	// values when zero.
	BufferCap     int
	Retention     time.Duration
	PruneInterval time.Duration
}

type group struct {
	keys  map[string]struct{}
	res   Resolution
	since string
}

// Client maintains capped in-memory buffers of streamed metric samples,
// grouped by subscription. One client serves all live charts; groups come
// and go as views mount and unmount.
type Client struct {
	transport *streamclient.Client
	logger    Logger
	clock     clock.WithTicker
	onChange  func()

	bufferCap     int
	retention     time.Duration
	pruneInterval time.Duration

	mu     sync.Mutex
	groups map[string]*group
	series map[string]*seriesBuffer
}

// NewClient registers the client on the transport and returns it. Callers
// should Start it to enable retention pruning.
func NewClient(cfg Config) *Client {
	c := &Client{
		transport:     cfg.Transport,
		logger:        cfg.Logger,
		clock:         cfg.Clock,
		onChange:      cfg.OnChange,
		bufferCap:     cfg.BufferCap,
		retention:     cfg.Retention,
		pruneInterval: cfg.PruneInterval,
		groups:        make(map[string]*group),
		series:        make(map[string]*seriesBuffer),
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if c.clock == nil {
		c.clock = clock.RealClock{}
	}
	if c.bufferCap <= 0 {
		c.bufferCap = config.SeriesBufferCap
	}
	if c.retention <= 0 {
		c.retention = config.SeriesRetention
	}
	if c.pruneInterval <= 0 {
		c.pruneInterval = config.SeriesPruneInterval
	}
	c.transport.On("init", c)
	c.transport.On("append", c)
	c.transport.AddStateListener(c)
	return c
}

// Start runs the retention prune loop until ctx is cancelled.
func (c *Client) Start(ctx context.Context) {
	go func() {
		ticker := c.clock.NewTicker(c.pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				c.pruneOnce()
			}
		}
	}()
}

// Subscribe registers interest in a set of series keys under one group. An
// empty groupID mints a new one; the group id is returned either way.
// Re-subscribing an existing group replaces its key set, and buffers no
// group references anymore are dropped immediately.
func (c *Client) Subscribe(groupID string, keys []string, opts Options) string {
	if groupID == "" {
		groupID = uuid.NewString()
	}
	res := opts.Resolution
	if res == "" {
		res = ResolutionHigh
	}

	c.mu.Lock()
	g := &group{keys: make(map[string]struct{}, len(keys)), res: res, since: opts.Since}
	for _, key := range keys {
		g.keys[key] = struct{}{}
	}
	c.groups[groupID] = g
	c.dropOrphanBuffersLocked()
	c.mu.Unlock()

	if err := c.transport.Send(subscribeMessage{
		Type:    "subscribe",
		GroupID: groupID,
		Series:  keys,
		Res:     string(res),
		Since:   opts.Since,
	}); err != nil {
		c.logger.Debug(fmt.Sprintf("subscribe for group %s deferred: %v", groupID, err), "liveseries")
	}
	return groupID
}

// Unsubscribe removes keys from a group, or the whole group when no keys
// are given. Buffers only that group referenced are dropped.
func (c *Client) Unsubscribe(groupID string, keys ...string) {
	c.mu.Lock()
	g, ok := c.groups[groupID]
	if !ok {
		c.mu.Unlock()
		return
	}
	if len(keys) == 0 {
		delete(c.groups, groupID)
	} else {
		for _, key := range keys {
			delete(g.keys, key)
		}
		if len(g.keys) == 0 {
			delete(c.groups, groupID)
		}
	}
	c.dropOrphanBuffersLocked()
	c.mu.Unlock()

	if err := c.transport.Send(unsubscribeMessage{
		Type:    "unsubscribe",
		GroupID: groupID,
		Series:  keys,
	}); err != nil {
		c.logger.Debug(fmt.Sprintf("unsubscribe for group %s dropped: %v", groupID, err), "liveseries")
	}
}

// PaletteIndex returns a stable palette slot for a series key so a chart's
// color assignment survives re-subscribes and reordering.
func PaletteIndex(key string, paletteSize int) int {
	if paletteSize <= 0 {
		return 0
	}
	return int(hashutil.HashKey(key) % uint32(paletteSize))
}

// Series returns a copy of the buffered points for one key, oldest first.
func (c *Client) Series(key string) []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, ok := c.series[key]
	if !ok {
		return nil
	}
	return buf.snapshot()
}

// HandleFrame dispatches init and append messages from the transport.
func (c *Client) HandleFrame(frame streamclient.Frame) {
	switch frame.Type {
	case "init":
		c.handleInit(frame.Raw)
	case "append":
		c.handleAppend(frame.Raw)
	}
}

// HandleState re-issues subscriptions after the transport reconnects. The
// backend forgets groups on disconnect, so every group is replayed.
func (c *Client) HandleState(state streamclient.State) {
	if !state.Connected {
		return
	}
	c.mu.Lock()
	type pending struct {
		id  string
		msg subscribeMessage
	}
	replay := make([]pending, 0, len(c.groups))
	for id, g := range c.groups {
		keys := make([]string, 0, len(g.keys))
		for key := range g.keys {
			keys = append(keys, key)
		}
		replay = append(replay, pending{id: id, msg: subscribeMessage{
			Type:    "subscribe",
			GroupID: id,
			Series:  keys,
			Res:     string(g.res),
			Since:   g.since,
		}})
	}
	c.mu.Unlock()

	for _, p := range replay {
		if err := c.transport.Send(p.msg); err != nil {
			c.logger.Warn(fmt.Sprintf("re-subscribe for group %s failed: %v", p.id, err), "liveseries")
		}
	}
}

func (c *Client) handleInit(raw json.RawMessage) {
	var msg initMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Debug(fmt.Sprintf("dropping malformed init frame: %v", err), "liveseries")
		return
	}

	c.mu.Lock()
	if _, ok := c.groups[msg.GroupID]; !ok {
		// Late init for a group already torn down. Applying it would
		// resurrect buffers nothing is watching.
		c.mu.Unlock()
		c.logger.Debug(fmt.Sprintf("ignoring init for unknown group %s", msg.GroupID), "liveseries")
		return
	}
	changed := false
	for key, points := range msg.Data.Series {
		buf, ok := c.series[key]
		if !ok {
			buf = newSeriesBuffer(c.bufferCap)
			c.series[key] = buf
		}
		buf.replace(points)
		changed = true
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

func (c *Client) handleAppend(raw json.RawMessage) {
	var msg appendMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Debug(fmt.Sprintf("dropping malformed append frame: %v", err), "liveseries")
		return
	}

	c.mu.Lock()
	buf, ok := c.series[msg.Key]
	if !ok {
		buf = newSeriesBuffer(c.bufferCap)
		c.series[msg.Key] = buf
	}
	buf.add(msg.Point)
	c.mu.Unlock()

	c.notify()
}

func (c *Client) pruneOnce() {
	cutoff := c.clock.Now().Add(-c.retention).UnixMilli()

	c.mu.Lock()
	changed := false
	for _, buf := range c.series {
		if buf.pruneOlderThan(cutoff) {
			changed = true
		}
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// dropOrphanBuffersLocked removes buffers for keys no group references.
func (c *Client) dropOrphanBuffersLocked() {
	for key := range c.series {
		referenced := false
		for _, g := range c.groups {
			if _, ok := g.keys[key]; ok {
				referenced = true
				break
			}
		}
		if !referenced {
			delete(c.series, key)
		}
	}
}

func (c *Client) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
