// Package viewstore keeps one resource collection synchronized from a
// snapshot fetch plus overview push events. One generic store replaces the
// per-kind copies of the merge logic; each mounted table owns its own store.
package viewstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/harborview/app/backend/internal/errhints"
	"github.com/harborview/app/backend/overview"
	"github.com/harborview/app/backend/streamclient"
)

// Logger is the minimal logging interface used by stores.
type Logger interface {
	Debug(message string, source ...string)
	Info(message string, source ...string)
	Warn(message string, source ...string)
	Error(message string, source ...string)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...string) {}
func (noopLogger) Info(string, ...string)  {}
func (noopLogger) Warn(string, ...string)  {}
func (noopLogger) Error(string, ...string) {}

// Config parameterizes a store for one resource kind.
type Config[T any] struct {
	// Resource is the wire-level plural name events are routed under.
	Resource string
	// Fetch performs the initial bulk read (and any manual refetch).
	Fetch func(ctx context.Context) ([]T, error)
	// Transform builds a typed row from an untyped push payload. It never
	// fails: missing fields degrade to defaults and are reported in the
	// second return for diagnostics.
	Transform func(data json.RawMessage) (T, []string)
	// KeyOf derives the identity key (namespace/name, or bare name for
	// cluster-scoped kinds). No two rows in a store share a key.
	KeyOf func(T) string
	// OnChange, when set, is invoked after every visible state change. The
	// rendering layer re-reads Snapshot from it.
	OnChange func()
	// Logger is optional.
	Logger Logger
}

// View is the stable contract the rendering layer consumes.
type View[T any] struct {
	Items     []T
	Loading   bool
	Err       string
	Connected bool
}

// Store reconciles one resource collection. All mutations go through
// Initialize and event application; events are applied synchronously in
// arrival order.
type Store[T any] struct {
	cfg    Config[T]
	router *overview.Router
	client *streamclient.Client

	mu              sync.Mutex
	items           []T
	loading         bool
	err             string
	connected       bool
	tornDown        bool
	snapshotPending bool
	pending         []overview.Event
}

// NewStore builds a store and registers it with the router and the shared
// transport. Events arriving before Initialize completes are queued and
// replayed once the snapshot lands, so no push event is lost to the
// subscribe/fetch race.
func NewStore[T any](cfg Config[T], router *overview.Router, client *streamclient.Client) *Store[T] {
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	s := &Store[T]{
		cfg:             cfg,
		router:          router,
		client:          client,
		loading:         true,
		snapshotPending: true,
	}
	if client != nil {
		s.connected = client.State().Connected
		client.AddStateListener(s)
	}
	if router != nil {
		router.On(cfg.Resource, s)
	}
	return s
}

// Initialize performs the snapshot fetch. On success the fetched rows replace
// the collection wholesale and queued push events are replayed on top; on
// failure the last-known-good rows are kept and the error is surfaced.
func (s *Store[T]) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.snapshotPending = true
	s.mu.Unlock()
	s.notify()

	items, err := s.cfg.Fetch(ctx)

	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.err = errhints.Describe(err)
		s.cfg.Logger.Error(fmt.Sprintf("%s: snapshot fetch failed: %v", s.cfg.Resource, err), "ViewStore")
	} else {
		s.items = append([]T(nil), items...)
		s.err = ""
	}
	for _, event := range s.pending {
		s.applyEventLocked(event)
	}
	s.pending = nil
	s.snapshotPending = false
	s.loading = false
	s.mu.Unlock()

	s.notify()
	return err
}

// Refetch re-runs the snapshot fetch with the same replay semantics.
func (s *Store[T]) Refetch(ctx context.Context) error {
	return s.Initialize(ctx)
}

// Snapshot returns the current view. Items is a copy; callers never see
// in-place mutation.
func (s *Store[T]) Snapshot() View[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View[T]{
		Items:     append([]T(nil), s.items...),
		Loading:   s.loading,
		Err:       s.err,
		Connected: s.connected,
	}
}

// Teardown unregisters the store. After Teardown no event mutates the store
// again; the shared transport is left open for other stores.
func (s *Store[T]) Teardown() {
	if s.router != nil {
		s.router.Off(s.cfg.Resource, s)
	}
	if s.client != nil {
		s.client.RemoveStateListener(s)
	}
	s.mu.Lock()
	s.tornDown = true
	s.pending = nil
	s.mu.Unlock()
}

// HandleOverviewEvent implements overview.Handler.
func (s *Store[T]) HandleOverviewEvent(event overview.Event) {
	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return
	}
	if s.snapshotPending {
		s.pending = append(s.pending, event)
		s.mu.Unlock()
		return
	}
	changed := s.applyEventLocked(event)
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// HandleState implements streamclient.StateListener.
func (s *Store[T]) HandleState(state streamclient.State) {
	s.mu.Lock()
	if s.tornDown || s.connected == state.Connected {
		s.mu.Unlock()
		return
	}
	s.connected = state.Connected
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T]) applyEventLocked(event overview.Event) bool {
	switch event.Action {
	case overview.ActionAdded, overview.ActionUpdated:
		row, missing := s.cfg.Transform(event.Data)
		if len(missing) > 0 {
			s.cfg.Logger.Debug(fmt.Sprintf("%s: degraded row, missing fields: %s", s.cfg.Resource, strings.Join(missing, ", ")), "ViewStore")
		}
		key := s.cfg.KeyOf(row)
		// A duplicate add replaces in place instead of duplicating; an
		// update for an unseen key inserts. Both guard against missed or
		// redelivered notifications around reconnects.
		if idx := s.indexOfLocked(key); idx >= 0 {
			s.items[idx] = row
		} else {
			s.items = append(s.items, row)
		}
		return true

	case overview.ActionDeleted:
		row, _ := s.cfg.Transform(event.Data)
		key := s.cfg.KeyOf(row)
		idx := s.indexOfLocked(key)
		if idx < 0 {
			// Delete payloads can be minimal; when the derived key has no
			// exact match, fall back to the trailing name segment so stale
			// rows do not leak.
			idx = s.indexByNameLocked(key)
		}
		if idx < 0 {
			return false
		}
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		return true

	default:
		return false
	}
}

func (s *Store[T]) indexOfLocked(key string) int {
	for i := range s.items {
		if s.cfg.KeyOf(s.items[i]) == key {
			return i
		}
	}
	return -1
}

func (s *Store[T]) indexByNameLocked(key string) int {
	name := key
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		name = key[idx+1:]
	}
	if name == "" {
		return -1
	}
	for i := range s.items {
		itemKey := s.cfg.KeyOf(s.items[i])
		if itemKey == name || strings.HasSuffix(itemKey, "/"+name) {
			return i
		}
	}
	return -1
}

func (s *Store[T]) notify() {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange()
	}
}
