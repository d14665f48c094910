// Package overview normalizes frames from the multiplexed overview channel
// into typed resource-change events and dispatches them to the view stores
// subscribed to each resource.
package overview

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/harborview/app/backend/streamclient"
)

// Event is one normalized resource change.
type Event struct {
	Action   Action
	Resource string
	Data     json.RawMessage
}

// Handler receives normalized events for one resource.
type Handler interface {
	HandleOverviewEvent(Event)
}

// Router fans overview frames out to per-resource handlers. It implements
// streamclient.Listener and is registered on the overview channel with OnAll.
type Router struct {
	logger Logger

	mu       sync.RWMutex
	handlers map[string]map[Handler]struct{}
}

// NewRouter constructs a router and attaches it to the supplied transport.
func NewRouter(client *streamclient.Client, logger Logger) *Router {
	if logger == nil {
		logger = noopLogger{}
	}
	r := &Router{
		logger:   logger,
		handlers: make(map[string]map[Handler]struct{}),
	}
	if client != nil {
		client.OnAll(r)
	}
	return r
}

// On registers a handler for the given wire-level resource name. Callers must
// use the plural wire form ("resource_quotas", not a display name).
// Registering the same handler twice does not duplicate delivery.
func (r *Router) On(resource string, h Handler) {
	if h == nil || resource == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.handlers[resource]
	if !ok {
		set = make(map[Handler]struct{})
		r.handlers[resource] = set
	}
	set[h] = struct{}{}
}

// Off removes a handler registration.
func (r *Router) Off(resource string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.handlers[resource]
	delete(set, h)
	if len(set) == 0 {
		delete(r.handlers, resource)
	}
}

// HandleFrame normalizes one overview frame and dispatches it. Frames with an
// unrecognized action token are dropped.
func (r *Router) HandleFrame(frame streamclient.Frame) {
	event, ok := normalizeFrame(frame)
	if !ok {
		klog.V(2).Infof("overview: dropping frame with unroutable type %q", frame.Type)
		return
	}

	r.mu.RLock()
	targets := make([]Handler, 0, len(r.handlers[event.Resource]))
	for h := range r.handlers[event.Resource] {
		targets = append(targets, h)
	}
	r.mu.RUnlock()

	for _, h := range targets {
		r.deliver(h, event)
	}
}

func (r *Router) deliver(h Handler, event Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(fmt.Sprintf("overview: handler panic for %s/%s: %v", event.Resource, event.Action, rec), "Overview")
		}
	}()
	h.HandleOverviewEvent(event)
}

// normalizeFrame splits "<resource>_<action>" on the last underscore so
// multi-word resources like resource_quotas_updated route correctly.
func normalizeFrame(frame streamclient.Frame) (Event, bool) {
	idx := strings.LastIndex(frame.Type, "_")
	if idx <= 0 || idx == len(frame.Type)-1 {
		return Event{}, false
	}
	resource := frame.Type[:idx]
	action, ok := actionSynonyms[frame.Type[idx+1:]]
	if !ok {
		return Event{}, false
	}
	return Event{
		Action:   action,
		Resource: CanonicalResource(resource),
		Data:     frame.Data,
	}, true
}

// CanonicalResource maps a wire resource name to the plural form handlers
// subscribe under.
func CanonicalResource(resource string) string {
	if plural, ok := wirePlurals[resource]; ok {
		return plural
	}
	if !strings.HasSuffix(resource, "s") {
		return resource + "s"
	}
	return resource
}
