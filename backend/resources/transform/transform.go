// Package transform decodes untyped overview payloads into typed rows.
// Payloads come from the stream and from snapshot responses; either source
// may omit fields mid-rollout, so every accessor degrades to a sentinel and
// records the miss instead of failing the whole row.
package transform

import (
	"encoding/json"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/harborview/app/backend/internal/timeutil"
)

// fields probes one decoded payload, accumulating the names of absent or
// mistyped fields.
type fields struct {
	obj     map[string]any
	missing []string
}

func parse(raw json.RawMessage) *fields {
	f := &fields{}
	if err := json.Unmarshal(raw, &f.obj); err != nil {
		f.obj = nil
	}
	return f
}

func (f *fields) miss(key string) {
	f.missing = append(f.missing, key)
}

// lookup resolves a dotted path into the payload.
func (f *fields) lookup(key string) (any, bool) {
	current := any(f.obj)
	for _, part := range strings.Split(key, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// str returns the string at key, or "" when absent.
func (f *fields) str(key string) string {
	return f.strOr(key, "")
}

// strOr returns the string at key, or fallback when absent or mistyped.
func (f *fields) strOr(key, fallback string) string {
	value, ok := f.lookup(key)
	if !ok {
		f.miss(key)
		return fallback
	}
	s, ok := value.(string)
	if !ok {
		f.miss(key)
		return fallback
	}
	return s
}

// optStr returns the string at key without recording a miss, for fields
// that are legitimately absent, e.g. a service's external IP.
func (f *fields) optStr(key string) string {
	value, ok := f.lookup(key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// intVal returns the integer at key, or 0 when absent.
func (f *fields) intVal(key string) int {
	value, ok := f.lookup(key)
	if !ok {
		f.miss(key)
		return 0
	}
	// JSON numbers decode as float64.
	n, ok := value.(float64)
	if !ok {
		f.miss(key)
		return 0
	}
	return int(n)
}

// quantity returns the Kubernetes quantity at key in canonical form. The
// payload value passes through unchanged when it does not parse, so an odd
// but human-readable upstream string still renders.
func (f *fields) quantity(key string) string {
	raw := f.str(key)
	if raw == "" {
		return ""
	}
	q, err := resource.ParseQuantity(raw)
	if err != nil {
		return raw
	}
	return q.String()
}

// created returns the creation time at key as unix milliseconds plus a
// kubectl-style age string. Accepts unix milliseconds or RFC3339.
func (f *fields) created(key string) (int64, string) {
	value, ok := f.lookup(key)
	if !ok {
		f.miss(key)
		return 0, ""
	}
	switch v := value.(type) {
	case float64:
		t := time.UnixMilli(int64(v))
		return int64(v), timeutil.FormatAge(t)
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			f.miss(key)
			return 0, ""
		}
		return t.UnixMilli(), timeutil.FormatAge(t)
	default:
		f.miss(key)
		return 0, ""
	}
}
