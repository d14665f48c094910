/*
 * backend/internal/config/config.go
 *
 * Timing and sizing knobs used across the live-view data layer.
 */

package config

import "time"

// Stream transport knobs.
const (
	// OverviewStreamPath is the well-known endpoint for the multiplexed
	// overview channel carrying resource change events for every kind.
	OverviewStreamPath = "/api/v1/stream/overview"

	// LiveSeriesStreamPath is the endpoint for the metric sample channel.
	LiveSeriesStreamPath = "/api/v1/stream/metrics"

	// StreamReconnectBaseDelay is the first retry delay after an abnormal
	// close. Subsequent attempts double it: 1s, 2s, 4s, 8s, 16s.
	StreamReconnectBaseDelay = 1 * time.Second

	// StreamMaxReconnectAttempts caps automatic reconnects. After the cap
	// the transport stays dormant until an explicit Connect call.
	StreamMaxReconnectAttempts = 5

	// StreamHandshakeTimeout bounds the websocket dial so a stalled
	// backend cannot hang the data layer indefinitely.
	StreamHandshakeTimeout = 10 * time.Second

	// StreamWriteTimeout bounds outbound frames (subscribe/unsubscribe).
	StreamWriteTimeout = 5 * time.Second
)

// Snapshot fetch knobs.
const (
	// FetchCallTimeout bounds a single snapshot request.
	FetchCallTimeout = 30 * time.Second

	// FetchMaxAttempts is the bounded retry budget for snapshot reads.
	FetchMaxAttempts = 3

	// FetchRetryBaseDelay is the first retry delay for snapshot reads.
	FetchRetryBaseDelay = 250 * time.Millisecond

	// FetchRetryMaxDelay caps snapshot retry backoff.
	FetchRetryMaxDelay = 2 * time.Second
)

// Live-series buffering knobs.
const (
	// SeriesBufferCap is the per-series point cap; older points drop first.
	SeriesBufferCap = 1000

	// SeriesRetention is the default age window for buffered points.
	SeriesRetention = 60 * time.Minute

	// SeriesPruneInterval is how often buffered series are swept for
	// points older than the retention window.
	SeriesPruneInterval = 30 * time.Second
)

// Settings knobs.
const (
	// SettingsWatchDebounce coalesces bursts of settings file events.
	SettingsWatchDebounce = 500 * time.Millisecond
)

// LoggerMaxEntries caps the in-memory application log ring.
const LoggerMaxEntries = 1000
