package liveseries

// seriesBuffer holds the capped, time-ordered samples for one key. Points
// arrive in non-decreasing time order; no re-sorting happens client side.
type seriesBuffer struct {
	points []Point
	cap    int
}

func newSeriesBuffer(cap int) *seriesBuffer {
	return &seriesBuffer{cap: cap}
}

// replace swaps in a fresh backlog, still honoring the cap.
func (b *seriesBuffer) replace(points []Point) {
	if len(points) > b.cap {
		points = points[len(points)-b.cap:]
	}
	b.points = append([]Point(nil), points...)
}

// add appends one point, dropping from the front past the cap.
func (b *seriesBuffer) add(point Point) {
	b.points = append(b.points, point)
	if len(b.points) > b.cap {
		// Copy into a fresh slice so capacity cannot creep upward forever.
		trimmed := make([]Point, b.cap)
		copy(trimmed, b.points[len(b.points)-b.cap:])
		b.points = trimmed
	}
}

// pruneOlderThan drops leading points with timestamps before the cutoff and
// reports whether anything was removed.
func (b *seriesBuffer) pruneOlderThan(cutoffMillis int64) bool {
	keep := 0
	for keep < len(b.points) && b.points[keep].T < cutoffMillis {
		keep++
	}
	if keep == 0 {
		return false
	}
	remaining := make([]Point, len(b.points)-keep)
	copy(remaining, b.points[keep:])
	b.points = remaining
	return true
}

// snapshot returns a copy of the buffered points, oldest first.
func (b *seriesBuffer) snapshot() []Point {
	return append([]Point(nil), b.points...)
}
