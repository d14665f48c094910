package liveseries

// Logger is the minimal logging interface used by the live-series client.
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

// Point is one metric sample. Immutable once created.
type Point struct {
	T int64   `json:"t"`
	V float64 `json:"v"`
}

// Resolution selects the sampling density the backend streams at.
type Resolution string

const (
	ResolutionHigh Resolution = "hi"
	ResolutionLow  Resolution = "lo"
)

// Options tune a subscription group.
type Options struct {
	// Resolution defaults to ResolutionHigh.
	Resolution Resolution
	// Since is the backlog window requested on subscribe, e.g. "60m".
	Since string
}

// Wire messages.

type subscribeMessage struct {
	Type    string   `json:"type"`
	GroupID string   `json:"groupId"`
	Series  []string `json:"series"`
	Res     string   `json:"res"`
	Since   string   `json:"since,omitempty"`
}

type unsubscribeMessage struct {
	Type    string   `json:"type"`
	GroupID string   `json:"groupId"`
	Series  []string `json:"series,omitempty"`
}

type initMessage struct {
	GroupID string `json:"groupId"`
	Data    struct {
		Series map[string][]Point `json:"series"`
	} `json:"data"`
}

type appendMessage struct {
	Key   string `json:"key"`
	Point Point  `json:"point"`
}
