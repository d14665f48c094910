package overview

// Logger is the minimal logging interface used by the router.
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

// Action is the canonical change kind carried by an overview event.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// actionSynonyms maps wire action tokens onto the three canonical actions.
var actionSynonyms = map[string]Action{
	"added":    ActionAdded,
	"created":  ActionAdded,
	"updated":  ActionUpdated,
	"modified": ActionUpdated,
	"deleted":  ActionDeleted,
	"removed":  ActionDeleted,
}

// wirePlurals enumerates resource plural forms the naive "+s" rule would get
// wrong. Keeping this a fixed table avoids silent routing failures for
// irregular nouns; everything else falls through to the suffix rule.
var wirePlurals = map[string]string{
	"ingress":        "ingresses",
	"storage_class":  "storage_classes",
	"network_policy": "network_policies",
}
