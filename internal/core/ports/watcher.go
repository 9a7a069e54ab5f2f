package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of change a watch event reports.
type WatchOp uint8

const (
	// OpCreate reports a new file or directory.
	OpCreate WatchOp = iota
	// OpWrite reports modified file content.
	OpWrite
	// OpRemove reports a deleted file or directory.
	OpRemove
	// OpRename reports a file or directory moved away from Path.
	OpRename
)

// String returns the lower-case name of the operation.
func (op WatchOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent is a change observed under a watched root.
type WatchEvent struct {
	// Path is the absolute path that changed.
	Path string
	// Operation is the kind of change.
	Operation WatchOp
}

// Watcher reports file system changes below a root directory. Source edits
// observed here are fed to the content stores as invalidations.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start watches root recursively until ctx is done or Stop is called.
	Start(ctx context.Context, root string) error
	// Stop releases the watcher. The event sequence ends afterwards.
	Stop() error
	// Events yields observed changes.
	Events() iter.Seq[WatchEvent]
}
