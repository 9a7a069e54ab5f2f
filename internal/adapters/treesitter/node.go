package treesitter

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/progcache/internal/core/ports"
)

// NodeID is the unique identifier for the tree-sitter frontend Graft node.
const NodeID graft.ID = "adapter.frontend"

func init() {
	graft.Register(graft.Node[ports.Frontend]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Frontend, error) {
			return New(), nil
		},
	})
}
