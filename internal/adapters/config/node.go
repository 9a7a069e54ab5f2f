package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/progcache/internal/adapters/fs"
	"go.trai.ch/progcache/internal/adapters/logger"
	"go.trai.ch/progcache/internal/core/ports"
)

// NodeID is the unique identifier for the project resolver Graft node.
const NodeID graft.ID = "adapter.project_resolver"

func init() {
	graft.Register(graft.Node[ports.ProjectResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, fs.ResolverNodeID},
		Run: func(ctx context.Context) (ports.ProjectResolver, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			resolver, err := graft.Dep[*fs.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, resolver), nil
		},
	})
}
