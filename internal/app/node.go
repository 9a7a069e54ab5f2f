package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/progcache/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/progcache/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/progcache/internal/adapters/telemetry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/progcache/internal/adapters/treesitter" //nolint:depguard // Wired in app layer
	"go.trai.ch/progcache/internal/adapters/watcher"    //nolint:depguard // Wired in app layer
	"go.trai.ch/progcache/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			treesitter.NodeID,
			watcher.WatcherNodeID,
			watcher.ChangeFilterNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	resolver, err := graft.Dep[ports.ProjectResolver](ctx)
	if err != nil {
		return nil, err
	}
	frontend, err := graft.Dep[ports.Frontend](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	filter, err := graft.Dep[*watcher.ChangeFilter](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[trace.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return New(resolver, frontend, w, filter, log).WithTracer(tracer), nil
}
