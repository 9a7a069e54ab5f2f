// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/progcache/internal/adapters/config"
	_ "go.trai.ch/progcache/internal/adapters/fs"
	_ "go.trai.ch/progcache/internal/adapters/logger"
	_ "go.trai.ch/progcache/internal/adapters/telemetry"
	_ "go.trai.ch/progcache/internal/adapters/treesitter"
	_ "go.trai.ch/progcache/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/progcache/internal/app"
)
