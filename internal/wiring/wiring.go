// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/shelf/internal/adapters/config"
	_ "go.trai.ch/shelf/internal/adapters/docstore"
	_ "go.trai.ch/shelf/internal/adapters/logger"
	_ "go.trai.ch/shelf/internal/adapters/snapshot"
	_ "go.trai.ch/shelf/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/shelf/internal/app"
)
