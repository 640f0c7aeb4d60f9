// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/texrun/internal/adapters/config"
	_ "go.trai.ch/texrun/internal/adapters/fs"
	_ "go.trai.ch/texrun/internal/adapters/labels"
	_ "go.trai.ch/texrun/internal/adapters/logger"
	_ "go.trai.ch/texrun/internal/adapters/metrics"
	_ "go.trai.ch/texrun/internal/adapters/shell"
	_ "go.trai.ch/texrun/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/texrun/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/texrun/internal/app"
)
