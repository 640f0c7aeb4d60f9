package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/texrun/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/adapters/labels"             //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/adapters/metrics"            //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/adapters/shell"              //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/texrun/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
			fs.HasherNodeID,
			fs.FinderNodeID,
			labels.NodeID,
			progrock.NodeID,
			metrics.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	checksums, err := graft.Dep[ports.Checksummer](ctx)
	if err != nil {
		return nil, err
	}

	finder, err := graft.Dep[ports.FileFinder](ctx)
	if err != nil {
		return nil, err
	}

	scanner, err := graft.Dep[*labels.Scanner](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*metrics.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, log, checksums, finder, scanner, telemetry, recorder, fileWatcher), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
