package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/texrun/internal/core/ports"
)

const (
	WalkerNodeID graft.ID = "adapter.fs.walker"
	HasherNodeID graft.ID = "adapter.fs.hasher"
	FinderNodeID graft.ID = "adapter.fs.finder"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.Checksummer]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Checksummer, error) {
			return NewHasher(), nil
		},
	})

	graft.Register(graft.Node[ports.FileFinder]{
		ID:        FinderNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.FileFinder, error) {
			return NewFinder(), nil
		},
	})
}
