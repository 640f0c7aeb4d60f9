package labels

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/texrun/internal/adapters/fs"
)

// NodeID is the unique identifier for the label scanner node.
const NodeID graft.ID = "adapter.labels"

func init() {
	graft.Register(graft.Node[*Scanner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID},
		Run: func(ctx context.Context) (*Scanner, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewScanner(walker), nil
		},
	})
}
