package docstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shelf/internal/adapters/snapshot" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/shelf/internal/core/ports"
)

// NodeID is the unique identifier for the document store Graft node.
const NodeID graft.ID = "adapter.docstore"

func init() {
	graft.Register(graft.Node[*Store]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{snapshot.NodeID},
		Run: func(ctx context.Context) (*Store, error) {
			snapshots, err := graft.Dep[ports.SnapshotStore](ctx)
			if err != nil {
				return nil, err
			}
			return New(snapshots), nil
		},
	})
}
