package ports

// SnapshotStore persists document store tables between runs.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type SnapshotStore interface {
	// Get returns the encoded snapshot of a table.
	// Returns nil, nil if no snapshot exists.
	Get(table string) ([]byte, error)

	// Put stores the encoded snapshot of a table.
	Put(table string, data []byte) error
}
