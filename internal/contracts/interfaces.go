package contracts

import "context"

// KVStore is the persisted namespaced key-value store.
// Values survive process restarts; found=false means absent.
// ⭐ SSOT: 영속 저장소 인터페이스
type KVStore interface {
	Get(ctx context.Context, namespace, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	// SetIfAbsent writes only when the key is missing and reports whether it wrote
	SetIfAbsent(ctx context.Context, namespace, key string, value []byte) (bool, error)
	Close() error
}

// SnapshotSource exposes the latest published snapshot
type SnapshotSource interface {
	Latest() *Snapshot
	LastUpdateSuccess() bool
}

// Refresher triggers one refresh cycle
type Refresher interface {
	Refresh(ctx context.Context) *Snapshot
}

// Discoverer runs one dynamic-forum discovery pass
type Discoverer interface {
	Discover(ctx context.Context) (added string, err error)
}

// Store namespaces
const (
	NamespaceLifecycle = "lifecycle"
	NamespaceDiscovery = "discovery"
	NamespaceQuotes    = "quotes"
)
