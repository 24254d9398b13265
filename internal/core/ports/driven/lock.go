package driven

import "context"

// CollectionLocker serialises writers to a collection.
type CollectionLocker interface {
	// Lock blocks until the collection is held or ctx is done.
	// The returned func releases the lock.
	Lock(ctx context.Context, collection string) (func(), error)
}
