package storage

import (
	"sync"

	"go.uber.org/multierr"
)

// resource is something handed out by a store that must be released when
// the store closes.
type resource interface {
	closeByOwner() error
}

// lifecycle guards the open/closed state of a store and tracks the
// iterators and snapshots it has handed out.
//
// Every store operation holds mu for reading while it talks to the engine, so
// closing waits for in-flight calls but never serializes them against each
// other.
type lifecycle struct {
	mu     sync.RWMutex
	closed bool

	resMu     sync.Mutex
	resources map[resource]struct{}
}

func (lc *lifecycle) track(r resource) {
	lc.resMu.Lock()
	defer lc.resMu.Unlock()

	if lc.resources == nil {
		lc.resources = make(map[resource]struct{})
	}
	lc.resources[r] = struct{}{}
}

func (lc *lifecycle) untrack(r resource) {
	lc.resMu.Lock()
	defer lc.resMu.Unlock()

	delete(lc.resources, r)
}

// releaseAll closes every tracked resource. The caller must hold mu for writing.
func (lc *lifecycle) releaseAll() error {
	lc.resMu.Lock()
	open := make([]resource, 0, len(lc.resources))
	for r := range lc.resources {
		open = append(open, r)
	}
	lc.resources = nil
	lc.resMu.Unlock()

	var err error
	for _, r := range open {
		err = multierr.Append(err, r.closeByOwner())
	}
	return err
}
