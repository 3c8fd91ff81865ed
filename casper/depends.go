// Copyright 2024 The go-equa Authors
// Dependency Traversal and Memoization

package casper

import (
	"context"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/equa/casper-core/common"
	"golang.org/x/sync/errgroup"
)

// dependsCache memoizes Depends results keyed by (a.id, b.id), addressing
// spec.md §4.2's "callers should cache results where possible" note.
// VictoriaMetrics/fastcache (a teacher dependency) is an in-memory-only
// cache with no persistence, consistent with the "no DAG persistence"
// Non-goal. Disabled (nil) by default; EnableDependsCache turns it on.
var dependsCache *fastcache.Cache

// EnableDependsCache installs a process-wide memoization cache for Depends
// results sized maxBytes. Safe to call once at startup; a zero value
// disables the cache again.
func EnableDependsCache(maxBytes int) {
	if maxBytes <= 0 {
		dependsCache = nil
		return
	}
	dependsCache = fastcache.New(maxBytes)
}

func dependsCacheKey(a, b common.Hash) []byte {
	key := make([]byte, 0, common.HashLength*2)
	key = append(key, a.Bytes()...)
	key = append(key, b.Bytes()...)
	return key
}

func dependsCacheGet(a, b common.Hash) (bool, bool) {
	if dependsCache == nil {
		return false, false
	}
	v, ok := dependsCache.HasGet(nil, dependsCacheKey(a, b))
	if !ok {
		return false, false
	}
	return len(v) > 0 && v[0] == 1, true
}

func dependsCacheSet(a, b common.Hash, result bool) {
	if dependsCache == nil {
		return
	}
	var v byte
	if result {
		v = 1
	}
	dependsCache.Set(dependsCacheKey(a, b), []byte{v})
}

// DependsParallel is the fork-join counterpart of Message.Depends: each of
// a node's justification members is explored on its own goroutine via
// golang.org/x/sync/errgroup (a teacher dependency), cancelling siblings
// cooperatively through the group's derived context the first time a
// worker finds the target. Once ctx is cancelled the walk stops descending
// and reports false; such a result is not stored in the memoization cache.
func DependsParallel[E Estimate](ctx context.Context, m, other *Message[E]) bool {
	if cached, ok := dependsCacheGet(m.id, other.id); ok {
		return cached
	}
	visited := newVisitedSet()
	result := dependsParallelRecurse(ctx, m, other, visited)
	if ctx.Err() == nil {
		dependsCacheSet(m.id, other.id, result)
	}
	return result
}

type visitedSet struct {
	mu   sync.Mutex
	seen map[common.Hash]bool
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[common.Hash]bool)}
}

func (v *visitedSet) markIfNew(id common.Hash) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[id] {
		return false
	}
	v.seen[id] = true
	return true
}

func dependsParallelRecurse[E Estimate](ctx context.Context, lhs, rhs *Message[E], visited *visitedSet) bool {
	if ctx.Err() != nil {
		return false
	}
	if lhs.justification.ContainsID(rhs.id) {
		return true
	}

	group, gctx := errgroup.WithContext(ctx)
	for _, child := range lhs.justification.Members() {
		child := child
		if !visited.markIfNew(child.id) {
			continue
		}
		group.Go(func() error {
			if dependsParallelRecurse(gctx, child, rhs, visited) {
				return errDependencyFound{}
			}
			return nil
		})
	}
	err := group.Wait()
	_, found := err.(errDependencyFound)
	return found
}

type errDependencyFound struct{}

func (errDependencyFound) Error() string { return "casper: dependency found, cancelling siblings" }
