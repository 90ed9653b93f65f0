// Package join resolves foreign-key relationships across service boundaries
// once per distinct key value instead of once per row. Given a result set of
// N rows referencing K distinct remote ids (K <= N), a resolve round issues
// exactly K lookups, all in flight before any is awaited, and returns a map
// keyed by remote id for the re-join step.
package join

import (
	"context"
	"log"
	"sync"
)

// Distinct returns the unique values of keys, dropping zeros. Order follows
// first appearance, though callers must not rely on it.
func Distinct[K comparable](keys []K) []K {
	var zero K
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if k == zero {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Keys extracts one foreign key per row. The extractor returns ok=false for
// rows without a value (nullable references).
func Keys[R any, K comparable](rows []R, extract func(R) (K, bool)) []K {
	out := make([]K, 0, len(rows))
	for _, r := range rows {
		if k, ok := extract(r); ok {
			out = append(out, k)
		}
	}
	return out
}

// Resolve fetches the entity behind every distinct key in keys, one
// concurrent fetch per distinct key. Each goroutine writes only its own slot
// of a pre-sized slice, so the fan-out needs no locking; the map is built
// after all fetches return. Keys whose fetch failed or came back absent are
// omitted from the result (failures are logged, never propagated: a dead
// peer degrades the join, it does not abort it).
func Resolve[K comparable, V any](ctx context.Context, keys []K, fetch func(context.Context, K) (*V, error)) map[K]*V {
	distinct := Distinct(keys)
	slots := make([]*V, len(distinct))

	var wg sync.WaitGroup
	for i, k := range distinct {
		wg.Add(1)
		go func(i int, k K) {
			defer wg.Done()
			v, err := fetch(ctx, k)
			if err != nil {
				log.Printf("join: lookup for key %v failed: %v", k, err)
				return
			}
			slots[i] = v
		}(i, k)
	}
	wg.Wait()

	out := make(map[K]*V, len(distinct))
	for i, v := range slots {
		if v != nil {
			out[distinct[i]] = v
		}
	}
	return out
}

// ResolveMany is Resolve for list-valued relationships (fetch-by-parent):
// every distinct key maps to the slice its fetch returned. Empty results and
// failures are both omitted.
func ResolveMany[K comparable, V any](ctx context.Context, keys []K, fetch func(context.Context, K) ([]V, error)) map[K][]V {
	distinct := Distinct(keys)
	slots := make([][]V, len(distinct))

	var wg sync.WaitGroup
	for i, k := range distinct {
		wg.Add(1)
		go func(i int, k K) {
			defer wg.Done()
			vs, err := fetch(ctx, k)
			if err != nil {
				log.Printf("join: list lookup for key %v failed: %v", k, err)
				return
			}
			slots[i] = vs
		}(i, k)
	}
	wg.Wait()

	out := make(map[K][]V, len(distinct))
	for i, vs := range slots {
		if len(vs) > 0 {
			out[distinct[i]] = vs
		}
	}
	return out
}
