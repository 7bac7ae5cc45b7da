package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/recordview/internal/logging"
	"github.com/rshade/recordview/internal/query"
)

// Stats counts gateway activity since construction.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	RemoteCalls int64 `json:"remote_calls"`
	IndexLoads  int64 `json:"index_loads"`
}

// Gateway fronts a Source with the single-slot query cache and the index tables.
// It is safe for concurrent use, but the cache lock is not held across remote
// I/O: two concurrent misses for the same key both reach the source.
type Gateway struct {
	source Source

	mu   sync.Mutex
	last *cacheEntry

	indexMu sync.Mutex
	indexes *Indexes

	hits        atomic.Int64
	misses      atomic.Int64
	remoteCalls atomic.Int64
	indexLoads  atomic.Int64
}

// New creates a Gateway over source.
func New(source Source) (*Gateway, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	return &Gateway{source: source}, nil
}

// FetchRecords returns the page for q. When q encodes to the same key as the
// previous successful call and force is false, the cached page is returned and
// the source is not contacted. A failed fetch leaves the cached entry untouched.
//
// Ids are resolved with the index tables loaded at the time of the fetch. A
// successful FetchIndexes drops the cached entry so unresolved ids are not
// served afterwards.
func (g *Gateway) FetchRecords(ctx context.Context, q query.Query, force bool) (Page, error) {
	log := logging.FromContext(ctx)
	key := q.Encode()

	if !force {
		g.mu.Lock()
		entry := g.last
		g.mu.Unlock()

		if entry.Matches(key) {
			g.hits.Add(1)
			log.Debug().
				Ctx(ctx).
				Str("component", "gateway").
				Str("operation", "fetch_records").
				Str("query", key).
				Dur("age", entry.Age()).
				Msg("cache hit")
			return entry.Result.clone(), nil
		}
	}

	g.misses.Add(1)
	log.Debug().
		Ctx(ctx).
		Str("component", "gateway").
		Str("operation", "fetch_records").
		Str("query", key).
		Bool("force", force).
		Msg("cache miss")

	g.remoteCalls.Add(1)
	raw, err := g.source.Records(ctx, key)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "gateway").
			Str("operation", "fetch_records").
			Str("query", key).
			Err(err).
			Msg("records fetch failed")
		return Page{}, fmt.Errorf("fetching records: %w", err)
	}

	indexes, resolved := g.loadedIndexes()
	page := Page{
		Total: raw.Total,
		Items: indexes.Denormalize(raw.Items),
	}

	// Tables that finished loading during the fetch have already dropped the
	// slot; an unresolved page must not refill it.
	if _, loadedNow := g.loadedIndexes(); resolved || !loadedNow {
		entry := newCacheEntry(key, page)
		g.mu.Lock()
		g.last = entry
		g.mu.Unlock()
	}

	return page, nil
}

// FetchIndexes returns the seller and customer tables, loading both in parallel
// on first use. A failed load is not remembered, so a later call retries.
func (g *Gateway) FetchIndexes(ctx context.Context) (Indexes, error) {
	g.indexMu.Lock()
	defer g.indexMu.Unlock()

	if g.indexes != nil {
		return *g.indexes, nil
	}

	log := logging.FromContext(ctx)
	var sellers, customers Index

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		ix, err := g.source.Sellers(egCtx)
		if err != nil {
			return fmt.Errorf("fetching sellers: %w", err)
		}
		sellers = ix
		return nil
	})
	eg.Go(func() error {
		ix, err := g.source.Customers(egCtx)
		if err != nil {
			return fmt.Errorf("fetching customers: %w", err)
		}
		customers = ix
		return nil
	})

	g.indexLoads.Add(1)
	if err := eg.Wait(); err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "gateway").
			Str("operation", "fetch_indexes").
			Err(err).
			Msg("index load failed")
		return Indexes{}, err
	}

	if sellers == nil {
		sellers = Index{}
	}
	if customers == nil {
		customers = Index{}
	}
	g.indexes = &Indexes{Sellers: sellers, Customers: customers}

	g.mu.Lock()
	g.last = nil
	g.mu.Unlock()

	log.Debug().
		Ctx(ctx).
		Str("component", "gateway").
		Str("operation", "fetch_indexes").
		Int("sellers", len(sellers)).
		Int("customers", len(customers)).
		Msg("index tables loaded")

	return *g.indexes, nil
}

// loadedIndexes returns the index tables and true if loaded, or empty tables so
// that ids pass through.
func (g *Gateway) loadedIndexes() (Indexes, bool) {
	g.indexMu.Lock()
	defer g.indexMu.Unlock()
	if g.indexes == nil {
		return Indexes{}, false
	}
	return *g.indexes, true
}

// CachedKey returns the key of the cached entry, if any.
func (g *Gateway) CachedKey() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return "", false
	}
	return g.last.Key, true
}

// Stats returns a snapshot of the counters.
func (g *Gateway) Stats() Stats {
	return Stats{
		Hits:        g.hits.Load(),
		Misses:      g.misses.Load(),
		RemoteCalls: g.remoteCalls.Load(),
		IndexLoads:  g.indexLoads.Load(),
	}
}
