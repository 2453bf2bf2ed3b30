package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrDraftNotFound = errors.New("draft not found")

// RegistryConfig holds what every draft opened by a Registry shares.
type RegistryConfig struct {
	PreviewRoot string
	IdleTimeout time.Duration
}

// Registry owns the open drafts of the portal, one per form session.
type Registry struct {
	mu       sync.Mutex
	drafts   map[string]*Draft
	cfg      RegistryConfig
	store    ObjectStore
	catalog  Catalog
	products ProductService
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig, store ObjectStore, catalog Catalog, products ProductService, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		drafts:   make(map[string]*Draft),
		cfg:      cfg,
		store:    store,
		catalog:  catalog,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// Open starts a draft for a new product.
func (r *Registry) Open(ctx context.Context) (*Draft, error) {
	d, err := r.newDraft(ctx)
	if err != nil {
		return nil, err
	}
	r.add(d)
	return d, nil
}

// Hydrate starts a draft editing an existing product. Its images enter as
// already uploaded.
func (r *Registry) Hydrate(ctx context.Context, productID string) (*Draft, error) {
	product, err := r.products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	d, err := r.newDraft(ctx)
	if err != nil {
		return nil, err
	}
	d.load(product)
	r.add(d)
	return d, nil
}

// Get returns an open draft and counts the lookup as activity.
func (r *Registry) Get(id string) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	d.touch()
	return d, nil
}

// Discard tears a draft down and forgets it.
func (r *Registry) Discard(id string) error {
	r.mu.Lock()
	d, ok := r.drafts[id]
	delete(r.drafts, id)
	r.mu.Unlock()
	if !ok {
		return ErrDraftNotFound
	}
	d.Close()
	return nil
}

// Submit sends a draft to the product service and discards it on success.
func (r *Registry) Submit(ctx context.Context, id string) (*Product, error) {
	d, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	product, err := Submit(ctx, d, r.products)
	if err != nil {
		return nil, err
	}
	_ = r.Discard(id)
	return product, nil
}

// Sweep discards drafts idle for longer than the configured timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	var stale []*Draft
	for id, d := range r.drafts {
		if d.LastActive().Before(cutoff) {
			stale = append(stale, d)
			delete(r.drafts, id)
		}
	}
	r.mu.Unlock()

	for _, d := range stale {
		d.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("Discarded idle drafts", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Len returns the number of open drafts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

// Close discards every open draft.
func (r *Registry) Close() {
	r.mu.Lock()
	drafts := r.drafts
	r.drafts = make(map[string]*Draft)
	r.mu.Unlock()

	for _, d := range drafts {
		d.Close()
	}
}

func (r *Registry) newDraft(ctx context.Context) (*Draft, error) {
	categories, err := r.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	previews, err := NewPreviewManager(r.cfg.PreviewRoot, r.logger)
	if err != nil {
		return nil, err
	}
	return NewDraft(r.store, previews, categories, WithLogger(r.logger), WithClock(r.now)), nil
}

func (r *Registry) add(d *Draft) {
	r.mu.Lock()
	r.drafts[d.ID()] = d
	r.mu.Unlock()
	r.logger.Info("Draft opened", zap.String("draft_id", d.ID()))
}
