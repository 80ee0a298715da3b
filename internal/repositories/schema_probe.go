package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// SchemaProbe reports optional columns of the items table.
type SchemaProbe interface {
	HasReporterName(ctx context.Context) (bool, error)
}

// CatalogProbe asks information_schema on every call.
type CatalogProbe struct {
	db *sqlx.DB
}

// NewCatalogProbe constructs a CatalogProbe.
func NewCatalogProbe(db *sqlx.DB) *CatalogProbe {
	return &CatalogProbe{db: db}
}

// HasReporterName reports whether items.reporter_name exists.
func (p *CatalogProbe) HasReporterName(ctx context.Context) (bool, error) {
	var exists bool
	err := p.db.GetContext(ctx, &exists, `SELECT EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_schema = current_schema() AND table_name = 'items' AND column_name = 'reporter_name')`)
	return exists, err
}

// CachedProbe remembers a probe answer for ttl. A zero ttl disables caching.
type CachedProbe struct {
	probe SchemaProbe
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	value     bool
	checkedAt time.Time
	valid     bool
}

// NewCachedProbe wraps probe with a ttl cache.
func NewCachedProbe(probe SchemaProbe, ttl time.Duration) *CachedProbe {
	return &CachedProbe{probe: probe, ttl: ttl, now: time.Now}
}

// HasReporterName returns the cached answer or asks the wrapped probe.
// Errors are not cached.
func (p *CachedProbe) HasReporterName(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.valid && p.ttl > 0 && p.now().Sub(p.checkedAt) < p.ttl {
		value := p.value
		p.mu.Unlock()
		return value, nil
	}
	p.mu.Unlock()

	value, err := p.probe.HasReporterName(ctx)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	p.value = value
	p.checkedAt = p.now()
	p.valid = true
	p.mu.Unlock()
	return value, nil
}

// Invalidate drops the cached answer so the next call re-probes.
func (p *CachedProbe) Invalidate() {
	p.mu.Lock()
	p.valid = false
	p.mu.Unlock()
}
