package warehouse

import (
	"context"
	"time"

	"github.com/leapstack-labs/queryforge/pkg/core"
	"golang.org/x/sync/singleflight"
)

// Collapsing wraps a Warehouse so that identical introspection calls that
// overlap in time share one round trip. Nothing is cached: a call that starts
// after the previous one finished always queries the warehouse again.
type Collapsing struct {
	Warehouse
	group singleflight.Group
}

// NewCollapsing wraps w.
func NewCollapsing(w Warehouse) *Collapsing {
	return &Collapsing{Warehouse: w}
}

// sharedCallTimeout bounds a collapsed call once it no longer follows the
// cancellation of the caller that started it.
const sharedCallTimeout = 2 * time.Minute

// collapse runs fn once per key for all overlapping callers. The shared call
// is detached from the first caller's cancellation so one caller giving up
// does not fail the others. Each caller still returns as soon as its own
// context is done.
func collapse[T any](ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	ch := g.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		v, err := fn(shared)
		return v, err
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// ListCatalogs collapses concurrent catalog listings.
func (c *Collapsing) ListCatalogs(ctx context.Context) ([]string, error) {
	return collapse(ctx, &c.group, "catalogs", c.Warehouse.ListCatalogs)
}

// ListSchemas collapses concurrent schema listings for the same catalog.
func (c *Collapsing) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	return collapse(ctx, &c.group, "schemas\x00"+catalog, func(ctx context.Context) ([]string, error) {
		return c.Warehouse.ListSchemas(ctx, catalog)
	})
}

// ListTables collapses concurrent table listings for the same schema.
func (c *Collapsing) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	return collapse(ctx, &c.group, "tables\x00"+catalog+"\x00"+schema, func(ctx context.Context) ([]string, error) {
		return c.Warehouse.ListTables(ctx, catalog, schema)
	})
}

// DescribeTable collapses concurrent describes of the same table.
func (c *Collapsing) DescribeTable(ctx context.Context, table core.TableRef) ([]core.ColumnInfo, error) {
	key := "columns\x00" + table.Catalog + "\x00" + table.Schema + "\x00" + table.Table
	return collapse(ctx, &c.group, key, func(ctx context.Context) ([]core.ColumnInfo, error) {
		return c.Warehouse.DescribeTable(ctx, table)
	})
}
