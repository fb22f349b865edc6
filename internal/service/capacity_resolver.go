package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pack-assistant/internal/metrics"
	"github.com/guttosm/pack-assistant/internal/repository"
	"github.com/guttosm/pack-assistant/internal/service/cache"
)

// CapacityResolver answers "how many units of this catalog number fit in a
// box". Absence means unbounded. Lookups for a whole order go to the store in
// one batch, and both hits and misses are cached.
type CapacityResolver struct {
	repo  repository.CapacitySettingsRepositoryInterface
	cache cache.Cache
}

// NewCapacityResolver creates a resolver. A nil cache disables caching.
func NewCapacityResolver(repo repository.CapacitySettingsRepositoryInterface, c cache.Cache) *CapacityResolver {
	return &CapacityResolver{repo: repo, cache: c}
}

// Resolve returns the max quantity per box for one catalog number.
func (r *CapacityResolver) Resolve(ctx context.Context, catalogNumber string) (int, bool) {
	return r.ResolveAll(ctx, []string{catalogNumber}).Lookup(catalogNumber)
}

// ResolveAll resolves every distinct catalog number with at most one store
// round trip. Store errors are logged and the affected catalog numbers are
// treated as unbounded without being cached.
func (r *CapacityResolver) ResolveAll(ctx context.Context, catalogNumbers []string) Capacities {
	out := make(Capacities, len(catalogNumbers))
	pending := make([]string, 0, len(catalogNumbers))
	seen := make(map[string]struct{}, len(catalogNumbers))

	for _, cn := range catalogNumbers {
		if _, dup := seen[cn]; dup {
			continue
		}
		seen[cn] = struct{}{}

		if r.cache != nil {
			if entry, ok := r.cache.Get(cn); ok {
				metrics.RecordCapacityLookup("cache_hit")
				if entry.Bounded {
					out[cn] = entry.MaxQuantity
				}
				continue
			}
		}
		pending = append(pending, cn)
	}

	if len(pending) == 0 || r.repo == nil {
		return out
	}

	settings, err := r.repo.GetByCatalogNumbers(ctx, pending)
	if err != nil {
		metrics.RecordCapacityLookup("error")
		log.Warn().
			Err(err).
			Int("catalog_numbers", len(pending)).
			Msg("Capacity lookup failed, treating items as unbounded")
		return out
	}

	found := make(map[string]int, len(settings))
	for _, s := range settings {
		found[s.CatalogNumber] = s.MaxQuantity
	}

	for _, cn := range pending {
		limit, ok := found[cn]
		entry := cache.Entry{}
		switch {
		case !ok:
			metrics.RecordCapacityLookup("unbounded")
		case limit <= 0:
			metrics.RecordCapacityLookup("invalid")
			log.Warn().
				Str("catalog_number", cn).
				Int("max_quantity", limit).
				Msg("Ignoring non-positive max-per-box setting")
		default:
			metrics.RecordCapacityLookup("hit")
			entry = cache.Entry{MaxQuantity: limit, Bounded: true}
			out[cn] = limit
		}
		if r.cache != nil {
			r.cache.Set(cn, entry)
		}
	}
	return out
}

// Invalidate drops a cached entry so the next lookup reads the store.
func (r *CapacityResolver) Invalidate(catalogNumber string) {
	if r.cache != nil {
		r.cache.Invalidate(catalogNumber)
	}
}
