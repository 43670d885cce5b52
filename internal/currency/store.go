package currency

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/installment-engine/internal/cache"
)

const cacheKey = "currency:rates"

// Store publishes the current rate table. Refresh swaps in a new table; a
// table handed out by Current is never modified.
type Store struct {
	current  atomic.Pointer[RateTable]
	provider Provider
	cache    cache.Cache
	base     string
	log      *logrus.Logger
}

// NewStore starts from initial expressed in its own base currency.
func NewStore(initial *RateTable, provider Provider, c cache.Cache, log *logrus.Logger) *Store {
	s := &Store{
		provider: provider,
		cache:    c,
		base:     initial.Base(),
		log:      log,
	}
	s.current.Store(initial)
	return s
}

// Current returns the table in effect.
func (s *Store) Current() *RateTable {
	return s.current.Load()
}

// Load replaces the current table with a cached one, if any. A cache miss is
// not an error.
func (s *Store) Load(ctx context.Context) error {
	var cached RateTable
	if err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil
		}
		return fmt.Errorf("load cached rates: %w", err)
	}

	table, err := cached.Rebase(s.base)
	if err != nil {
		return err
	}
	s.current.Store(table)
	return nil
}

// Refresh fetches a new table from the provider, rebases it onto the store's
// base currency, publishes it and writes it to the cache.
func (s *Store) Refresh(ctx context.Context) (*RateTable, error) {
	fetched, err := s.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}

	// The provider may not quote every currency we know; keep the old ones.
	merged, err := s.mergeWithCurrent(fetched)
	if err != nil {
		return nil, err
	}

	s.current.Store(merged)

	if err := s.cache.Set(ctx, cacheKey, merged, 0); err != nil {
		s.log.WithError(err).Warn("Failed to cache exchange rates")
	}

	return merged, nil
}

func (s *Store) mergeWithCurrent(fetched *RateTable) (*RateTable, error) {
	current := s.Current()

	// The feed has to quote the store's base currency.
	rebased, err := fetched.Rebase(s.base)
	if err != nil {
		return nil, fmt.Errorf("rebase rates onto %s: %w", s.base, err)
	}

	return current.With(rebased.Rates(), rebased.AsOf())
}
