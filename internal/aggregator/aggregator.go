// Package aggregator assembles one MarketSnapshot per cycle from the three
// upstream sources. Sources are fetched concurrently with independent
// timeouts; a failed source leaves its snapshot field nil and records the
// error, so the evaluator always sees whatever did arrive.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/domain"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/hourly"
	"github.com/nicodiferd/polymarket-kalshi-btc-arbitrage-bot/internal/platform/polymarket"
)

// GammaAPI resolves an hourly event slug to its CLOB token metadata.
type GammaAPI interface {
	EventBySlug(ctx context.Context, slug string) (polymarket.EventMetadata, error)
}

// BookAPI reads the best ask of a CLOB order book.
type BookAPI interface {
	BookBestAsk(ctx context.Context, tokenID string) (float64, bool, error)
}

// LadderAPI fetches the normalized Kalshi strike ladder for an event.
type LadderAPI interface {
	EventLadder(ctx context.Context, eventTicker string) (domain.KalshiLadder, error)
}

// SpotAPI fetches the Binance reference prices.
type SpotAPI interface {
	SpotPrice(ctx context.Context, symbol string) (float64, error)
	HourOpen(ctx context.Context, symbol string) (float64, error)
}

type Aggregator struct {
	gamma   GammaAPI
	books   BookAPI
	kalshi  LadderAPI
	binance SpotAPI

	cache        *SnapshotCache
	sf           singleflight.Group
	logger       *slog.Logger
	symbol       string
	fetchTimeout time.Duration
	now          func() time.Time

	// Token metadata is stable for the whole hour, so it is fetched once
	// per slug and reused until the hour rolls over.
	metaMu   sync.Mutex
	metaSlug string
	meta     polymarket.EventMetadata
}

func New(gamma GammaAPI, books BookAPI, kalshi LadderAPI, binance SpotAPI, cache *SnapshotCache, symbol string, fetchTimeout time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		gamma:        gamma,
		books:        books,
		kalshi:       kalshi,
		binance:      binance,
		cache:        cache,
		logger:       logger.With("component", "aggregator"),
		symbol:       symbol,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Snapshot returns the freshest snapshot available. Concurrent callers
// collapse into a single upstream fetch, and a cached snapshot within its
// TTL is served without touching the venues.
func (a *Aggregator) Snapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	if snap, ok := a.cache.Get(ctx); ok {
		return snap, nil
	}

	v, err, _ := a.sf.Do("snapshot", func() (any, error) {
		snap := a.fetch(ctx)
		if err := a.cache.Set(ctx, snap); err != nil {
			a.logger.Warn("snapshot cache write failed", "error", err)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.MarketSnapshot), nil
}

// fetch assembles a snapshot from live sources. It never fails as a whole:
// each source error is recorded and the corresponding field left nil.
func (a *Aggregator) fetch(ctx context.Context) *domain.MarketSnapshot {
	now := a.now()
	inst := hourly.Current(now)

	snap := &domain.MarketSnapshot{
		Timestamp: now,
		Errors:    []string{},
	}
	var mu sync.Mutex
	fail := func(source string, err error) {
		mu.Lock()
		defer mu.Unlock()
		snap.Errors = append(snap.Errors, fmt.Sprintf("%s: %v", source, err))
		a.logger.Warn("source fetch failed", "source", source, "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.fetchTimeout)
		defer cancel()
		quote, err := a.fetchPolymarket(fctx, inst.PolymarketSlug)
		if err != nil {
			fail("polymarket", err)
			return nil
		}
		mu.Lock()
		snap.Polymarket = quote
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.fetchTimeout)
		defer cancel()
		ladder, err := a.kalshi.EventLadder(fctx, inst.KalshiEventTicker)
		if err != nil {
			fail("kalshi", err)
			return nil
		}
		ladder.FetchedAt = a.now()
		ladder.Fresh = true
		mu.Lock()
		snap.Kalshi = &ladder
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, a.fetchTimeout)
		defer cancel()
		spot, err := a.fetchSpot(fctx)
		if err != nil {
			fail("binance", err)
			return nil
		}
		mu.Lock()
		snap.Spot = spot
		mu.Unlock()
		return nil
	})

	g.Wait()
	return snap
}

func (a *Aggregator) fetchPolymarket(ctx context.Context, slug string) (*domain.PolymarketQuote, error) {
	meta, err := a.eventMetadata(ctx, slug)
	if err != nil {
		return nil, err
	}

	upToken, ok := meta.TokenIDs["Up"]
	if !ok {
		return nil, fmt.Errorf("aggregator: event %s has no Up token", slug)
	}
	downToken, ok := meta.TokenIDs["Down"]
	if !ok {
		return nil, fmt.Errorf("aggregator: event %s has no Down token", slug)
	}

	up, upOK, err := a.books.BookBestAsk(ctx, upToken)
	if err != nil {
		return nil, err
	}
	down, downOK, err := a.books.BookBestAsk(ctx, downToken)
	if err != nil {
		return nil, err
	}
	if !upOK || !downOK {
		return nil, fmt.Errorf("aggregator: event %s book has an empty side", slug)
	}

	return &domain.PolymarketQuote{
		Slug:      slug,
		Up:        up,
		Down:      down,
		TokenIDs:  meta.TokenIDs,
		FetchedAt: a.now(),
		Fresh:     true,
	}, nil
}

func (a *Aggregator) eventMetadata(ctx context.Context, slug string) (polymarket.EventMetadata, error) {
	a.metaMu.Lock()
	defer a.metaMu.Unlock()
	if a.metaSlug == slug {
		return a.meta, nil
	}
	meta, err := a.gamma.EventBySlug(ctx, slug)
	if err != nil {
		return polymarket.EventMetadata{}, err
	}
	a.metaSlug = slug
	a.meta = meta
	return meta, nil
}

func (a *Aggregator) fetchSpot(ctx context.Context) (*domain.SpotPrice, error) {
	price, err := a.binance.SpotPrice(ctx, a.symbol)
	if err != nil {
		return nil, err
	}
	open, err := a.binance.HourOpen(ctx, a.symbol)
	if err != nil {
		return nil, err
	}
	return &domain.SpotPrice{
		Symbol:    a.symbol,
		Price:     price,
		HourOpen:  open,
		FetchedAt: a.now(),
	}, nil
}
