package proximity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saadjs/pantry-cli/internal/metrics"
	"github.com/saadjs/pantry-cli/internal/model"
)

// GroceryView names the view the watcher navigates to.
const GroceryView = "grocery"

// Outcome is the result of one proximity check.
type Outcome string

const (
	OutcomeNone      Outcome = "none"
	OutcomeAlerted   Outcome = "alerted"
	OutcomeAlready   Outcome = "already"
	OutcomeDenied    Outcome = "denied"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

// ShopSource lists the registered shops.
type ShopSource interface {
	List() []model.Shop
}

// Navigator reports the active view and switches to another one.
type Navigator interface {
	CurrentView() string
	Navigate(ctx context.Context, view string) error
}

// Notifier delivers a one-off alert to the user.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher re-checks the position.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithRadius sets the proximity radius in kilometres.
func WithRadius(km float64) WatcherOption {
	return func(w *Watcher) {
		w.radiusKm = ClampRadius(km)
	}
}

// WithRefresh runs fn at the start of every check so shops registered by
// other processes are seen. A failing refresh keeps the previous list.
func WithRefresh(fn func(context.Context) error) WatcherOption {
	return func(w *Watcher) {
		w.refresh = fn
	}
}

func WithMetrics(m *metrics.Collector) WatcherOption {
	return func(w *Watcher) {
		w.metrics = m
	}
}

// Watcher checks the position against the shop registry on start, on every
// trigger (shop list changes) and on a slow tick. When a shop comes into
// range and the grocery view is not active it alerts once and navigates.
type Watcher struct {
	shops    ShopSource
	locator  Locator
	nav      Navigator
	notifier Notifier
	log      *slog.Logger
	interval time.Duration
	radiusKm float64
	metrics  *metrics.Collector
	refresh  func(context.Context) error

	trigger chan struct{}

	mu     sync.Mutex
	inside map[string]bool
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(shops ShopSource, locator Locator, nav Navigator, notifier Notifier, log *slog.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		shops:    shops,
		locator:  locator,
		nav:      nav,
		notifier: notifier,
		log:      log,
		interval: time.Minute,
		radiusKm: DefaultRadiusKm,
		trigger:  make(chan struct{}, 1),
		inside:   map[string]bool{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	return w
}

// Trigger requests a check without waiting for the next tick. Extra requests
// while one is pending are dropped.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run checks once immediately, then on every tick and trigger. Blocks until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("proximity watcher started", "interval", w.interval, "radius_km", w.radiusKm)
	w.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("proximity watcher stopped")
			return
		case <-ticker.C:
			w.Check(ctx)
		case <-w.trigger:
			w.Check(ctx)
		}
	}
}

// Check runs one proximity cycle. Failures are logged and reported through
// the outcome; they never stop the watcher.
func (w *Watcher) Check(ctx context.Context) (Outcome, error) {
	outcome, err := w.check(ctx)
	w.metrics.ProximityCheck(string(outcome))
	switch outcome {
	case OutcomeDenied:
		w.log.Warn("proximity check: location permission denied")
	case OutcomeError:
		w.log.Warn("proximity check failed", "err", err)
	}
	return outcome, err
}

func (w *Watcher) check(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeCancelled, err
	}
	if w.refresh != nil {
		if err := w.refresh(ctx); err != nil {
			w.log.Warn("proximity check: reload shops", "err", err)
		}
	}
	at, err := Locate(ctx, w.locator)
	if err != nil {
		switch {
		case errors.Is(err, ErrPermissionDenied):
			return OutcomeDenied, err
		case ctx.Err() != nil:
			return OutcomeCancelled, ctx.Err()
		default:
			return OutcomeError, fmt.Errorf("locate device: %w", err)
		}
	}
	// A fix that arrives after the session ended is stale.
	if err := ctx.Err(); err != nil {
		return OutcomeCancelled, err
	}

	nearby := ShopsWithin(w.shops.List(), at, w.radiusKm)
	entered := w.updateInside(nearby)
	if len(nearby) == 0 {
		return OutcomeNone, nil
	}
	if len(entered) == 0 || w.nav.CurrentView() == GroceryView {
		return OutcomeAlready, nil
	}

	shop := entered[0].Shop
	msg := fmt.Sprintf("You are near %s. Switching to the grocery list.", shop.Name)
	w.log.Info("shop nearby", "shop", shop.Name, "distance_km", entered[0].DistanceKm)
	if err := w.notifier.Notify(ctx, "Shop nearby", msg); err != nil {
		w.log.Error("proximity notify", "err", err)
	}
	if err := w.nav.Navigate(ctx, GroceryView); err != nil {
		return OutcomeError, fmt.Errorf("navigate to grocery list: %w", err)
	}
	return OutcomeAlerted, nil
}

// updateInside records which shops are in range and returns the ones that
// were not in range on the previous check.
func (w *Watcher) updateInside(nearby []NearbyShop) []NearbyShop {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := make(map[string]bool, len(nearby))
	var entered []NearbyShop
	for _, n := range nearby {
		next[n.Shop.ID] = true
		if !w.inside[n.Shop.ID] {
			entered = append(entered, n)
		}
	}
	w.inside = next
	return entered
}
