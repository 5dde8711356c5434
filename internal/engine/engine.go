package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/cartengine/internal/cart"
	"github.com/angelmondragon/cartengine/internal/checkout"
	"github.com/angelmondragon/cartengine/internal/delivery"
	"github.com/angelmondragon/cartengine/internal/promos"
	"github.com/angelmondragon/cartengine/pkg/config"
	"github.com/angelmondragon/cartengine/pkg/db"
	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/angelmondragon/cartengine/pkg/logger"
	"github.com/angelmondragon/cartengine/pkg/metrics"
	"github.com/angelmondragon/cartengine/pkg/migrate"
	"github.com/angelmondragon/cartengine/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// Params wires an Engine. Only Config is required; any collaborator left nil
// is built from configuration.
type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	Registerer prometheus.Registerer
	Store      cart.SnapshotStore
	Validator  cart.PromoValidator
	Quoter     delivery.Quoter
	Catalog    cart.CatalogLoader
	Clock      func() time.Time
}

// Engine owns the shared collaborators behind cart sessions and checkout.
type Engine struct {
	cfg       *config.Config
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	store     cart.SnapshotStore
	validator cart.PromoValidator
	catalog   cart.CatalogLoader
	gate      *checkout.Gate
	promoRepo *promos.Repository
	dbClient  *db.Client
	redis     *redis.Client
	useSQLite bool
	clock     func() time.Time
}

// New builds an engine. The snapshot store follows CARTENGINE_CART_STORE; the
// promo validator reads the promo_codes table unless one is supplied.
func New(ctx context.Context, params Params) (eng *Engine, err error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	e := &Engine{
		cfg:       params.Config,
		logg:      logg,
		metrics:   metrics.NewCartMetrics(params.Registerer),
		store:     params.Store,
		validator: params.Validator,
		catalog:   params.Catalog,
		useSQLite: params.Config.FeatureFlags.UseSQLite,
		clock:     params.Clock,
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, e.Close())
		}
	}()

	backend := strings.ToLower(strings.TrimSpace(e.cfg.Cart.StoreBackend))
	if e.store == nil {
		if e.store, err = e.buildStore(ctx, backend); err != nil {
			return nil, err
		}
	}

	if e.validator == nil {
		if err := e.openDB(ctx); err != nil {
			return nil, fmt.Errorf("promo validator: %w", err)
		}
		currency, err := enums.ParseCurrency(e.cfg.Delivery.Currency)
		if err != nil {
			return nil, err
		}
		if e.validator, err = promos.NewValidator(e.promoRepo, currency, logg); err != nil {
			return nil, err
		}
	}

	quoter := params.Quoter
	if quoter == nil {
		if quoter, err = delivery.NewStaticQuoter(e.cfg.Delivery); err != nil {
			return nil, fmt.Errorf("delivery quoter: %w", err)
		}
	}
	if e.gate, err = checkout.NewGate(quoter, logg, e.metrics); err != nil {
		return nil, err
	}

	logg.Info(logg.WithField(ctx, "store", backend), "cart engine ready")
	return e, nil
}

func (e *Engine) buildStore(ctx context.Context, backend string) (cart.SnapshotStore, error) {
	switch backend {
	case "", config.StoreBackendMemory:
		return cart.NewMemoryStore(), nil
	case config.StoreBackendRedis:
		client, err := redis.New(ctx, e.cfg.Redis, e.logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		e.redis = client
		return cart.NewRedisStore(client, e.cfg.Cart.SnapshotTTL)
	case config.StoreBackendPostgres, config.StoreBackendSQLite:
		if backend == config.StoreBackendSQLite {
			e.useSQLite = true
		}
		if err := e.openDB(ctx); err != nil {
			return nil, err
		}
		return cart.NewSnapshotRepository(e.dbClient.DB()), nil
	default:
		return nil, fmt.Errorf("unknown cart store backend %q", backend)
	}
}

// openDB connects once and applies dev migrations.
func (e *Engine) openDB(ctx context.Context) error {
	if e.dbClient != nil {
		return nil
	}
	dbCfg := e.cfg.DB
	if e.useSQLite {
		dbCfg.Driver = db.DriverSQLite
	}
	client, err := db.New(ctx, dbCfg, e.logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	e.dbClient = client
	if err := migrate.MaybeRunDev(ctx, e.cfg, e.logg, client); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}
	e.promoRepo = promos.NewRepository(client.DB())
	return nil
}

// OpenSession loads (or starts) the cart with the given id.
func (e *Engine) OpenSession(ctx context.Context, cartID string) (*cart.Session, error) {
	return cart.OpenSession(ctx, cart.SessionParams{
		CartID:    cartID,
		Store:     e.store,
		Validator: e.validator,
		Catalog:   e.catalog,
		Logger:    e.logg,
		Metrics:   e.metrics,
		Cart:      e.cfg.Cart,
		Promo:     e.cfg.Promo,
		Clock:     e.clock,
	})
}

// DiscardCart deletes a persisted cart.
func (e *Engine) DiscardCart(ctx context.Context, cartID string) error {
	if err := e.store.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	return nil
}

func (e *Engine) Gate() *checkout.Gate {
	return e.gate
}

// Promos exposes the promo catalog; nil when promo validation was supplied by
// the caller and no database is configured.
func (e *Engine) Promos() *promos.Repository {
	return e.promoRepo
}

// Close releases the database and redis connections.
func (e *Engine) Close() error {
	var errs error
	if e.dbClient != nil {
		errs = multierr.Append(errs, e.dbClient.Close())
		e.dbClient = nil
	}
	if e.redis != nil {
		errs = multierr.Append(errs, e.redis.Close())
		e.redis = nil
	}
	return errs
}
