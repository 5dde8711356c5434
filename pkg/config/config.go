package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Promo        PromoConfig
	Delivery     DeliveryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Cart.StoreBackend == StoreBackendPostgres {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Delivery.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTENGINE_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"CARTENGINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTENGINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARTENGINE_DB_DSN"`
	Driver string `envconfig:"CARTENGINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARTENGINE_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTENGINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTENGINE_DB_USER"`
	LegacyPassword string `envconfig:"CARTENGINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTENGINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTENGINE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"CARTENGINE_DB_SQLITE_PATH" default:"file:cartengine.db?cache=shared"`

	MaxOpenConns    int           `envconfig:"CARTENGINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTENGINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTENGINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTENGINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTENGINE_REDIS_URL"`
	Address      string        `envconfig:"CARTENGINE_REDIS_ADDR"`
	Password     string        `envconfig:"CARTENGINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTENGINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTENGINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTENGINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTENGINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTENGINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTENGINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARTENGINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARTENGINE_AUTO_MIGRATE" default:"false"`
}

// CartConfig holds the knobs of the cart mutation API.
type CartConfig struct {
	StoreBackend     string        `envconfig:"CARTENGINE_CART_STORE" default:"memory"`
	MergeIdentical   bool          `envconfig:"CARTENGINE_CART_MERGE_IDENTICAL" default:"true"`
	MessageMaxLength int           `envconfig:"CARTENGINE_CART_MESSAGE_MAX_LENGTH" default:"150"`
	SnapshotTTL      time.Duration `envconfig:"CARTENGINE_CART_SNAPSHOT_TTL" default:"720h"`
}

// PromoConfig tunes the real-time promo preview.
type PromoConfig struct {
	DebounceQuiet     time.Duration `envconfig:"CARTENGINE_PROMO_DEBOUNCE" default:"400ms"`
	MinCodeLength     int           `envconfig:"CARTENGINE_PROMO_MIN_LENGTH" default:"3"`
	ValidationTimeout time.Duration `envconfig:"CARTENGINE_PROMO_VALIDATION_TIMEOUT" default:"5s"`
}

// DeliveryConfig seeds the static delivery quoter. Overrides are keyed by postal
// code with values formatted as "<charge>/<free threshold>".
type DeliveryConfig struct {
	Currency              string            `envconfig:"CARTENGINE_CURRENCY" default:"INR"`
	DefaultCharge         string            `envconfig:"CARTENGINE_DELIVERY_CHARGE" default:"50"`
	FreeDeliveryThreshold string            `envconfig:"CARTENGINE_FREE_DELIVERY_THRESHOLD" default:"1500"`
	PostalOverrides       map[string]string `envconfig:"CARTENGINE_DELIVERY_POSTAL_OVERRIDES"`
}

// Charge returns the default delivery charge.
func (d DeliveryConfig) Charge() decimal.Decimal {
	return decimal.RequireFromString(d.DefaultCharge)
}

// Threshold returns the default free-delivery threshold.
func (d DeliveryConfig) Threshold() decimal.Decimal {
	return decimal.RequireFromString(d.FreeDeliveryThreshold)
}

func (d DeliveryConfig) validate() error {
	if _, err := enums.ParseCurrency(d.Currency); err != nil {
		return fmt.Errorf("%s: %w", EnvCurrency, err)
	}
	for name, raw := range map[string]string{
		EnvDeliveryCharge:    d.DefaultCharge,
		EnvFreeDeliveryLimit: d.FreeDeliveryThreshold,
	} {
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if value.IsNegative() {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
