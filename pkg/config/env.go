package config

import "github.com/angelmondragon/cartengine/pkg/env"

// EnvPrefix is handed to envconfig; every field carries an explicit name.
const EnvPrefix = env.Prefix

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
)

const (
	EnvAppEnv            = "CARTENGINE_APP_ENV"
	EnvLogLevel          = "CARTENGINE_LOG_LEVEL"
	EnvDBDSN             = "CARTENGINE_DB_DSN"
	EnvDBHost            = "CARTENGINE_DB_HOST"
	EnvDBUser            = "CARTENGINE_DB_USER"
	EnvDBName            = "CARTENGINE_DB_NAME"
	EnvRedisURL          = "CARTENGINE_REDIS_URL"
	EnvCartStore         = "CARTENGINE_CART_STORE"
	EnvCartMerge         = "CARTENGINE_CART_MERGE_IDENTICAL"
	EnvPromoDebounce     = "CARTENGINE_PROMO_DEBOUNCE"
	EnvDeliveryCharge    = "CARTENGINE_DELIVERY_CHARGE"
	EnvFreeDeliveryLimit = "CARTENGINE_FREE_DELIVERY_THRESHOLD"
	EnvPostalOverrides   = "CARTENGINE_DELIVERY_POSTAL_OVERRIDES"
	EnvCurrency          = "CARTENGINE_CURRENCY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
