package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/cartengine/internal/promos"
	"github.com/angelmondragon/cartengine/pkg/config"
	"github.com/angelmondragon/cartengine/pkg/db"
	"github.com/angelmondragon/cartengine/pkg/db/models"
	"github.com/angelmondragon/cartengine/pkg/enums"
	"github.com/angelmondragon/cartengine/pkg/logger"
	"github.com/angelmondragon/cartengine/pkg/migrate"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	// Flags
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|seed-promo")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")

	// Command-specific flags
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	promoCode := flag.String("code", "", "promo code (for seed-promo)")
	promoType := flag.String("type", "percentage", "promo discount type: percentage|flat (for seed-promo)")
	promoValue := flag.String("value", "", "promo discount value (for seed-promo)")
	promoMin := flag.String("min-subtotal", "0", "minimum regular subtotal (for seed-promo)")
	promoCap := flag.String("max-discount", "", "cap for percentage promos (for seed-promo)")
	promoDesc := flag.String("description", "", "promo description (for seed-promo)")

	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	// Commands that do NOT require DB
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "missing -name for create")
			os.Exit(1)
		}
		logg.Info(ctx, "migrate ready")
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		logg.Info(ctx, "migrate ready")
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	// Everything else needs DB
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up":
		if err := migrate.Run(ctx, sqlDB, dbClient.Dialect(), *dir, "up"); err != nil {
			fmt.Fprintf(os.Stderr, "goose up failed: %v\n", err)
			os.Exit(1)
		}

	case "down":
		if err := migrate.Run(ctx, sqlDB, dbClient.Dialect(), *dir, "down"); err != nil {
			fmt.Fprintf(os.Stderr, "goose down failed: %v\n", err)
			os.Exit(1)
		}

	case "status":
		if err := migrate.Run(ctx, sqlDB, dbClient.Dialect(), *dir, "status"); err != nil {
			fmt.Fprintf(os.Stderr, "goose status failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing -version for version command")
			os.Exit(1)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, dbClient.Dialect(), *dir, *version); err != nil {
			fmt.Fprintf(os.Stderr, "goose version migrate failed: %v\n", err)
			os.Exit(1)
		}

	case "seed-promo":
		promo, err := buildPromo(*promoCode, *promoType, *promoValue, *promoMin, *promoCap, *promoDesc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid promo: %v\n", err)
			os.Exit(1)
		}
		created, err := promos.NewRepository(dbClient.DB()).Create(ctx, promo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed promo failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created promo:", created.Code)

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func buildPromo(code, discountType, value, minSubtotal, maxDiscount, description string) (*models.PromoCode, error) {
	kind, err := enums.ParseDiscountType(discountType)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	minimum, err := decimal.NewFromString(minSubtotal)
	if err != nil {
		return nil, fmt.Errorf("min-subtotal: %w", err)
	}
	promo := &models.PromoCode{
		Code:          code,
		Description:   description,
		DiscountType:  kind,
		DiscountValue: amount,
		MinSubtotal:   minimum,
		Active:        true,
	}
	if maxDiscount != "" {
		limit, err := decimal.NewFromString(maxDiscount)
		if err != nil {
			return nil, fmt.Errorf("max-discount: %w", err)
		}
		promo.MaxDiscount = &limit
	}
	return promo, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
