// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseDSN string

	// TaxRate is the VAT fraction embedded in synced amounts. The deployment
	// default reflects the 25% Norwegian MVA but it is jurisdiction-dependent.
	TaxRate decimal.Decimal

	// ReconcileTolerance is the relative delta treated as a match.
	ReconcileTolerance decimal.Decimal

	// PopulationThreshold is the active-subscription count divergence beyond
	// which a reconciliation gap is attributed to population change.
	PopulationThreshold int

	// HeaderSearchBound caps the report importer's header-offset search.
	HeaderSearchBound int

	SnapshotPollInterval time.Duration

	OTLPEndpoint string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment, honouring a local .env file
// when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:          getenv("NORRA_ENV", "development"),
		HTTPAddr:             getenv("NORRA_HTTP_ADDR", ":8080"),
		DatabaseDSN:          getenv("DATABASE_URL", "postgres://localhost:5432/norra?sslmode=disable"),
		TaxRate:              decimal.RequireFromString("0.25"),
		ReconcileTolerance:   decimal.RequireFromString("0.02"),
		PopulationThreshold:  25,
		HeaderSearchBound:    5,
		SnapshotPollInterval: 1 * time.Hour,
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if v := os.Getenv("TAX_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, err
		}
		cfg.TaxRate = rate
	}
	if v := os.Getenv("RECONCILE_TOLERANCE"); v != "" {
		tol, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, err
		}
		cfg.ReconcileTolerance = tol
	}
	if v := os.Getenv("POPULATION_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.PopulationThreshold = n
	}
	if v := os.Getenv("HEADER_SEARCH_BOUND"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.HeaderSearchBound = n
	}
	if v := os.Getenv("SNAPSHOT_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, err
		}
		cfg.SnapshotPollInterval = d
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
