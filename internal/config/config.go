// Package config loads hbquery settings from environment variables and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/storage/postgres"
)

// Config represents the application configuration.
type Config struct {
	Ledger         string `validate:"required"`
	CatalogBackend string `validate:"oneof=file sqlite sqlite3 postgres"`
	Catalog        string `validate:"required_unless=CatalogBackend postgres"`
	PostgresDSN    string `validate:"required_if=CatalogBackend postgres"`
	PostgresSchema string `validate:"pgschema"`
	Workers        int    `validate:"min=0,max=256"`
	Debug          bool
}

const (
	DefaultLedger         = "Gastos.xhb"
	DefaultCatalogBackend = "file"
	DefaultCatalog        = "filters.json"
	DefaultPostgresSchema = "hbquery"
)

// Load reads configuration from the environment. When envPath is set the
// file must exist; otherwise a .env in the working directory is used if
// present.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, hqerrors.Wrap(hqerrors.ErrConfig, "load env file "+envPath, err)
		}
	} else {
		_ = godotenv.Load()
	}

	workers, err := parseIntEnv("HBQUERY_WORKERS", 0)
	if err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrConfig, "invalid HBQUERY_WORKERS", err)
	}
	debug, err := parseBoolEnv("HBQUERY_DEBUG", false)
	if err != nil {
		return nil, hqerrors.Wrap(hqerrors.ErrConfig, "invalid HBQUERY_DEBUG", err)
	}

	return &Config{
		Ledger:         getEnvOrDefault("HBQUERY_LEDGER", DefaultLedger),
		CatalogBackend: getEnvOrDefault("HBQUERY_CATALOG_BACKEND", DefaultCatalogBackend),
		Catalog:        getEnvOrDefault("HBQUERY_CATALOG", DefaultCatalog),
		PostgresDSN:    os.Getenv("HBQUERY_PG_DSN"),
		PostgresSchema: getEnvOrDefault("HBQUERY_PG_SCHEMA", DefaultPostgresSchema),
		Workers:        workers,
		Debug:          debug,
	}, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// pgschema only applies when the catalog lives in postgres.
	_ = v.RegisterValidation("pgschema", func(fl validator.FieldLevel) bool {
		if fl.Parent().FieldByName("CatalogBackend").String() != "postgres" {
			return true
		}
		return postgres.ValidSchemaName(fl.Field().String())
	})
	return v
}

// Validate checks the configuration after flags have been applied.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return hqerrors.Wrap(hqerrors.ErrConfig, "validate config", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return hqerrors.New(hqerrors.ErrConfig, "invalid config: "+strings.Join(msgs, ", "))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}
