package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets a variable for the duration of the test. t.Setenv snapshots
// the original value so cleanup restores it after the explicit unset.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t,
		"SNOWFLAKE_USER", "SNOWFLAKE_ACCOUNT", "SNOWFLAKE_ROLE",
		"SNOWFLAKE_WAREHOUSE", "SNOWFLAKE_DATABASE", "SNOWFLAKE_SCHEMA",
		"O2C_WAREHOUSE_CONNECT_TIMEOUT", "O2C_PERIOD_MONTH", "O2C_PERIOD_START",
		"O2C_PERIOD_END", "O2C_OUTPUT_ROOT", "O2C_UPLOAD_CHUNK_SIZE", "O2C_LOG_LEVEL",
	)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Warehouse.User != DefaultUser {
		t.Errorf("Warehouse.User = %q, want %q", cfg.Warehouse.User, DefaultUser)
	}
	if cfg.Warehouse.Account != "FD83201-FINOPS" {
		t.Errorf("Warehouse.Account = %q, want FD83201-FINOPS", cfg.Warehouse.Account)
	}
	if cfg.Warehouse.Role != "OKTA_ANALYTICS_ROLE" {
		t.Errorf("Warehouse.Role = %q, want OKTA_ANALYTICS_ROLE", cfg.Warehouse.Role)
	}
	if cfg.Warehouse.Warehouse != "ANALYTICS" {
		t.Errorf("Warehouse.Warehouse = %q, want ANALYTICS", cfg.Warehouse.Warehouse)
	}
	if cfg.Warehouse.Database != "DBT_PROD" {
		t.Errorf("Warehouse.Database = %q, want DBT_PROD", cfg.Warehouse.Database)
	}
	if cfg.Warehouse.Schema != "CORE" {
		t.Errorf("Warehouse.Schema = %q, want CORE", cfg.Warehouse.Schema)
	}
	if cfg.Warehouse.ConnectTimeout != 20*time.Second {
		t.Errorf("Warehouse.ConnectTimeout = %v, want 20s", cfg.Warehouse.ConnectTimeout)
	}
	if cfg.Period.Month != "" || cfg.Period.Start != "" || cfg.Period.End != "" {
		t.Errorf("Period = %+v, want all fields empty", cfg.Period)
	}
	if cfg.Output.Root != "exports" {
		t.Errorf("Output.Root = %q, want exports", cfg.Output.Root)
	}
	if len(cfg.Output.Dirs) != 6 {
		t.Errorf("len(Output.Dirs) = %d, want 6", len(cfg.Output.Dirs))
	}
	if dir := cfg.Output.Dirs["Braintree"]; dir != "01 Braintree/03 DWH" {
		t.Errorf("Output.Dirs[Braintree] = %q, want '01 Braintree/03 DWH'", dir)
	}
	if dir := cfg.Output.Dirs["Just Eat"]; dir != "05 Just Eat/03 DWH" {
		t.Errorf("Output.Dirs[Just Eat] = %q, want '05 Just Eat/03 DWH'", dir)
	}
	if cfg.Upload.ChunkSize != 25000 {
		t.Errorf("Upload.ChunkSize = %d, want 25000", cfg.Upload.ChunkSize)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SNOWFLAKE_USER", "casey.archer@example.com")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "REPORTING_XL")
	t.Setenv("O2C_WAREHOUSE_CONNECT_TIMEOUT", "45s")
	t.Setenv("O2C_PERIOD_MONTH", "2025-10")
	t.Setenv("O2C_OUTPUT_ROOT", "/mnt/finance/exports")
	t.Setenv("O2C_UPLOAD_CHUNK_SIZE", "5000")
	t.Setenv("O2C_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Warehouse.User != "casey.archer@example.com" {
		t.Errorf("Warehouse.User = %q, want env override", cfg.Warehouse.User)
	}
	if cfg.Warehouse.Warehouse != "REPORTING_XL" {
		t.Errorf("Warehouse.Warehouse = %q, want REPORTING_XL", cfg.Warehouse.Warehouse)
	}
	if cfg.Warehouse.ConnectTimeout != 45*time.Second {
		t.Errorf("Warehouse.ConnectTimeout = %v, want 45s", cfg.Warehouse.ConnectTimeout)
	}
	if cfg.Period.Month != "2025-10" {
		t.Errorf("Period.Month = %q, want 2025-10", cfg.Period.Month)
	}
	if cfg.Output.Root != "/mnt/finance/exports" {
		t.Errorf("Output.Root = %q, want /mnt/finance/exports", cfg.Output.Root)
	}
	if cfg.Upload.ChunkSize != 5000 {
		t.Errorf("Upload.ChunkSize = %d, want 5000", cfg.Upload.ChunkSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}
