package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything one extraction run needs.
type Config struct {
	Warehouse WarehouseConfig
	Period    PeriodConfig
	Output    OutputConfig
	Upload    UploadConfig
	Log       LogConfig
}

// WarehouseConfig holds Snowflake connection settings. User may be empty, in
// which case the operator is prompted for an identity at connect time.
type WarehouseConfig struct {
	User           string
	Account        string
	Role           string
	Warehouse      string
	Database       string
	Schema         string
	ConnectTimeout time.Duration
}

// PeriodConfig pins the reporting period. Month ("YYYY-MM") wins over
// Start/End; when all three are empty the default-month heuristic applies.
type PeriodConfig struct {
	Month string
	Start string
	End   string
}

// OutputConfig holds the export root and the per-provider subdirectories
// beneath it.
type OutputConfig struct {
	Root string
	Dirs map[string]string
}

// UploadConfig tunes the order-id staging upload.
type UploadConfig struct {
	ChunkSize int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// DefaultUser is the shared reporting identity used when SNOWFLAKE_USER is
// not set.
const DefaultUser = "finance.reporting@example.com"

// Provider subdirectories under Output.Root, mirroring the shared-drive
// layout the exports are delivered into.
var defaultOutputDirs = map[string]string{
	"Braintree": "01 Braintree/03 DWH",
	"PayPal":    "02 Paypal/03 DWH",
	"Uber":      "03 Uber Eats/03 DWH",
	"Deliveroo": "04 Deliveroo/03 DWH",
	"Just Eat":  "05 Just Eat/03 DWH",
	"Amazon":    "06 Amazon/03 DWH",
}

// Load reads configuration from environment variables. Warehouse parameters
// use the conventional SNOWFLAKE_* names; everything else is prefixed with
// O2C_. Unset variables fall back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("O2C")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("warehouse.user", DefaultUser)
	v.SetDefault("warehouse.account", "FD83201-FINOPS")
	v.SetDefault("warehouse.role", "OKTA_ANALYTICS_ROLE")
	v.SetDefault("warehouse.warehouse", "ANALYTICS")
	v.SetDefault("warehouse.database", "DBT_PROD")
	v.SetDefault("warehouse.schema", "CORE")
	v.SetDefault("warehouse.connect_timeout", "20s")
	v.SetDefault("period.month", "")
	v.SetDefault("period.start", "")
	v.SetDefault("period.end", "")
	v.SetDefault("output.root", "exports")
	v.SetDefault("upload.chunk_size", 25000)
	v.SetDefault("log.level", "info")

	envBindings := map[string]string{
		"warehouse.user":            "SNOWFLAKE_USER",
		"warehouse.account":         "SNOWFLAKE_ACCOUNT",
		"warehouse.role":            "SNOWFLAKE_ROLE",
		"warehouse.warehouse":       "SNOWFLAKE_WAREHOUSE",
		"warehouse.database":        "SNOWFLAKE_DATABASE",
		"warehouse.schema":          "SNOWFLAKE_SCHEMA",
		"warehouse.connect_timeout": "O2C_WAREHOUSE_CONNECT_TIMEOUT",
		"period.month":              "O2C_PERIOD_MONTH",
		"period.start":              "O2C_PERIOD_START",
		"period.end":                "O2C_PERIOD_END",
		"output.root":               "O2C_OUTPUT_ROOT",
		"upload.chunk_size":         "O2C_UPLOAD_CHUNK_SIZE",
		"log.level":                 "O2C_LOG_LEVEL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	dirs := make(map[string]string, len(defaultOutputDirs))
	for provider, dir := range defaultOutputDirs {
		dirs[provider] = dir
	}

	cfg := &Config{
		Warehouse: WarehouseConfig{
			User:           v.GetString("warehouse.user"),
			Account:        v.GetString("warehouse.account"),
			Role:           v.GetString("warehouse.role"),
			Warehouse:      v.GetString("warehouse.warehouse"),
			Database:       v.GetString("warehouse.database"),
			Schema:         v.GetString("warehouse.schema"),
			ConnectTimeout: v.GetDuration("warehouse.connect_timeout"),
		},
		Period: PeriodConfig{
			Month: v.GetString("period.month"),
			Start: v.GetString("period.start"),
			End:   v.GetString("period.end"),
		},
		Output: OutputConfig{
			Root: v.GetString("output.root"),
			Dirs: dirs,
		},
		Upload: UploadConfig{
			ChunkSize: v.GetInt("upload.chunk_size"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	return cfg, nil
}
