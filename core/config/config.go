package config

import (
	"reflect"
	"strings"

	"freight-reconciler/core/database"
	"freight-reconciler/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Paths holds the filesystem locations the batch commands work with.
type Paths struct {
	// Input is the directory containing carrier agreement workbooks
	// (rate cards and accessorial cost files).
	Input string `mapstructure:"input" default:"input"`
	// Mismatch is the workbook with flagged cost discrepancies.
	Mismatch string `mapstructure:"mismatch" default:"input/mismatch_filing.xlsx"`
	// Shipments is the workbook with joined LC/ETOF shipment rows.
	Shipments string `mapstructure:"shipments" default:"input/lc_etof_with_comments.xlsx"`
	// Output is the result workbook written after a batch run.
	Output string `mapstructure:"output" default:"result/conditions_checked.xlsx"`
}

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Paths holds the input/output locations for batch runs.
	Paths Paths `mapstructure:"paths"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run-history store.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. PATHS_INPUT -> paths.input)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
