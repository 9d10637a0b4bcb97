package shared

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// ConfigPathEnv names an optional YAML file layered between the defaults
// and the environment.
const ConfigPathEnv = "CONFIG_PATH"

type Config struct {
	AppEnv      string `koanf:"app_env" validate:"required"`
	LogLevel    string `koanf:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	HTTPAddr    string `koanf:"http_addr" validate:"required"`
	MetricsAddr string `koanf:"metrics_addr"`

	MySQLDSN  string `koanf:"mysql_dsn"`
	RedisAddr string `koanf:"redis_addr"`
	RedisPass string `koanf:"redis_password"`
	RedisDB   int    `koanf:"redis_db" validate:"min=0,max=15"`

	DataPath     string        `koanf:"data_path" validate:"required"`
	CSVDelimiter string        `koanf:"csv_delimiter" validate:"len=1"`
	GeoSource    string        `koanf:"geo_source"`
	GeoRPS       int           `koanf:"geo_rps" validate:"min=1"`
	ArtifactDir  string        `koanf:"artifact_dir" validate:"required"`
	CacheTTL     time.Duration `koanf:"cache_ttl" validate:"min=0"`

	Seed             int64   `koanf:"seed"`
	TestSize         float64 `koanf:"test_size" validate:"gt=0,lt=1"`
	CVFolds          int     `koanf:"cv_folds" validate:"min=2,max=20"`
	NEstimators      int     `koanf:"n_estimators" validate:"min=1,max=2000"`
	MaxDepth         int     `koanf:"max_depth" validate:"min=0"`
	MinSamplesLeaf   int     `koanf:"min_samples_leaf" validate:"min=1"`
	Workers          int     `koanf:"workers" validate:"min=1,max=256"`
	CountryThreshold int     `koanf:"country_threshold" validate:"min=1"`
}

func Defaults() Config {
	return Config{
		AppEnv:           "prod",
		LogLevel:         "info",
		HTTPAddr:         ":8080",
		MetricsAddr:      ":9100",
		MySQLDSN:         "root:root@tcp(localhost:3306)/bookings?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:        "localhost:6379",
		DataPath:         "data/hotel_bookings.csv",
		CSVDelimiter:     ",",
		GeoSource:        "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson/ne_110m_admin_0_countries.geojson",
		GeoRPS:           2,
		ArtifactDir:      "artifacts",
		CacheTTL:         15 * time.Minute,
		Seed:             42,
		TestSize:         0.2,
		CVFolds:          5,
		NEstimators:      100,
		MinSamplesLeaf:   1,
		Workers:          8,
		CountryThreshold: 500,
	}
}

// Load layers defaults < optional YAML file (CONFIG_PATH) < environment.
// Environment keys are the lower-cased config keys: HTTP_ADDR -> http_addr.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("config file loaded")
	}

	known := make(map[string]struct{}, len(k.Keys()))
	for _, key := range k.Keys() {
		known[key] = struct{}{}
	}
	// Unknown variables are skipped so PATH, HOME and friends stay out.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	err := Validator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Delimiter is the CSV field separator as a rune.
func (c Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}
