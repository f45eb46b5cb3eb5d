package config

import (
	"strings"

	"github.com/spf13/viper"

	"imagebench/errors"
)

// EnvPrefix prefixes every environment variable read by Load, for example
// IMAGEBENCH_STATS_DSN or IMAGEBENCH_OCI_NAMESPACE.
const EnvPrefix = "IMAGEBENCH"

// Settings holds everything that is not a positional argument.
type Settings struct {
	StatsDSN    string `mapstructure:"stats_dsn"`
	StatsDriver string `mapstructure:"stats_driver"`
	StatsNote   string `mapstructure:"stats_note"`
	RateLimit   int    `mapstructure:"rate_limit"`
	Cleanup     bool   `mapstructure:"cleanup"`
	LogJSON     bool   `mapstructure:"log_json"`
	Debug       bool   `mapstructure:"debug"`
	NoProgress  bool   `mapstructure:"no_progress"`
	NoColor     bool   `mapstructure:"no_color"`

	Bolt BoltSettings `mapstructure:"bolt"`
	PG   PGSettings   `mapstructure:"pg"`
	OCI  OCISettings  `mapstructure:"oci"`
	S3   S3Settings   `mapstructure:"s3"`
}

type BoltSettings struct {
	NoSync bool `mapstructure:"no_sync"`
}

type PGSettings struct {
	Driver string `mapstructure:"driver"`
	// MinPool is the lower bound of the connection pool; the pool grows to
	// the worker count when that is larger.
	MinPool int `mapstructure:"min_pool"`
}

type OCISettings struct {
	ConfigFile string `mapstructure:"config_file"`
	Profile    string `mapstructure:"profile"`
	Namespace  string `mapstructure:"namespace"`
	Host       string `mapstructure:"host"`
}

type S3Settings struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("stats_dsn", "")
	v.SetDefault("stats_driver", "postgres")
	v.SetDefault("stats_note", "")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("cleanup", false)
	v.SetDefault("log_json", false)
	v.SetDefault("debug", false)
	v.SetDefault("no_progress", false)
	v.SetDefault("no_color", false)

	v.SetDefault("bolt.no_sync", false)

	v.SetDefault("pg.driver", "postgres")
	v.SetDefault("pg.min_pool", 8)

	v.SetDefault("oci.config_file", "~/.oci/config")
	v.SetDefault("oci.profile", DefaultOCIProfile)
	v.SetDefault("oci.namespace", "")
	v.SetDefault("oci.host", "")

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.path_style", false)
}

// NewViper returns a viper instance with defaults and IMAGEBENCH_ environment
// bindings in place.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configFile when set and unmarshals the merged configuration.
// Flags bound to v take precedence over the environment, which takes
// precedence over the file.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(ExpandHome(configFile))
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configFile)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &s, nil
}
