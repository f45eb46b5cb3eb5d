package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"imagebench/config"
	"imagebench/errors"
	"imagebench/logger"
)

// flagKeys maps persistent flags to their configuration keys.
var flagKeys = map[string]string{
	"stats-dsn":     "stats_dsn",
	"stats-driver":  "stats_driver",
	"stats-note":    "stats_note",
	"rate-limit":    "rate_limit",
	"cleanup":       "cleanup",
	"log-json":      "log_json",
	"debug":         "debug",
	"no-progress":   "no_progress",
	"no-color":      "no_color",
	"bolt-no-sync":  "bolt.no_sync",
	"pg-driver":     "pg.driver",
	"pg-min-pool":   "pg.min_pool",
	"oci-config":    "oci.config_file",
	"oci-profile":   "oci.profile",
	"oci-namespace": "oci.namespace",
	"oci-host":      "oci.host",
	"s3-region":     "s3.region",
	"s3-endpoint":   "s3.endpoint",
	"s3-path-style": "s3.path_style",
}

// newRootCmd builds the command tree. Results go to stdout, progress bars
// and diagnostics to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := config.NewViper()
	var cfgFile string
	var settings *config.Settings

	root := &cobra.Command{
		Use:   "imagebench",
		Short: "Write/read throughput of synthetic images against storage backends",
		Long: `imagebench generates synthetic PNG images, writes them to a storage backend
in sequential batches with parallel workers inside each batch, reads them back
and reports per-batch and per-pass throughput.

Positional arguments (all optional, non-numeric values keep the default):
  [count] [pixels-per-side] [images-dir] [target] [concurrency] [batch-size]
A count of 0 runs empty passes; a negative count uses every image already in
images-dir.

Examples:
  imagebench bolt 10000 128 images ./boltdata
  imagebench pg 50000 256 images "postgres://bench:bench@db:5432/bench" 32 5000
  imagebench tikv 100000 128 images 10.0.0.1:2379,10.0.0.2:2379
  imagebench s3 1000 64 images my-bucket --s3-endpoint http://localhost:9000 --s3-path-style`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			settings = s
			if err := logger.Initialize(s.LogJSON, s.Debug); err != nil {
				return errors.Wrap(err, "initialize logger")
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.String("stats-dsn", "", "database receiving bench_stats rows; empty disables stats")
	flags.String("stats-driver", "postgres", "stats database driver: postgres or sqlite3")
	flags.String("stats-note", "", "free-form note stored with every stats row")
	flags.Int("rate-limit", 0, "max operations started per second (0 means no limit)")
	flags.Bool("cleanup", false, "delete every written key after the read pass")
	flags.Bool("log-json", false, "log diagnostics as JSON")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("no-progress", false, "hide progress bars")
	flags.Bool("no-color", false, "disable coloured output")
	flags.Bool("bolt-no-sync", false, "skip fsync after each bolt commit")
	flags.String("pg-driver", "postgres", "sql driver for the pg backend: postgres or sqlite3")
	flags.Int("pg-min-pool", 8, "minimum connection pool size for the pg backend")
	flags.String("oci-config", "~/.oci/config", "path to the OCI config file")
	flags.String("oci-profile", config.DefaultOCIProfile, "profile in the OCI config file")
	flags.String("oci-namespace", "", "object storage namespace (looked up when empty)")
	flags.String("oci-host", "", "override the object storage endpoint")
	flags.String("s3-region", "", "AWS region")
	flags.String("s3-endpoint", "", "custom S3 endpoint (MinIO, LocalStack)")
	flags.Bool("s3-path-style", false, "use path-style S3 addressing")
	bindFlags(v, flags)

	for _, b := range backends {
		root.AddCommand(newBackendCmd(b, func() *config.Settings { return settings }, stdout, stderr))
	}
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
