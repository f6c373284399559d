package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cloudcollector/internal/config"
	"cloudcollector/internal/env"
	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
)

var (
	configFile string
	cfg        *config.Config
)

// flagKeys maps configuration keys to the flags that may set them.
var flagKeys = map[string]string{
	"log.json":        "log-json",
	"log.level":       "log-level",
	"profile":         "profile",
	"regions":         "regions",
	"region_services": "region-services",
	"services":        "services",
	"concurrency":     "concurrency",
	"create_new_file": "create-new-file",
	"output.dir":      "output-dir",
	"catalog.paths":   "catalog",
	"aws.timeout":     "timeout",
	"aws.rate":        "rate",
}

var rootCmd = &cobra.Command{
	Use:   "cloudcollector",
	Short: "Collect a cloud account's resource inventory",
	Long: `cloudcollector enumerates the resources of a cloud account through the
provider's command-line tool and writes them as JSON documents.

Examples:
  cloudcollector aws list-services
  cloudcollector aws collect --profile prod
  cloudcollector aws collect --regions us-east-1 --region-services acm,cloudfront
  cloudcollector ingest`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Load(nil); err != nil {
			return err
		}
		v, err := config.New(configFile)
		if err != nil {
			return err
		}
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		if cfg, err = config.Load(v); err != nil {
			return err
		}
		if err := logging.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (toml, yaml or json)")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(awsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindFlags binds the flags present on this command to their keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "failed to bind --%s", name)
		}
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// printError writes err and any hints attached to it to stderr.
func printError(err error) {
	pterm.Error.WithWriter(os.Stderr).Println(err.Error())
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(os.Stderr, "💡 %s\n", hints)
	}
}
