package cmd

import (
	"fmt"
	"os"

	"github.com/WSU-CptS-581-2025/black-code-formatter/build"
	"github.com/WSU-CptS-581-2025/black-code-formatter/config"
	"github.com/WSU-CptS-581-2025/black-code-formatter/format"
	"github.com/WSU-CptS-581-2025/black-code-formatter/stats"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRoot() (*cobra.Command, *stats.Stats) {
	// create a viper instance for reading in config
	v, err := config.NewViper()
	if err != nil {
		cobra.CheckErr(fmt.Errorf("failed to create viper instance: %w", err))
	}

	// create a new stats instance
	statz := stats.New()

	// create our root command
	cmd := &cobra.Command{
		Use:     build.Name + " <paths...>",
		Short:   "Resolve configuration and rewrite regions for a formatting run",
		Version: build.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runE(v, &statz, cmd, args)
		},
	}

	cmd.SetVersionTemplate("blackfmt {{.Version}}")

	fs := cmd.Flags()

	// add our config flags to the command's flag set
	config.SetFlags(fs)

	// a couple of special flags without a config file counterpart
	fs.String(
		"config-file", "",
		"Load the config file from the given path (defaults to searching upwards from the common "+
			"ancestor of the input paths for "+config.ConfigFileNames[0]+" or "+config.ConfigFileNames[1]+").",
	)

	cmd.MarkFlagsMutuallyExclusive("no-cache", "clear-cache")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	// bind our command's flags to viper
	if err := v.BindPFlags(fs); err != nil {
		cobra.CheckErr(fmt.Errorf("failed to bind global config to viper: %w", err))
	}

	return cmd, &statz
}

func runE(v *viper.Viper, statz *stats.Stats, cmd *cobra.Command, args []string) error {
	// change working directory if required
	workingDir := v.GetString("working-dir")
	if workingDir != "." && workingDir != "" {
		if err := os.Chdir(workingDir); err != nil {
			return fmt.Errorf("failed to change working directory: %w", err)
		}
	}

	// allow the config file to come from the environment as well
	if v.GetString("config-file") == "" {
		if env := os.Getenv("BLACKFMT_CONFIG"); env != "" {
			v.Set("config-file", env)
		}
	}

	// configure logging
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	if v.GetBool("quiet") {
		// if quiet, we only log errors
		log.SetLevel(log.ErrorLevel)
	} else {
		// otherwise, the verbose flag controls the log level
		switch v.GetInt("verbose") {
		case 0:
			log.SetLevel(log.WarnLevel)
		case 1:
			log.SetLevel(log.InfoLevel)
		default:
			log.SetLevel(log.DebugLevel)
		}
	}

	// format
	return format.Run(v, statz, cmd, args) //nolint:wrapcheck
}
