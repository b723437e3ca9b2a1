package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	ErrInvalidWorkers  = errors.New("workers must be between 1 and 1,024")
	ErrInvalidWalkType = errors.New("walk must be one of auto, git or filesystem")
)

// Config holds the run-level options: everything controlling how a run
// executes, as opposed to the formatting options merged into a Resolved.
// Run options come from flags and the environment only, never from the
// project config file.
type Config struct {
	CacheDir         string   `mapstructure:"cache-dir"`
	Check            bool     `mapstructure:"check"`
	ClearCache       bool     `mapstructure:"clear-cache"`
	ConfigFile       string   `mapstructure:"config-file"`
	Engine           string   `mapstructure:"engine"`
	EngineOptions    []string `mapstructure:"engine-options"`
	LineRanges       []string `mapstructure:"line-ranges"`
	NoCache          bool     `mapstructure:"no-cache"`
	Quiet            bool     `mapstructure:"quiet"`
	Verbose          uint8    `mapstructure:"verbose"`
	Walk             string   `mapstructure:"walk"`
	Workers          int      `mapstructure:"workers"`
	WorkingDirectory string   `mapstructure:"working-dir"`
}

// SetFlags appends our flags to the provided flag set: first the run-level
// flags, then one flag per recognised formatting option, taking care that
// each flag name matches the option name exactly.
func SetFlags(fs *pflag.FlagSet) {
	fs.String(
		"cache-dir", "",
		"Directory in which to store the change detection cache. (env $BLACKFMT_CACHE_DIR)",
	)
	fs.Bool(
		"check", false,
		"Don't rewrite anything; report the regions that would be rewritten.",
	)
	fs.BoolP(
		"clear-cache", "c", false,
		"Reset the change detection cache. (env $BLACKFMT_CLEAR_CACHE)",
	)
	fs.String(
		"engine", "",
		"The rewrite engine command to invoke for each formattable region. When unset, "+
			"regions are reported but nothing is rewritten. (env $BLACKFMT_ENGINE)",
	)
	fs.StringSlice(
		"engine-options", nil,
		"Extra args to pass to the rewrite engine before the region args. (env $BLACKFMT_ENGINE_OPTIONS)",
	)
	fs.StringSlice(
		"line-ranges", nil,
		"When specified, rewrite only these line ranges, e.g. --line-ranges=1-10 --line-ranges=21-30. "+
			"Ranges are 1-indexed and inclusive on both ends.",
	)
	fs.Bool(
		"no-cache", false,
		"Ignore the change detection cache entirely. Useful for CI. (env $BLACKFMT_NO_CACHE)",
	)
	fs.BoolP(
		"quiet", "q", false,
		"Only log errors.",
	)
	fs.CountP(
		"verbose", "v",
		"Set the verbosity of logs e.g. -vv. (env $BLACKFMT_VERBOSE)",
	)
	fs.String(
		"walk", "auto",
		"The method used to traverse the files within the project root. Currently supports "+
			"<auto|git|filesystem>. (env $BLACKFMT_WALK)",
	)
	fs.Int(
		"workers", runtime.NumCPU(),
		"The number of files to process concurrently. (env $BLACKFMT_WORKERS)",
	)
	fs.String(
		"working-dir", ".",
		"Run as if blackfmt was started in the specified working directory instead of the current "+
			"working directory. (env $BLACKFMT_WORKING_DIR)",
	)

	// formatting options, mirroring the recognised option registry
	fs.IntP(
		"line-length", "l", 88,
		"How many characters per line to allow.",
	)
	fs.StringSliceP(
		"target-version", "t", nil,
		"Language versions that should be supported by the rewritten output, "+
			"e.g. py38. May be given multiple times.",
	)
	fs.String(
		"include", DefaultInclude,
		"A regular expression that matches files and directories that should be included in a run. "+
			"An empty value means all files are included. Use forward slashes for directories on "+
			"all platforms.",
	)
	fs.String(
		"exclude", DefaultExclude,
		"A regular expression that matches files and directories that should be excluded from a run.",
	)
	fs.String(
		"extend-exclude", "",
		"Like --exclude, but adds additional files and directories on top of the excluded ones, "+
			"instead of replacing them.",
	)
	fs.String(
		"force-exclude", "",
		"Like --exclude, but files and directories matching this regular expression are excluded "+
			"even when they are passed explicitly as arguments.",
	)
	fs.BoolP(
		"skip-string-normalization", "S", false,
		"Don't normalize string quotes or prefixes.",
	)
	fs.BoolP(
		"skip-magic-trailing-comma", "C", false,
		"Don't use trailing commas as a reason to split lines.",
	)
}

// Overrides collects the formatting options which were explicitly set on the
// command line. Only changed flags participate; a flag left at its default
// does not override the config file layer.
func Overrides(fs *pflag.FlagSet) (map[string]any, error) {
	overrides := map[string]any{}

	for _, opt := range Options {
		if !fs.Changed(opt.Name) {
			continue
		}

		var (
			raw any
			err error
		)

		switch opt.Kind {
		case KindInt:
			raw, err = fs.GetInt(opt.Name)
		case KindBool:
			raw, err = fs.GetBool(opt.Name)
		case KindStringList:
			raw, err = fs.GetStringSlice(opt.Name)
		default:
			raw, err = fs.GetString(opt.Name)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read flag %s: %w", opt.Name, err)
		}

		overrides[opt.Name] = raw
	}

	return overrides, nil
}

// NewViper creates a Viper instance pre-configured with the following options:
// * automatic env enabled
// * `BLACKFMT_` env prefix for environment variables
// * replacement of `-` and `.` with `_` when mapping flags to env e.g. `cache-dir` => `BLACKFMT_CACHE_DIR`.
func NewViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix("blackfmt")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	return v, nil
}

// FromViper takes a viper instance and produces a Config instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var err error

	cfg := &Config{}

	if err = v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// resolve the working directory to an absolute path
	cfg.WorkingDirectory, err = filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for working directory: %w", err)
	}

	// default if it isn't set (e.g. in tests when using Config directly)
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if !(1 <= cfg.Workers && cfg.Workers <= 1024) {
		return nil, ErrInvalidWorkers
	}

	if cfg.Walk == "" {
		cfg.Walk = "auto"
	}

	switch cfg.Walk {
	case "auto", "git", "filesystem":
	default:
		return nil, ErrInvalidWalkType
	}

	l := log.WithPrefix("config")
	l.Debugf("workers = %d", cfg.Workers)

	return cfg, nil
}

// Load resolves the effective formatting configuration from the given config
// file (empty means no file layer) and the explicit overrides.
func Load(configFile string, overrides map[string]any) (*Resolved, error) {
	var (
		fileValues map[string]any
		err        error
	)

	if configFile != "" {
		fileValues, err = ParseFile(configFile)
		if err != nil {
			return nil, err
		}
	}

	return Merge(configFile, fileValues, overrides)
}
