package format

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/WSU-CptS-581-2025/black-code-formatter/cache"
	"github.com/WSU-CptS-581-2025/black-code-formatter/config"
	"github.com/WSU-CptS-581-2025/black-code-formatter/directive"
	"github.com/WSU-CptS-581-2025/black-code-formatter/region"
	"github.com/WSU-CptS-581-2025/black-code-formatter/stats"
	"github.com/WSU-CptS-581-2025/black-code-formatter/walk"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var ErrRangesSinglePath = errors.New("--line-ranges requires exactly one input path")

// Run executes one formatting run: resolve configuration, discover and filter
// candidate files, scan them for directives, intersect with any requested
// line ranges, and hand the surviving regions to the rewrite engine.
func Run(v *viper.Viper, statz *stats.Stats, cmd *cobra.Command, paths []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrides, err := config.Overrides(cmd.Flags())
	if err != nil {
		return err
	}

	// requested ranges are validated up front: a malformed range is a caller
	// bug and nothing may be rewritten after one
	ranges, err := region.ParseAll(cfg.LineRanges)
	if err != nil {
		return err
	}

	if len(ranges) > 0 && len(paths) != 1 {
		return ErrRangesSinglePath
	}

	// resolve the input paths against the working directory
	if len(paths) == 0 {
		paths = []string{cfg.WorkingDirectory}
	}

	for idx, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.WorkingDirectory, path)
		}

		if _, err = os.Stat(path); err != nil {
			return fmt.Errorf("path %s not found: %w", paths[idx], err)
		}

		paths[idx] = filepath.Clean(path)
	}

	l := log.WithPrefix("format")

	// locate the project root and config file, unless one was given explicitly
	var (
		root       string
		configFile string
	)

	if cfg.ConfigFile != "" {
		configFile = cfg.ConfigFile

		if root, err = config.CommonAncestor(paths); err != nil {
			return err
		}
	} else {
		if root, configFile, err = config.FindProjectRoot(paths); err != nil {
			return err
		}

		if configFile == "" {
			// no project file before the repository boundary or filesystem
			// root; fall back to the user-global config, if there is one
			configFile = config.FindUserConfig()
		}
	}

	// resolve the effective configuration through the per-root cache, so a
	// config error aborts the run before any file is processed
	resolved, err := config.NewCache().Resolve(root, func() (*config.Resolved, error) {
		return config.Load(configFile, overrides)
	})
	if err != nil {
		return err
	}

	if resolved.Path() == "" {
		l.Debugf("no config file found, using defaults")
	} else {
		l.Debugf("using config file: %s", resolved.Path())
	}

	// change detection cache
	var db *cache.Cache

	if !cfg.NoCache {
		if db, err = cache.Open(root, cfg.CacheDir); err != nil {
			return err
		}

		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				l.Errorf("failed to close cache: %v", closeErr)
			}
		}()

		if cfg.ClearCache {
			if err = db.Clear(); err != nil {
				return err
			}
		}
	}

	// the rewrite engine is optional; without one we only report regions
	var engine *Engine

	if cfg.Engine != "" && !cfg.Check {
		if engine, err = NewEngine(cfg.Engine, cfg.EngineOptions, root); err != nil {
			return err
		}
	}

	walker, err := walk.New(cfg.Walk, root, paths)
	if err != nil {
		return err
	}

	run := &run{
		resolved:  resolved,
		signature: resolved.Signature(),
		ranges:    ranges,
		db:        db,
		engine:    engine,
		statz:     statz,
		log:       l,
	}

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(cfg.Workers)

	walkErr := walker.Walk(ctx, func(file *walk.File, err error) error {
		statz.Add(stats.Traversed, 1)

		if err != nil {
			// fatal for this file only
			l.Errorf("failed to traverse %s: %v", file.Path, err)

			return nil
		}

		eg.Go(func() error {
			return run.process(ctx, file)
		})

		return nil
	})

	if err = eg.Wait(); err != nil {
		return err
	}

	return walkErr
}

// run holds the read-only state shared by the workers of one invocation.
type run struct {
	resolved  *config.Resolved
	signature []byte
	ranges    []region.Region
	db        *cache.Cache
	engine    *Engine
	statz     *stats.Stats
	log       *log.Logger
}

// process runs the sequential per-file pipeline: match, change detection,
// directive scan, range intersection, engine invocation.
func (r *run) process(ctx context.Context, file *walk.File) error {
	decision := r.resolved.Matcher().Match(file.RelPath)
	if !decision.Include {
		r.log.Debugf("%s: excluded by %s", file.RelPath, decision.Rule)

		return nil
	}

	r.statz.Add(stats.Matched, 1)

	if r.db != nil {
		entry, err := r.db.Get(file.RelPath)
		if err == nil && !entry.Changed(file.Info, r.signature) {
			r.log.Debugf("%s: unchanged since last run", file.RelPath)

			return nil
		}
	}

	src, err := os.ReadFile(file.Path)
	if err != nil {
		// fatal for this file only, the run continues
		r.log.Errorf("failed to read %s: %v", file.RelPath, err)

		return nil
	}

	scan := directive.Scan(string(src))
	r.statz.Add(stats.Scanned, 1)

	for _, diag := range scan.Diagnostics {
		r.log.Warnf("%s: %s", file.RelPath, diag)
	}

	regions := region.Intersect(scan, r.ranges)

	if len(regions) == 0 {
		r.log.Debugf("%s: nothing to rewrite", file.RelPath)
	} else if r.engine == nil {
		r.log.Infof("%s: would rewrite %v", file.RelPath, regions)
	} else {
		if err = r.engine.Apply(ctx, file, regions); err != nil {
			return err
		}

		r.statz.Add(stats.Formatted, 1)
	}

	if r.db != nil {
		info, err := os.Stat(file.Path)
		if err != nil {
			return fmt.Errorf("failed to stat %s after processing: %w", file.RelPath, err)
		}

		entry := &cache.Entry{
			Size:      info.Size(),
			ModTime:   info.ModTime().Unix(),
			Signature: r.signature,
		}

		if err = r.db.Put(file.RelPath, entry); err != nil {
			return err
		}
	}

	return nil
}
