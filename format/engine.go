package format

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/WSU-CptS-581-2025/black-code-formatter/region"
	"github.com/WSU-CptS-581-2025/black-code-formatter/walk"
	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// ErrEngineNotFound is returned when the configured rewrite engine command is
// not available.
var ErrEngineNotFound = errors.New("rewrite engine command not found in PATH")

// Engine is the external rewrite command regions are handed to. Everything
// outside the regions passed to it must be treated as immutable; the engine
// receives one --line-range argument per region.
type Engine struct {
	command string
	options []string

	log        *log.Logger
	executable string // path to the executable described by command
	workingDir string
}

// Executable returns the path to the executable defined by the engine command.
func (e *Engine) Executable() string {
	return e.executable
}

// Apply invokes the engine for one file and its formattable regions.
func (e *Engine) Apply(ctx context.Context, file *walk.File, regions []region.Region) error {
	start := time.Now()

	// exit early if nothing to rewrite
	if len(regions) == 0 {
		return nil
	}

	args := make([]string, 0, len(e.options)+2*len(regions)+1)
	args = append(args, e.options...)

	for _, r := range regions {
		args = append(args, "--line-range", r.String())
	}

	args = append(args, file.Path)

	cmd := exec.CommandContext(ctx, e.executable, args...) //nolint:gosec
	// replace the default Cancel handler installed by CommandContext because it sends SIGKILL (-9).
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.Dir = e.workingDir

	e.log.Debugf("executing: %s", cmd.String())

	if out, err := cmd.CombinedOutput(); err != nil {
		e.log.Errorf("failed to rewrite %s: %s", file.RelPath, err)

		if len(out) > 0 {
			_, _ = fmt.Fprintf(os.Stderr, "\n%s\n", out)
		}

		return fmt.Errorf("engine '%s' failed on %s: %w", e.command, file.RelPath, err)
	}

	e.log.Debugf("%s: %d region(s) rewritten in %v", file.RelPath, len(regions), time.Since(start))

	return nil
}

// NewEngine resolves the engine command relative to the working directory and
// the current environment.
func NewEngine(command string, options []string, workingDir string) (*Engine, error) {
	env := expand.ListEnviron(os.Environ()...)

	executable, err := interp.LookPathDir(workingDir, env, command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEngineNotFound, command)
	}

	return &Engine{
		command:    command,
		options:    options,
		log:        log.WithPrefix(fmt.Sprintf("engine | %s", command)),
		executable: executable,
		workingDir: workingDir,
	}, nil
}
