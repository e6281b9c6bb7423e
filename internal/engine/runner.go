// Package engine invokes the external test engine over scenario documents.
//
// The engine is a blocking subprocess. Run returns only after it exits, with
// no timeout of its own; callers bound it with the context if they need to.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/eykd/cukable-go/internal/logging"
)

// Runner runs the engine over featureFiles, asking its formatting plugin to
// write one result artifact per file under outDir. extraArgs is a
// shell-style argument string passed through to the engine.
type Runner interface {
	Run(ctx context.Context, featureFiles []string, outDir, extraArgs string) error
}

// ExitError reports that the engine ran but exited unsuccessfully.
type ExitError struct {
	Code   int
	Args   []string
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("engine exited with status %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ExecRunner runs the engine as a local command.
type ExecRunner struct {
	// Command is the engine executable, e.g. "cucumber".
	Command string
	// BaseArgs are passed before the generated flags.
	BaseArgs []string
	// Require is a load path for the formatting plugin; empty omits --require.
	Require string
	// Formatter names the plugin that writes result artifacts.
	Formatter string
	// Dir is the working directory; empty uses the current directory.
	Dir string
	// Stdout receives the engine's standard output; nil discards it.
	Stdout io.Writer
	Logger *zap.Logger
}

// Args returns the full argument list Run passes to Command.
func (r *ExecRunner) Args(featureFiles []string, outDir, extraArgs string) ([]string, error) {
	extra, err := shellquote.Split(extraArgs)
	if err != nil {
		return nil, fmt.Errorf("parsing engine arguments %q: %w", extraArgs, err)
	}
	args := append([]string{}, r.BaseArgs...)
	if r.Require != "" {
		args = append(args, "--require", r.Require)
	}
	if r.Formatter != "" {
		args = append(args, "--format", r.Formatter)
	}
	args = append(args, "--out", outDir)
	args = append(args, extra...)
	return append(args, featureFiles...), nil
}

// Run executes the engine and waits for it to exit. A non-zero exit is
// returned as *ExitError; failure to start is returned as a plain error.
func (r *ExecRunner) Run(ctx context.Context, featureFiles []string, outDir, extraArgs string) error {
	args, err := r.Args(featureFiles, outDir, extraArgs)
	if err != nil {
		return err
	}
	logger := logging.OrNop(r.Logger)

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = io.Discard
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("running engine", zap.String("command", r.Command), zap.Strings("args", args))
	err = cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Args: args, Stderr: stderr.String()}
	}
	if err != nil {
		return fmt.Errorf("starting engine %s: %w", r.Command, err)
	}
	logger.Debug("engine finished", zap.Int("features", len(featureFiles)))
	return nil
}
