// Package cli hosts the imgbench engine behind a line-oriented command
// language, used both by the interactive REPL and by batch scripts.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/Fepozopo/imgbench/pkg/config"
	"github.com/Fepozopo/imgbench/pkg/engine"
)

// Host owns an engine and the session that drives it.
type Host struct {
	Engine  *engine.Engine
	Session *Session
}

// NewHost builds the logger, engine and session from cfg. Logs go to
// errOut; command output goes to out.
func NewHost(cfg config.Config, out, errOut io.Writer) *Host {
	logger := cfg.Logger(errOut)
	eng := engine.New(cfg.EngineOptions(logger))
	s := NewSession(eng, cfg, out, errOut)
	s.Logger = logger
	logger.Debug("host started", "workers", cfg.Workers, "max_pixels", cfg.MaxPixels)
	return &Host{Engine: eng, Session: s}
}

// Close releases the engine.
func (h *Host) Close() { h.Engine.Close() }

// RunCLI starts an interactive session on stdin. If inputImagePath is not
// empty it is loaded first.
func RunCLI(ctx context.Context, cfg config.Config, inputImagePath string) error {
	h := NewHost(cfg, os.Stdout, os.Stderr)
	defer h.Close()
	if inputImagePath != "" {
		if err := cmdLoad(ctx, h.Session, []string{inputImagePath}); err != nil {
			return err
		}
	}
	return h.Session.RunREPL(ctx, os.Stdin)
}

// RunScriptFile executes the commands in path.
func RunScriptFile(ctx context.Context, cfg config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	h := NewHost(cfg, os.Stdout, os.Stderr)
	defer h.Close()
	return h.Session.RunScript(ctx, f, path)
}
