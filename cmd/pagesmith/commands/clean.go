package commands

import (
	"git.home.luguber.info/inful/pagesmith/internal/build"
)

// CleanCmd implements the 'clean' command.
type CleanCmd struct{}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.ResolveConfig()
	if err != nil {
		return err
	}
	rec, flush := newRecorder(cfg, g.Logger)
	defer flush()

	bc, err := build.NewMaintenanceContext(cfg, build.WithLogger(g.Logger), build.WithRecorder(rec))
	if err != nil {
		return err
	}
	builder := build.NewBuilder(bc)
	defer func() { _ = builder.Close() }()

	_, err = builder.Clean(g.Context)
	return err
}
