package commands

import (
	"git.home.luguber.info/inful/pagesmith/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	File string `short:"f" help:"Rebuild a single source file if it changed; a missing file removes its page"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.ResolveConfig()
	if err != nil {
		return err
	}
	rec, flush := newRecorder(cfg, g.Logger)
	defer flush()

	bc, err := build.NewContext(cfg, build.WithLogger(g.Logger), build.WithRecorder(rec))
	if err != nil {
		return err
	}
	builder := build.NewBuilder(bc)
	defer func() { _ = builder.Close() }()

	if b.File != "" {
		_, err = builder.BuildFile(g.Context, b.File)
		return err
	}
	_, err = builder.BuildAll(g.Context)
	return err
}
