package commands

import (
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	"git.home.luguber.info/inful/pagesmith/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce       time.Duration `help:"Quiet window before rebuilding" default:"300ms"`
	ReconcileEvery time.Duration `name:"reconcile-every" help:"Run a full build periodically (0 disables)" default:"0s"`
	CleanOnExit    bool          `name:"clean-on-exit" help:"Delete generated output when the watcher stops"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.ResolveConfig()
	if err != nil {
		return err
	}
	rec, flush := newRecorder(cfg, g.Logger)
	defer flush()

	factory := func() (watch.Session, error) {
		bc, err := build.NewContext(cfg, build.WithLogger(g.Logger), build.WithRecorder(rec))
		if err != nil {
			return nil, err
		}
		return build.NewBuilder(bc), nil
	}

	watcher := watch.New(factory, watch.Options{
		Dirs: watch.Dirs{
			Content:    cfg.ContentDir,
			Templates:  cfg.TemplateDir,
			ConfigFile: cfg.ConfigFile,
		},
		Debounce:       w.Debounce,
		ReconcileEvery: w.ReconcileEvery,
		CleanOnExit:    w.CleanOnExit,
		Logger:         g.Logger,
	})
	return watcher.Run(g.Context)
}
