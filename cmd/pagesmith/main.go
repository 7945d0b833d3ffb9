package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagesmith/cmd/pagesmith/commands"
	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	global := &commands.Global{Context: ctx}

	kctx := kong.Parse(cli,
		kong.Name("pagesmith"),
		kong.Description("Static content build pipeline: Markdown with YAML frontmatter to HTML."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := kctx.Run(global, cli); err != nil {
		cancel()
		perrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
