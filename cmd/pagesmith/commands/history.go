package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	perrors "git.home.luguber.info/inful/pagesmith/internal/errors"
	"git.home.luguber.info/inful/pagesmith/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit   int    `short:"n" help:"Number of builds to show" default:"10"`
	BuildID string `name:"build-id" help:"Show the events of one build"`
	JSON    bool   `help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.ResolveConfig()
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return perrors.ValidationFailed("history_db", "build history is disabled")
	}

	store, err := eventstore.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		return perrors.Wrap(err, perrors.CategoryRuntime, perrors.SeverityFatal, "history database could not be opened").
			WithContext("path", cfg.HistoryDB)
	}
	defer func() { _ = store.Close() }()

	out := g.stdout()

	if h.BuildID != "" {
		events, err := store.GetByBuildID(g.Context, h.BuildID)
		if err != nil {
			return err
		}
		return h.printEvents(out, events)
	}

	summaries, err := eventstore.RecentSummaries(g.Context, store, h.Limit)
	if err != nil {
		return err
	}
	return h.printSummaries(out, summaries)
}

func (h *HistoryCmd) printSummaries(out io.Writer, summaries []eventstore.BuildSummary) error {
	if h.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tMODE\tSTATUS\tRENDERED\tSKIPPED\tPRUNED\tDURATION")
	for _, s := range summaries {
		mode := s.Mode
		if s.File != "" {
			mode += " " + s.File
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			s.BuildID, s.StartedAt.Format(time.RFC3339), mode, s.Status,
			s.Rendered, s.Skipped, s.Pruned, s.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func (h *HistoryCmd) printEvents(out io.Writer, events []eventstore.Event) error {
	if h.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tTYPE\tPAYLOAD")
	for _, e := range events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339Nano), e.Type, string(e.Payload))
	}
	return tw.Flush()
}
