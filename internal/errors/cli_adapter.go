package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// exitCodes maps error categories to process exit codes. Unlisted
// categories and unclassified errors exit with 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryConfig:     7,
	CategoryInternal:   10,
	CategoryBuild:      11,
	CategoryFileSystem: 11,
	CategoryParse:      11,
	CategoryTemplate:   11,
	CategoryCache:      11,
	CategoryRuntime:    12,
}

// CLIErrorAdapter reports a command's final error on stderr and exits.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates an adapter. verbose prints full error chains
// and logs every error.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor returns the exit code for err; nil maps to 0.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if be, ok := As(err); ok {
		if code, known := exitCodes[be.Category]; known {
			return code
		}
	}
	return 1
}

// HandleError prints err and exits with its code. Fatal and internal
// errors are logged with their context fields as well.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	be, classified := As(err)
	if a.verbose || !classified || be.IsFatal() || be.Category == CategoryInternal {
		a.log(err, be)
	}
	_, _ = fmt.Fprintln(a.stderr, a.message(err, be))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) message(err error, be *BuildError) string {
	switch {
	case be == nil:
		return fmt.Sprintf("Error: %v", err)
	case a.verbose:
		return be.Error()
	case be.Category != CategoryConfig && be.Category != CategoryValidation:
		return fmt.Sprintf("%s: %s", be.Category, be.Message)
	case be.Cause != nil:
		return fmt.Sprintf("%s: %v", be.Message, be.Cause)
	default:
		return be.Message
	}
}

func (a *CLIErrorAdapter) log(err error, be *BuildError) {
	if be == nil {
		a.logger.Error("Command failed", "error", err)
		return
	}

	attrs := make([]slog.Attr, 0, len(be.Context)+2)
	attrs = append(attrs, slog.String("category", string(be.Category)))
	for k, v := range be.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if be.Cause != nil {
		attrs = append(attrs, slog.String("cause", be.Cause.Error()))
	}
	level := slog.LevelError
	if be.Severity == SeverityWarning {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, be.Message, attrs...)
}
