package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	classified, ok := AsClassified(err)
	if !ok {
		return 1
	}
	switch classified.Category() {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 3
	case CategoryConfig:
		return 7
	case CategoryTransport:
		return 8
	case CategoryInternal:
		return 10
	case CategorySidebar, CategoryContent, CategoryRoutes, CategoryLinks, CategorySearch, CategoryFileSystem:
		return 11
	case CategoryRuntime:
		return 12
	default:
		return 1
	}
}

// FormatError formats an error for the documentation author.
//
// Classified errors print their message followed by sorted context lines; the
// wrapped cause is only shown in verbose mode or when the error has no context.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error (%s): %s", classified.Category(), classified.Message())
	for _, k := range classified.Context().Keys() {
		fmt.Fprintf(&b, "\n  %s: %v", k, classified.Context()[k])
	}
	if cause := classified.Cause(); cause != nil && len(classified.Context()) == 0 {
		fmt.Fprintf(&b, "\n  cause: %v", cause)
	}

	var joined interface{ Unwrap() []error }
	if stderrors.As(classified.Cause(), &joined) {
		for _, e := range joined.Unwrap() {
			fmt.Fprintf(&b, "\n  - %s", findingLine(e))
		}
	}
	return b.String()
}

func findingLine(err error) string {
	c, ok := AsClassified(err)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(c.Context()))
	for _, k := range c.Context().Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c.Context()[k]))
	}
	if len(parts) == 0 {
		return c.Message()
	}
	return c.Message() + " (" + strings.Join(parts, ", ") + ")"
}

// HandleError logs and prints err, then exits with the mapped code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	a.logError(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	if classified.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	a.logger.LogAttrs(context.Background(), levelFromSeverity(classified.Severity()), classified.Message(), attrs...)
}

func levelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
