package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Drafts bool `help:"Include docs marked draft"`
	Force  bool `short:"f" help:"Rebuild even when the inputs are unchanged"`
	GC     bool `name:"gc" help:"Remove stored objects no build references after building"`
	JSON   bool `name:"json" help:"Print the build report as JSON"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	_, be, err := openBackends(root.Config)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	ctx := context.Background()
	req := root.request(build.ModeBuild)
	req.IncludeDrafts = b.Drafts
	req.Force = b.Force

	res, err := be.service(g, nil).Run(ctx, req)
	if b.JSON {
		if perr := printJSON(g.out(), res.Report); perr != nil {
			return perr
		}
	} else {
		printReport(g.out(), res)
	}
	if err != nil {
		return err
	}

	if b.GC {
		n, gcErr := be.store.GC(ctx)
		if gcErr != nil {
			return errors.WrapError(gcErr, errors.CategoryFileSystem, "garbage collection failed").Build()
		}
		slog.Info("Removed unreferenced objects", logfields.Count(n))
	}
	return nil
}

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Drafts bool `help:"Include docs marked draft"`
	Strict bool `help:"Treat warnings as errors"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	req := root.request(build.ModeValidate)
	req.IncludeDrafts = v.Drafts
	res, err := validator(g).Run(context.Background(), req)
	printReport(g.out(), res)
	if err != nil {
		return err
	}
	if v.Strict && len(res.Report.Warnings) > 0 {
		return errors.ValidationError("site has warnings").
			WithContext("warnings", len(res.Report.Warnings)).
			UserAction().Build()
	}
	return nil
}

func printReport(w io.Writer, res *build.Result) {
	rep := res.Report
	_, _ = fmt.Fprintf(w, "Build %s: %s in %s\n", rep.BuildID, rep.Outcome, rep.Duration().Round(time.Millisecond))
	if rep.SkipReason != "" {
		_, _ = fmt.Fprintf(w, "  skipped: %s\n", rep.SkipReason)
	}
	locales := make([]string, 0, len(rep.Pages))
	for l := range rep.Pages {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	for _, l := range locales {
		_, _ = fmt.Fprintf(w, "  %s: %d pages\n", l, rep.Pages[l])
	}
	for _, warn := range rep.Warnings {
		_, _ = fmt.Fprintf(w, "  warning (%s): %s\n", warn.Stage, warn.Message)
	}
	for _, f := range rep.Files {
		_, _ = fmt.Fprintf(w, "  wrote %s\n", f)
	}
	if rep.FailedStage != "" {
		_, _ = fmt.Fprintf(w, "  failed in stage %s\n", rep.FailedStage)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode output").Build()
	}
	return nil
}
