package linkcheck

import (
	stderrors "errors"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Enforce applies the configured policy to every finding. Findings under
// "throw" are returned as one fatal links error; "warn" and "log" findings
// are logged and returned as warnings; "ignore" drops them.
func Enforce(cfg *config.SiteConfig, r Report, logger *slog.Logger) ([]Finding, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var warnings []Finding
	var fatal []error
	for _, f := range r.Findings {
		policy := cfg.OnBrokenLinks
		if f.Kind == KindMarkdown {
			policy = cfg.OnBrokenMarkdownLinks
		}
		attrs := []any{
			logfields.Locale(f.Locale), logfields.File(f.Source), slog.String("target", f.Target), slog.String("kind", string(f.Kind)),
		}
		if f.Line > 0 {
			attrs = append(attrs, slog.Int("line", f.Line))
		}

		switch policy {
		case config.PolicyIgnore:
		case config.PolicyLog:
			logger.Info("Broken link", attrs...)
			warnings = append(warnings, f)
		case config.PolicyWarn:
			logger.Warn("Broken link", attrs...)
			warnings = append(warnings, f)
		default:
			b := errors.LinksError("broken " + string(f.Kind) + " link").
				WithContext("file", f.Source).
				WithContext("target", f.Target).
				WithContext("locale", f.Locale)
			if f.Line > 0 {
				b = b.WithContext("line", f.Line)
			}
			fatal = append(fatal, b.Build())
		}
	}

	if len(fatal) == 0 {
		return warnings, nil
	}
	return warnings, errors.WrapError(stderrors.Join(fatal...), errors.CategoryLinks, "site contains broken links").
		Fatal().
		UserAction().
		WithContext("broken", len(fatal)).
		Build()
}
