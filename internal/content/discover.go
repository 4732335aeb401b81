package content

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// Options controls discovery.
type Options struct {
	// Root is the site root; Source paths are made relative to it.
	Root string
	// IncludeDrafts keeps draft docs in the set (used by serve).
	IncludeDrafts bool
}

var numberPrefix = regexp.MustCompile(`^\d+[-_.]\s*`)

// Discover walks dir and returns the documents of locale.
func Discover(ctx context.Context, dir, locale string, opts Options) (*Set, error) {
	set := newSet(locale)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdownFile(name) {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		doc, err := loadDoc(p, filepath.ToSlash(rel), locale, opts)
		if err != nil {
			return err
		}
		if doc.Draft && !opts.IncludeDrafts {
			set.drafts[doc.ID] = true
			slog.Debug("Skipping draft", logfields.DocID(doc.ID), logfields.Locale(locale))
			return nil
		}
		if existing, ok := set.byID[doc.ID]; ok {
			return errors.WrapError(ErrDuplicateDocID, errors.CategoryContent, "two documents share a doc id").
				WithContext("doc_id", doc.ID).
				WithContext("locale", locale).
				WithContext("first", existing.Source).
				WithContext("second", doc.Source).
				Build()
		}
		set.add(doc)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk docs directory").
			WithContext("path", dir).
			WithContext("locale", locale).
			Build()
	}

	set.sort()
	slog.Debug("Discovered documents", logfields.Locale(locale), logfields.Count(set.Len()), logfields.Path(dir))
	return set, nil
}

// DiscoverSite discovers every configured locale. Translated locales fall
// back to the default-locale document for each doc without a translation.
func DiscoverSite(ctx context.Context, cfg *config.SiteConfig, includeDrafts bool) (map[string]*Set, error) {
	opts := Options{Root: cfg.Root, IncludeDrafts: includeDrafts}

	defDir := cfg.DocsDir()
	if _, err := os.Stat(defDir); err != nil {
		return nil, errors.WrapError(ErrDocsDirNotFound, errors.CategoryContent, "docs directory not found").
			WithContext("path", defDir).
			Build()
	}
	def, err := Discover(ctx, defDir, cfg.I18n.DefaultLocale, opts)
	if err != nil {
		return nil, err
	}

	sets := map[string]*Set{cfg.I18n.DefaultLocale: def}
	for _, locale := range cfg.I18n.Locales {
		if locale == cfg.I18n.DefaultLocale {
			continue
		}
		dir := cfg.LocaleDocsDir(locale)
		set := newSet(locale)
		if _, statErr := os.Stat(dir); statErr == nil {
			set, err = Discover(ctx, dir, locale, opts)
			if err != nil {
				return nil, err
			}
		} else {
			slog.Warn("No translated docs; using default locale content", logfields.Locale(locale), logfields.Path(dir))
		}

		fallbacks := 0
		for _, d := range def.Docs {
			if set.Has(d.ID) || set.IsDraft(d.ID) {
				continue
			}
			cp := *d
			cp.Locale = locale
			cp.Fallback = true
			set.add(&cp)
			fallbacks++
		}
		set.sort()
		if fallbacks > 0 {
			slog.Info("Untranslated docs fall back to default locale", logfields.Locale(locale), logfields.Count(fallbacks))
		}
		sets[locale] = set
	}
	return sets, nil
}

func loadDoc(absPath, rel, locale string, opts Options) (*Doc, error) {
	data, err := os.ReadFile(absPath) // #nosec G304 -- path discovered below the docs directory
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read document").
			WithContext("file", absPath).Build()
	}

	rawFM, _, _, err := frontmatter.Split(data)
	if err != nil {
		return nil, invalidFrontmatter(absPath, err)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, invalidFrontmatter(absPath, err)
	}

	dir := path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))

	analysis := markdown.Analyze(body)

	doc := &Doc{
		ID:              docID(dir, stem, meta.ID),
		Locale:          locale,
		Source:          sourcePath(opts.Root, absPath),
		Path:            absPath,
		Slug:            docSlug(dir, stem, meta.Slug),
		SidebarPosition: meta.SidebarPosition,
		Description:     meta.Description,
		Keywords:        meta.Keywords,
		Draft:           meta.Draft,
		Unlisted:        meta.Unlisted,
		Fingerprint:     mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(rawFM), "\n"), string(body)),
		Headings:        analysis.Headings,
		Links:           analysis.Links,
		Body:            body,
		tocMin:          meta.TOCMinLevel,
		tocMax:          meta.TOCMaxLevel,
	}

	switch {
	case meta.Title != "":
		doc.Title = meta.Title
	case analysis.Title != "":
		doc.Title = analysis.Title
	default:
		doc.Title = path.Base(doc.ID)
	}
	doc.SidebarLabel = meta.SidebarLabel
	if doc.SidebarLabel == "" {
		doc.SidebarLabel = doc.Title
	}
	return doc, nil
}

func invalidFrontmatter(file string, cause error) error {
	return errors.WrapError(fmt.Errorf("%w: %w", ErrInvalidFrontmatter, cause), errors.CategoryContent, "document frontmatter is invalid").
		WithContext("file", file).
		UserAction().
		Build()
}

// docID joins the directory (number prefixes stripped) with the frontmatter
// id, or the file stem when no id is set.
func docID(dir, stem, fmID string) string {
	name := fmID
	if name == "" {
		name = numberPrefix.ReplaceAllString(stem, "")
	}
	d := stripPrefixes(dir)
	if d == "" {
		return name
	}
	return d + "/" + name
}

// docSlug derives the URL slug. Absolute frontmatter slugs replace the path,
// relative ones replace the file segment; index and README pages map to
// their directory with a trailing slash. Case is kept as written.
func docSlug(dir, stem, fmSlug string) string {
	d := stripPrefixes(dir)
	switch {
	case strings.HasPrefix(fmSlug, "/"):
		return NormalizeSlug(fmSlug)
	case fmSlug != "":
		return NormalizeSlug(path.Join(d, fmSlug))
	case isIndexName(stem):
		if d = NormalizeSlug(d); d == "" {
			return ""
		}
		return d + "/"
	default:
		return NormalizeSlug(path.Join(d, numberPrefix.ReplaceAllString(stem, "")))
	}
}

// NormalizeSlug trims every segment of p, drops the empty ones and returns
// the rest without leading or trailing slashes.
func NormalizeSlug(p string) string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return strings.Join(segs, "/")
}

func stripPrefixes(dir string) string {
	if dir == "" {
		return ""
	}
	parts := strings.Split(dir, "/")
	for i, p := range parts {
		parts[i] = numberPrefix.ReplaceAllString(p, "")
	}
	return strings.Join(parts, "/")
}

func isIndexName(stem string) bool {
	s := strings.ToLower(numberPrefix.ReplaceAllString(stem, ""))
	return s == "index" || s == "readme"
}

func isMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

func sourcePath(root, abs string) string {
	if root == "" {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
