package config

import "time"

// SiteConfig is the site configuration: global metadata plus nested option
// groups for i18n, docs, search and theme. It is loaded once by Load and must
// be treated as immutable afterwards.
type SiteConfig struct {
	Title                 string              `yaml:"title"`
	Tagline               string              `yaml:"tagline,omitempty"`
	Favicon               string              `yaml:"favicon,omitempty"`
	URL                   string              `yaml:"url"`
	BaseURL               string              `yaml:"baseUrl"`
	OrganizationName      string              `yaml:"organizationName,omitempty"`
	ProjectName           string              `yaml:"projectName,omitempty"`
	OnBrokenLinks         BrokenLinkPolicy    `yaml:"onBrokenLinks,omitempty"`
	OnBrokenMarkdownLinks BrokenLinkPolicy    `yaml:"onBrokenMarkdownLinks,omitempty"`
	I18n                  I18nConfig          `yaml:"i18n"`
	Docs                  DocsConfig          `yaml:"docs"`
	Search                SearchConfig        `yaml:"search"`
	ThemeConfig           ThemeConfig         `yaml:"themeConfig"`
	Build                 BuildConfig         `yaml:"build,omitempty"`
	Notifications         NotificationsConfig `yaml:"notifications,omitempty"`

	// Root is the directory containing the configuration file. Relative paths
	// in the configuration resolve against it.
	Root string `yaml:"-"`
}

// I18nConfig declares the supported locales.
type I18nConfig struct {
	DefaultLocale string                  `yaml:"defaultLocale"`
	Locales       []string                `yaml:"locales"`
	LocaleConfigs map[string]LocaleConfig `yaml:"localeConfigs,omitempty"`
}

// LocaleConfig holds optional per-locale presentation settings.
type LocaleConfig struct {
	Label     string `yaml:"label,omitempty"`
	Direction string `yaml:"direction,omitempty"` // ltr|rtl
	HTMLLang  string `yaml:"htmlLang,omitempty"`
	Path      string `yaml:"path,omitempty"` // URL segment, defaults to the locale code
}

// DocsConfig configures the docs content plugin.
type DocsConfig struct {
	Path          string `yaml:"path,omitempty"`          // content root, default "docs"
	SidebarPath   string `yaml:"sidebarPath,omitempty"`   // default "sidebars.yaml"
	RouteBasePath string `yaml:"routeBasePath,omitempty"` // default "docs"; "/" mounts docs at the site root
	EditURL       string `yaml:"editUrl,omitempty"`
	I18nPath      string `yaml:"i18nPath,omitempty"` // default "i18n"
}

// SearchConfig mirrors the options of the local search theme.
type SearchConfig struct {
	Hashed                           bool     `yaml:"hashed"`
	Language                         []string `yaml:"language,omitempty"`
	HighlightSearchTermsOnTargetPage bool     `yaml:"highlightSearchTermsOnTargetPage"`
	ExplicitSearchResultPath         bool     `yaml:"explicitSearchResultPath"`
	DocsRouteBasePath                string   `yaml:"docsRouteBasePath,omitempty"`
	IndexBlog                        bool     `yaml:"indexBlog"`
	SearchResultLimits               int      `yaml:"searchResultLimits,omitempty"`
	SearchResultContextMaxLength     int      `yaml:"searchResultContextMaxLength,omitempty"`
}

// ThemeConfig groups presentation options consumed at page render.
type ThemeConfig struct {
	Image           string    `yaml:"image,omitempty"`
	Navbar          Navbar    `yaml:"navbar"`
	Footer          Footer    `yaml:"footer"`
	Prism           Prism     `yaml:"prism,omitempty"`
	TableOfContents TOCConfig `yaml:"tableOfContents,omitempty"`
}

// Navbar is the top navigation bar.
type Navbar struct {
	Title string       `yaml:"title,omitempty"`
	Logo  *Logo        `yaml:"logo,omitempty"`
	Items []NavbarItem `yaml:"items,omitempty"`
}

// Logo is an image reference with alt text.
type Logo struct {
	Alt string `yaml:"alt,omitempty"`
	Src string `yaml:"src"`
}

// NavbarItemType enumerates navbar item kinds.
type NavbarItemType string

const (
	NavbarItemLink           NavbarItemType = "default"
	NavbarItemDocSidebar     NavbarItemType = "docSidebar"
	NavbarItemDoc            NavbarItemType = "doc"
	NavbarItemLocaleDropdown NavbarItemType = "localeDropdown"
	NavbarItemSearch         NavbarItemType = "search"
)

// NavbarItem is one navbar entry.
type NavbarItem struct {
	Type      NavbarItemType `yaml:"type,omitempty"`
	SidebarID string         `yaml:"sidebarId,omitempty"`
	DocID     string         `yaml:"docId,omitempty"`
	Position  string         `yaml:"position,omitempty"` // left|right
	Label     string         `yaml:"label,omitempty"`
	To        string         `yaml:"to,omitempty"`
	Href      string         `yaml:"href,omitempty"`
}

// Footer is the page footer.
type Footer struct {
	Style     string            `yaml:"style,omitempty"` // dark|light
	Links     []FooterLinkGroup `yaml:"links,omitempty"`
	Copyright string            `yaml:"copyright,omitempty"`
}

// FooterLinkGroup is a titled column of footer links.
type FooterLinkGroup struct {
	Title string       `yaml:"title"`
	Items []FooterLink `yaml:"items"`
}

// FooterLink is either an internal link (To) or an external one (Href).
type FooterLink struct {
	Label string `yaml:"label"`
	To    string `yaml:"to,omitempty"`
	Href  string `yaml:"href,omitempty"`
}

// Prism configures code highlighting.
type Prism struct {
	Theme               string   `yaml:"theme,omitempty"`
	DarkTheme           string   `yaml:"darkTheme,omitempty"`
	AdditionalLanguages []string `yaml:"additionalLanguages,omitempty"`
}

// TOCConfig bounds the heading levels shown in a page's table of contents.
type TOCConfig struct {
	MinHeadingLevel int `yaml:"minHeadingLevel,omitempty"`
	MaxHeadingLevel int `yaml:"maxHeadingLevel,omitempty"`
}

// BuildConfig controls where docsite writes its outputs and state.
type BuildConfig struct {
	OutDir   string `yaml:"outDir,omitempty"`   // default "build"
	StateDir string `yaml:"stateDir,omitempty"` // default ".docsite"
	EventsDB string `yaml:"eventsDb,omitempty"` // default "<stateDir>/events.db"
	Schedule string `yaml:"schedule,omitempty"` // cron expression for periodic rebuilds in serve mode
}

// NotificationsConfig configures build event publishing.
type NotificationsConfig struct {
	NATSURL string      `yaml:"natsUrl,omitempty"`
	Subject string      `yaml:"subject,omitempty"`
	Retry   RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig controls republishing after transient failures. Zero values
// fall back to linear backoff from 1s, capped at 30s, with 2 retries.
type RetryConfig struct {
	Backoff    string        `yaml:"backoff,omitempty"` // fixed|linear|exponential
	Initial    time.Duration `yaml:"initial,omitempty"`
	Max        time.Duration `yaml:"max,omitempty"`
	MaxRetries int           `yaml:"maxRetries,omitempty"`
}
