package config

// ExampleConfig returns the configuration written by `docsite init`.
func ExampleConfig() *SiteConfig {
	return &SiteConfig{
		Title:                 "Mountify Documentation",
		Tagline:               "Build a Production-Grade E-Commerce Platform from Scratch",
		Favicon:               "img/favicon.ico",
		URL:                   "https://mountify-docs.example.com",
		BaseURL:               "/",
		OrganizationName:      "mountify",
		ProjectName:           "mountify-docs",
		OnBrokenLinks:         PolicyWarn,
		OnBrokenMarkdownLinks: PolicyWarn,
		I18n: I18nConfig{
			DefaultLocale: "en",
			Locales:       []string{"en", "zh-CN"},
		},
		Docs: DocsConfig{
			Path:          "docs",
			SidebarPath:   "sidebars.yaml",
			RouteBasePath: "/",
		},
		Search: SearchConfig{
			Hashed:                           true,
			Language:                         []string{"en", "zh"},
			HighlightSearchTermsOnTargetPage: true,
			ExplicitSearchResultPath:         true,
			DocsRouteBasePath:                "/",
			IndexBlog:                        false,
		},
		ThemeConfig: ThemeConfig{
			Image: "img/mountify-social-card.jpg",
			Navbar: Navbar{
				Title: "Mountify",
				Logo:  &Logo{Alt: "Mountify Logo", Src: "img/logo.svg"},
				Items: []NavbarItem{
					{Type: NavbarItemDocSidebar, SidebarID: "tutorialSidebar", Position: "left", Label: "Documentation"},
					{Href: "https://github.com/lhq5520/Mountify-Commerce", Label: "GitHub", Position: "right"},
					{Type: NavbarItemLocaleDropdown, Position: "right"},
				},
			},
			Footer: Footer{
				Style: "dark",
				Links: []FooterLinkGroup{
					{Title: "Documentation", Items: []FooterLink{
						{Label: "Getting Started", To: "/guide/getting-started"},
						{Label: "Architecture", To: "/architecture/overview"},
					}},
					{Title: "Modules", Items: []FooterLink{
						{Label: "Authentication", To: "/modules/authentication"},
						{Label: "Payments", To: "/modules/payments"},
						{Label: "Caching", To: "/modules/caching"},
					}},
					{Title: "More", Items: []FooterLink{
						{Label: "GitHub", Href: "https://github.com/lhq5520/Mountify-Commerce"},
						{Label: "Development Log", To: "/dev-log/overview"},
					}},
				},
				Copyright: "Copyright © {year} Mountify. Built with docsite.",
			},
			Prism: Prism{
				Theme:               "github",
				DarkTheme:           "dracula",
				AdditionalLanguages: []string{"bash", "sql", "typescript", "json"},
			},
			TableOfContents: TOCConfig{MinHeadingLevel: 2, MaxHeadingLevel: 4},
		},
	}
}
